package eval

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// PRCurve holds per-class ranked precision-recall sequences built from
// one dataset sweep. Sequences are ordered by decreasing confidence
// inclusion: recall never decreases along a sequence, precision may dip
// and recover. Each sequence ends with a (precision=0, recall=final)
// sentinel marking curve closure.
type PRCurve struct {
	classNames []string
	precisions [][]float64
	recalls    [][]float64
}

// imageMatch carries one image's ranked records and ground-truth
// counts, both per class, with image-local ground-truth indices.
type imageMatch struct {
	records  [][]detRecord
	gtCounts []int
}

// NewPRCurve sweeps the dataset and builds the ranked precision-recall
// sequences per class. yTrues holds one ground-truth grid per image;
// each element of yPreds is one prediction source of the same length,
// decoded jointly per image.
//
// Matching across images is independent, so with cfg.Workers > 1 the
// per-image decode+match step runs on a worker pool. Ground-truth IDs
// are assigned afterwards from a per-image prefix sum and records are
// merged in image order, so the result is identical to the sequential
// sweep.
func NewPRCurve(cfg Config, yTrues []*tensor.Dense, yPreds ...[]*tensor.Dense) (*PRCurve, error) {
	classNum := len(cfg.ClassNames)
	if len(yPreds) == 0 {
		return nil, errors.New("at least one prediction source is required")
	}
	for j, preds := range yPreds {
		if len(preds) != len(yTrues) {
			return nil, errors.Errorf(
				"prediction source %d has %d images, ground truth has %d",
				j, len(preds), len(yTrues))
		}
	}

	matches := make([]imageMatch, len(yTrues))
	errs := make([]error, len(yTrues))

	matchOne := func(i int) {
		imgPreds := make([]*tensor.Dense, len(yPreds))
		for j := range yPreds {
			imgPreds[j] = yPreds[j][i]
		}
		truths, preds, err := decodeImage(cfg, yTrues[i], imgPreds)
		if err != nil {
			errs[i] = errors.Wrapf(err, "image %d", i)
			return
		}

		truthParts := splitByClass(truths, classNum)
		predParts := splitByClass(preds, classNum)

		m := imageMatch{
			records:  make([][]detRecord, classNum),
			gtCounts: make([]int, classNum),
		}
		for c := 0; c < classNum; c++ {
			m.gtCounts[c] = len(truthParts[c])
			m.records[c] = matchClassRanked(
				truthParts[c], predParts[c], cfg.IoUThreshold, cfg.MaxPerImage)
		}
		matches[i] = m
	}

	if cfg.Workers > 1 {
		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < cfg.Workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					matchOne(i)
				}
			}()
		}
		for i := range yTrues {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	} else {
		for i := range yTrues {
			matchOne(i)
		}
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	// Merge in image order, shifting image-local ground-truth indices
	// by the per-class prefix sum so IDs never collide within a class.
	gts := make([]int, classNum)
	detections := make([][]detRecord, classNum)
	for _, m := range matches {
		for c := 0; c < classNum; c++ {
			offset := gts[c]
			for _, rec := range m.records[c] {
				rec.gtID += offset
				detections[c] = append(detections[c], rec)
			}
			gts[c] += m.gtCounts[c]
		}
	}

	curve := &PRCurve{
		classNames: cfg.ClassNames,
		precisions: make([][]float64, classNum),
		recalls:    make([][]float64, classNum),
	}
	for c := 0; c < classNum; c++ {
		curve.precisions[c], curve.recalls[c] = buildSequence(detections[c], gts[c])
	}
	return curve, nil
}

// buildSequence walks the ranked detections cumulatively and emits one
// (precision, recall) point per rank, then the closing sentinel.
//
// At rank k the true-positive count is the number of distinct matched
// ground truths among the passing records seen so far — a ground truth
// claimed by several predictions counts once; the extra claims count as
// false positives alongside the records that failed the IoU threshold.
func buildSequence(records []detRecord, numGts int) (precisions, recalls []float64) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].conf > records[j].conf
	})

	precisions = make([]float64, 0, len(records)+1)
	recalls = make([]float64, 0, len(records)+1)

	seen := make(map[int]bool)
	numTP := 0  // distinct matched ground truths
	numTPP := 0 // passing records, double counts included
	for k, rec := range records {
		if rec.tp {
			numTPP++
			if !seen[rec.gtID] {
				seen[rec.gtID] = true
				numTP++
			}
		}
		numFP := (k + 1) - numTPP
		precisions = append(precisions, float64(numTP)/float64(numTP+numFP))
		recalls = append(recalls, float64(numTP)/float64(numGts))
	}

	// Sentinel closes the curve at the terminal recall. A class with no
	// detections gets a degenerate curve at recall 0.
	finalRecall := 0.0
	if len(recalls) > 0 {
		finalRecall = recalls[len(recalls)-1]
	}
	precisions = append(precisions, 0)
	recalls = append(recalls, finalRecall)
	return precisions, recalls
}

// ClassNum returns the number of classes the curve was built over.
func (pc *PRCurve) ClassNum() int {
	return len(pc.classNames)
}

// Sequence returns the raw (recall, precision) sequences for a class.
// The returned slices are the curve's own backing arrays.
func (pc *PRCurve) Sequence(classIdx int) (recalls, precisions []float64, err error) {
	if err := pc.checkClass(classIdx); err != nil {
		return nil, nil, err
	}
	return pc.recalls[classIdx], pc.precisions[classIdx], nil
}

// Smoothed returns the interpolated precision sequence for a class:
// scanning from the last rank backward, every precision is replaced by
// the running maximum, which removes the local dips of the raw curve.
func (pc *PRCurve) Smoothed(classIdx int) ([]float64, error) {
	if err := pc.checkClass(classIdx); err != nil {
		return nil, err
	}
	smoothed := append([]float64(nil), pc.precisions[classIdx]...)
	maxPC := 0.0
	for i := len(smoothed) - 1; i >= 0; i-- {
		if smoothed[i] > maxPC {
			maxPC = smoothed[i]
		} else {
			smoothed[i] = maxPC
		}
	}
	return smoothed, nil
}

// Query returns the envelope precision at a target recall: the maximum
// precision over the suffix of the sequence whose recall strictly
// exceeds the target, or 0 when no entry does. This is the
// forward-looking interpolation used by VOC-style AP.
func (pc *PRCurve) Query(recall float64, classIdx int) (float64, error) {
	if err := pc.checkClass(classIdx); err != nil {
		return 0, err
	}
	precisions := pc.precisions[classIdx]
	recalls := pc.recalls[classIdx]

	suffix := 0
	for _, r := range recalls {
		if r > recall {
			suffix++
		}
	}
	if suffix == 0 {
		return 0, nil
	}
	best := 0.0
	for _, p := range precisions[len(precisions)-suffix:] {
		if p > best {
			best = p
		}
	}
	return best, nil
}

func (pc *PRCurve) checkClass(classIdx int) error {
	if classIdx < 0 || classIdx >= len(pc.classNames) {
		return errors.Errorf("class index %d out of range [0, %d)", classIdx, len(pc.classNames))
	}
	return nil
}
