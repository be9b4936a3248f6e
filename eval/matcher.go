package eval

import (
	"sort"

	"gorgonia.org/tensor"

	"github.com/Darkpoppy/tf2-YOLO/boxes"
	"github.com/Darkpoppy/tf2-YOLO/postprocess"
)

// decodeImage decodes one image's ground truth and predictions and
// applies the configured suppression to the predictions. Several
// prediction tensors for the same image (detection scales, ensemble
// heads) are decoded jointly.
func decodeImage(cfg Config, yTrue *tensor.Dense, yPreds []*tensor.Dense) (truths, preds []boxes.ClassifiedBox, err error) {
	classNum := len(cfg.ClassNames)

	truths, err = boxes.Decode(classNum, cfg.DecodeVersion, -1, yTrue)
	if err != nil {
		return nil, nil, err
	}
	preds, err = boxes.Decode(classNum, cfg.DecodeVersion, cfg.ConfThreshold, yPreds...)
	if err != nil {
		return nil, nil, err
	}

	if len(preds) > 0 {
		switch cfg.NMSMode {
		case NMSHard:
			preds = postprocess.NMS(preds, cfg.NMSThreshold)
		case NMSSoft:
			preds = postprocess.SoftNMS(preds, cfg.NMSThreshold, cfg.ConfThreshold, cfg.NMSSigma)
		}
	}
	return truths, preds, nil
}

// splitByClass partitions boxes by their argmax class. Empty partitions
// are normal: a class with no boxes in this image simply stays empty.
func splitByClass(dets []boxes.ClassifiedBox, classNum int) [][]boxes.ClassifiedBox {
	parts := make([][]boxes.ClassifiedBox, classNum)
	for _, d := range dets {
		c := d.Class()
		if c < 0 || c >= classNum {
			continue
		}
		parts[c] = append(parts[c], d)
	}
	return parts
}

// matchClass computes single-pass match counts for one image and one
// class. numTPP counts predictions whose best IoU over ground truths
// clears the threshold (a ground truth may be claimed several times);
// numTP counts ground truths whose best IoU over predictions clears it
// (each at most once).
func matchClass(truths, preds []boxes.ClassifiedBox, iouThreshold float32) (numTPP, numTP int) {
	if len(truths) == 0 || len(preds) == 0 {
		return 0, 0
	}

	bestTrue := make([]float32, len(truths))
	for pi := range preds {
		var bestPred float32
		for ti := range truths {
			iou := truths[ti].IoU(preds[pi].Box)
			if iou > bestPred {
				bestPred = iou
			}
			if iou > bestTrue[ti] {
				bestTrue[ti] = iou
			}
		}
		if bestPred >= iouThreshold {
			numTPP++
		}
	}
	for _, iou := range bestTrue {
		if iou >= iouThreshold {
			numTP++
		}
	}
	return numTPP, numTP
}

// detRecord is one ranked detection: its confidence, the ground truth
// it matched best (image-local index until the merge assigns global
// IDs), and whether the match cleared the IoU threshold.
type detRecord struct {
	conf float32
	gtID int
	tp   bool
}

// matchClassRanked builds one record per prediction for the PR-curve
// path. Records are only produced when the image has ground truths of
// the class; the matched ID is the argmax ground truth (lowest index on
// ties). When more than maxPerImage records qualify, only the
// top-maxPerImage by confidence survive; the rest are discarded for
// good.
func matchClassRanked(truths, preds []boxes.ClassifiedBox, iouThreshold float32, maxPerImage int) []detRecord {
	if len(truths) == 0 || len(preds) == 0 {
		return nil
	}

	records := make([]detRecord, 0, len(preds))
	for pi := range preds {
		bestIoU := float32(-1)
		bestTI := 0
		for ti := range truths {
			iou := truths[ti].IoU(preds[pi].Box)
			if iou > bestIoU {
				bestIoU = iou
				bestTI = ti
			}
		}
		records = append(records, detRecord{
			conf: preds[pi].Conf,
			gtID: bestTI,
			tp:   bestIoU >= iouThreshold,
		})
	}

	if maxPerImage > 0 && len(records) > maxPerImage {
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].conf > records[j].conf
		})
		records = records[:maxPerImage]
	}
	return records
}
