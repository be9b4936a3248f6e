// Package dataset - loads gob-serialized grid tensors from disk.
package dataset

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// frame pairs a loaded tensor with its frame number for sorting.
type frame struct {
	index int
	grid  *tensor.Dense
}

// Load reads all frame-N.gob files from a directory, each holding one
// gob-encoded grid tensor, and returns them ordered by frame number.
//
// Arguments:
//   - dir: Directory path containing tensor files.
//
// Returns:
//   - []*tensor.Dense: One grid per frame, in frame order.
//   - error: Error if the directory, a file name, or a payload is bad.
func Load(dir string) ([]*tensor.Dense, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", dir)
	}

	var frames []frame
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".gob" {
			continue
		}

		stem := strings.TrimSuffix(file.Name(), ".gob")
		index, err := strconv.Atoi(strings.TrimPrefix(stem, "frame-"))
		if err != nil {
			return nil, errors.Wrapf(err, "bad frame file name %s", file.Name())
		}

		path := filepath.Join(dir, file.Name())
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s", path)
		}

		grid := new(tensor.Dense)
		err = gob.NewDecoder(f).Decode(grid)
		f.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "decoding %s", path)
		}

		frames = append(frames, frame{index: index, grid: grid})
	}

	sort.Slice(frames, func(i, j int) bool {
		return frames[i].index < frames[j].index
	})

	grids := make([]*tensor.Dense, len(frames))
	for i, fr := range frames {
		grids[i] = fr.grid
	}
	return grids, nil
}

// Save writes grids as frame-N.gob files into a directory, creating it
// if needed. Frame numbers follow slice order.
func Save(dir string, grids []*tensor.Dense) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}
	for i, grid := range grids {
		path := filepath.Join(dir, "frame-"+strconv.Itoa(i)+".gob")
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrapf(err, "creating %s", path)
		}
		err = gob.NewEncoder(f).Encode(grid)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return errors.Wrapf(err, "writing %s", path)
		}
	}
	return nil
}
