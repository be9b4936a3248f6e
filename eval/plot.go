package eval

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/pkg/errors"
)

// Plot renders the PR curve of one class to a PNG file. With smooth
// set, the interpolated precision sequence is drawn instead of the raw
// one. Both axes span [-0.05, 1.05] so curves touching 0 or 1 stay
// visible.
func (pc *PRCurve) Plot(classIdx int, smooth bool, path string) error {
	if err := pc.checkClass(classIdx); err != nil {
		return err
	}

	recalls := pc.recalls[classIdx]
	precisions := pc.precisions[classIdx]
	if smooth {
		precisions, _ = pc.Smoothed(classIdx)
	}

	const (
		width   = 640
		height  = 480
		margin  = 48
		axisMin = -0.05
		axisMax = 1.05
	)

	white := gocv.NewScalar(255, 255, 255, 0)
	img := gocv.NewMatWithSizeFromScalar(white, height, width, gocv.MatTypeCV8UC3)
	defer img.Close()

	black := color.RGBA{0, 0, 0, 0}
	blue := color.RGBA{0, 0, 255, 0}

	toPixel := func(recall, precision float64) image.Point {
		fx := (recall - axisMin) / (axisMax - axisMin)
		fy := (precision - axisMin) / (axisMax - axisMin)
		return image.Pt(
			margin+int(fx*float64(width-2*margin)),
			height-margin-int(fy*float64(height-2*margin)),
		)
	}

	// Axes at recall=0 and precision=0.
	gocv.Line(&img, toPixel(0, axisMin), toPixel(0, axisMax), black, 1)
	gocv.Line(&img, toPixel(axisMin, 0), toPixel(axisMax, 0), black, 1)

	for i := 0; i+1 < len(recalls); i++ {
		gocv.Line(&img,
			toPixel(recalls[i], precisions[i]),
			toPixel(recalls[i+1], precisions[i+1]),
			blue, 2)
	}

	gocv.PutText(&img, "PR curve: "+pc.classNames[classIdx],
		image.Pt(margin, margin/2), gocv.FontHersheySimplex, 0.6, black, 1)
	gocv.PutText(&img, "recall",
		image.Pt(width/2-20, height-margin/3), gocv.FontHersheySimplex, 0.5, black, 1)
	gocv.PutText(&img, "precision",
		image.Pt(4, height/2), gocv.FontHersheySimplex, 0.5, black, 1)

	if ok := gocv.IMWrite(path, img); !ok {
		return errors.Errorf("writing plot to %s failed", path)
	}
	return nil
}
