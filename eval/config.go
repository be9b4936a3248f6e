// Package eval - detection evaluation: IoU matching, score tables,
// precision-recall curves and mAP.
package eval

import (
	"github.com/Darkpoppy/tf2-YOLO/boxes"
)

// NMSMode selects the suppression applied to decoded predictions.
type NMSMode int

const (
	// NMSNone leaves decoded predictions untouched.
	NMSNone NMSMode = iota
	// NMSHard applies greedy NMS.
	NMSHard
	// NMSSoft applies Soft-NMS with gaussian decay.
	NMSSoft
)

// PrecisionMode selects the precision accounting.
type PrecisionMode int

const (
	// PrecisionTPP counts every prediction whose best IoU clears the
	// threshold, so several predictions may claim one ground truth:
	// precision = TPP/PP.
	PrecisionTPP PrecisionMode = iota
	// PrecisionStrict removes double-counted predictions from the
	// denominator and counts each ground truth once:
	// precision = TP/(PP-(TPP-TP)).
	PrecisionStrict
)

// MAPMode selects the AP integration policy.
type MAPMode string

const (
	// MAPVOC2007 averages envelope precision at 11 fixed recall points.
	MAPVOC2007 MAPMode = "voc2007"
	// MAPVOC2012 averages envelope precision at 7 fixed recall points.
	MAPVOC2012 MAPMode = "voc2012"
	// MAPArea integrates the raw PR sequence trapezoidally.
	MAPArea MAPMode = "area"
	// MAPSmoothArea integrates the interpolated PR sequence trapezoidally.
	MAPSmoothArea MAPMode = "smootharea"
)

// Config holds evaluation parameters. Inputs are assumed
// caller-validated: thresholds non-negative, ClassNames covering every
// class index the grids encode.
type Config struct {
	// ClassNames lists all label names; its length fixes the class count.
	ClassNames []string
	// ConfThreshold filters decoded predictions.
	ConfThreshold float32
	// NMSMode selects duplicate suppression.
	NMSMode NMSMode
	// NMSThreshold is the overlap threshold for NMS and Soft-NMS.
	NMSThreshold float32
	// NMSSigma is the gaussian decay parameter for Soft-NMS.
	NMSSigma float32
	// IoUThreshold decides true-positive assignment.
	IoUThreshold float32
	// PrecisionMode selects the precision accounting for score tables.
	PrecisionMode PrecisionMode
	// MaxPerImage caps kept detections per image per class for PR
	// curves; zero or negative disables the cap.
	MaxPerImage int
	// DecodeVersion selects the grid layout.
	DecodeVersion boxes.Version
	// Workers sets the number of goroutines matching images in
	// parallel; values below 2 keep the sweep sequential. Results are
	// identical either way.
	Workers int
}

// DefaultConfig returns the score-table defaults.
func DefaultConfig(classNames []string) Config {
	return Config{
		ClassNames:    classNames,
		ConfThreshold: 0.5,
		NMSMode:       NMSNone,
		NMSThreshold:  0.5,
		NMSSigma:      0.5,
		IoUThreshold:  0.5,
		PrecisionMode: PrecisionStrict,
		MaxPerImage:   100,
		DecodeVersion: boxes.V3,
		Workers:       1,
	}
}

// DefaultPRConfig returns the PR-curve defaults: a permissive
// confidence cutoff with NMS on, so the curve sees the full ranking.
func DefaultPRConfig(classNames []string) Config {
	cfg := DefaultConfig(classNames)
	cfg.ConfThreshold = 0.05
	cfg.NMSMode = NMSHard
	return cfg
}
