package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorgonia.org/tensor"

	"github.com/Darkpoppy/tf2-YOLO/boxes"
	"github.com/Darkpoppy/tf2-YOLO/dataset"
	"github.com/Darkpoppy/tf2-YOLO/eval"
)

func main() {
	var (
		truthDir     = flag.String("truth", "", "Directory of ground-truth tensor files (required)")
		predDirs     = flag.String("preds", "", "Comma-separated prediction tensor directories (required)")
		classList    = flag.String("classes", "", "Comma-separated class names (required)")
		confThresh   = flag.Float64("conf", 0.5, "Confidence threshold for decoded predictions")
		nmsMode      = flag.Int("nms", 0, "NMS mode: 0 none, 1 NMS, 2 Soft-NMS")
		nmsThresh    = flag.Float64("nms-threshold", 0.5, "IoU threshold for suppression")
		nmsSigma     = flag.Float64("nms-sigma", 0.5, "Sigma for Soft-NMS")
		iouThresh    = flag.Float64("iou", 0.5, "IoU threshold for true-positive assignment")
		strictPrec   = flag.Bool("strict-precision", true, "Remove double-counted matches from the precision denominator")
		maxPerImg    = flag.Int("max-per-img", 100, "Detections kept per image per class for the PR curve; 0 disables")
		version      = flag.Int("version", 3, "Grid layout version: 1, 2 or 3")
		workers      = flag.Int("workers", 1, "Images matched in parallel")
		mapMode      = flag.String("map", "voc2012", "mAP mode: voc2007, voc2012, area or smootharea")
		prConf       = flag.Float64("pr-conf", 0.05, "Confidence threshold for the PR-curve sweep")
		plotDir      = flag.String("plot-dir", "", "Write one PR-curve PNG per class into this directory")
		plotSmoothed = flag.Bool("plot-smooth", false, "Plot the interpolated precision sequence")
	)
	flag.Parse()

	if *truthDir == "" || *predDirs == "" || *classList == "" {
		fmt.Fprintln(os.Stderr, "error: -truth, -preds and -classes are required")
		flag.Usage()
		os.Exit(1)
	}

	classNames := strings.Split(*classList, ",")

	yTrues, err := dataset.Load(*truthDir)
	if err != nil {
		fatal("loading ground truth: %v", err)
	}

	var yPreds [][]*tensor.Dense
	for _, dir := range strings.Split(*predDirs, ",") {
		preds, err := dataset.Load(dir)
		if err != nil {
			fatal("loading predictions from %s: %v", dir, err)
		}
		yPreds = append(yPreds, preds)
	}
	fmt.Printf("Loaded %d images, %d prediction source(s), %d classes\n\n",
		len(yTrues), len(yPreds), len(classNames))

	cfg := eval.DefaultConfig(classNames)
	cfg.ConfThreshold = float32(*confThresh)
	cfg.NMSMode = eval.NMSMode(*nmsMode)
	cfg.NMSThreshold = float32(*nmsThresh)
	cfg.NMSSigma = float32(*nmsSigma)
	cfg.IoUThreshold = float32(*iouThresh)
	cfg.MaxPerImage = *maxPerImg
	cfg.DecodeVersion = boxes.Version(*version)
	cfg.Workers = *workers
	if !*strictPrec {
		cfg.PrecisionMode = eval.PrecisionTPP
	}

	table, err := eval.BuildScoreTable(cfg, yTrues, yPreds...)
	if err != nil {
		fatal("building score table: %v", err)
	}
	fmt.Println(table)

	prCfg := cfg
	prCfg.ConfThreshold = float32(*prConf)
	if prCfg.NMSMode == eval.NMSNone {
		prCfg.NMSMode = eval.NMSHard
	}

	curve, err := eval.NewPRCurve(prCfg, yTrues, yPreds...)
	if err != nil {
		fatal("building PR curve: %v", err)
	}

	apTable, err := curve.MAP(eval.MAPMode(*mapMode))
	if err != nil {
		fatal("computing mAP: %v", err)
	}
	fmt.Printf("mAP (%s)\n%s", *mapMode, apTable)

	if *plotDir != "" {
		if err := os.MkdirAll(*plotDir, 0o755); err != nil {
			fatal("creating %s: %v", *plotDir, err)
		}
		for i, name := range classNames {
			path := filepath.Join(*plotDir, "pr-"+name+".png")
			if err := curve.Plot(i, *plotSmoothed, path); err != nil {
				fatal("plotting class %s: %v", name, err)
			}
		}
		fmt.Printf("\nWrote %d PR-curve plot(s) to %s\n", len(classNames), *plotDir)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
