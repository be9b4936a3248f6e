package eval

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// String renders the score table with one row per class.
func (t *ScoreTable) String() string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "class\tprecision\trecall\tF1-score\tgts\tdets")
	for i, name := range t.ClassNames {
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%d\t%d\n",
			name, t.Precision[i], t.Recall[i], t.F1[i], t.GTs[i], t.Dets[i])
	}
	w.Flush()
	return sb.String()
}

// String renders the AP table with one row per class and a final mAP
// row.
func (t *APTable) String() string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "class\tap")
	for i, name := range t.ClassNames {
		fmt.Fprintf(w, "%s\t%.4f\n", name, t.AP[i])
	}
	fmt.Fprintf(w, "mAP\t%.4f\n", t.MAP)
	w.Flush()
	return sb.String()
}
