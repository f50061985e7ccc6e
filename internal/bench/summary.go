package bench

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"vrpbench/internal/model"
)

// FormatSummary renders the end-of-sweep roll-up as a plain text table for
// the console.
func FormatSummary(sum model.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s: %d records in %s\n", sum.RunID, sum.Records, sum.Finished.Sub(sum.Started).Round(time.Second))
	tw := tabwriter.NewWriter(&b, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INSTANCE\tBUDGET\tRUNS\tFAILED\tBEST\tMEAN\tGAP")
	for _, is := range sum.Instances {
		gap := "-"
		if is.BestGap != nil {
			gap = fmt.Sprintf("%.2f%%", *is.BestGap)
		}
		best, mean := "-", "-"
		if is.Runs > is.Failed {
			best = fmt.Sprintf("%.2f", is.BestCost)
			mean = fmt.Sprintf("%.2f", is.MeanCost)
		}
		fmt.Fprintf(tw, "%s\t%ds\t%d\t%d\t%s\t%s\t%s\n", is.Instance, is.BudgetSec, is.Runs, is.Failed, best, mean, gap)
	}
	_ = tw.Flush()
	return b.String()
}
