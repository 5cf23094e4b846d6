package app

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/Sahithee-Vadali/Roxiler-Systems-client/pkg/health"
)

// writeReport prints one line per dependency check.
func writeReport(w io.Writer, r health.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  overall\t%s\n", r.Status)
	for _, name := range r.Names() {
		c := r.Checks[name]
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", name, c.Status, c.Duration.Round(time.Millisecond), c.Error)
	}
	return tw.Flush()
}

func writeReportJSON(w io.Writer, r health.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode status report: %w", err)
	}
	return nil
}
