package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"gudang/internal/model"
)

const displayTimeLayout = "2006-01-02 15:04:05"

// writeProducts renders products as an aligned table.
func writeProducts(out io.Writer, products []model.Product) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQUANTITY\tPRICE\tLAST MODIFIED")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", p.ID, p.Name, p.Quantity, p.Price.String(), formatTime(p.LastModified.Time))
	}
	_ = tw.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(displayTimeLayout)
}
