package cmd

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/metailurini/listset"
	"github.com/metailurini/listset/internal/stress"
	"github.com/metailurini/listset/internal/workload"
)

func renderReport(out io.Writer, impl string, r *stress.Report) {
	fmt.Fprintf(out, "impl: %s\n", impl)
	fmt.Fprintf(out, "workers: %d  keyspace: %d  dist: %s  disjoint: %t\n",
		r.Config.Workers, r.Config.KeySpace, r.Config.Distribution, r.Config.Disjoint)

	rows := make([][]string, 0, 3)
	for _, k := range []workload.OpKind{workload.OpAdd, workload.OpRemove, workload.OpContains} {
		calls := r.Calls[k]
		rate := "N/A"
		if calls > 0 {
			rate = fmt.Sprintf("%.2f", 100*float64(r.Hits[k])/float64(calls))
		}
		rows = append(rows, []string{
			k.String(),
			fmt.Sprintf("%d", calls),
			fmt.Sprintf("%d", r.Hits[k]),
			rate,
		})
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Op", "Calls", "True", "True(%)"})
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoWrapText(false)
	table.SetFooter([]string{"Total", fmt.Sprintf("%d", r.Ops()), "", ""})
	table.AppendBulk(rows)
	table.Render()

	fmt.Fprintf(out, "elapsed: %s  throughput: %.2f ops/s\n", r.Elapsed, r.Throughput())
}

func renderStats(out io.Writer, st listset.Stats) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Counter", "Value"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.AppendBulk([][]string{
		{"insert CAS retries", fmt.Sprintf("%d", st.InsertCASRetries)},
		{"inserts", fmt.Sprintf("%d", st.InsertCASSuccesses)},
		{"mark CAS retries", fmt.Sprintf("%d", st.MarkCASRetries)},
		{"removes", fmt.Sprintf("%d", st.MarkCASSuccesses)},
		{"remover unlinks", fmt.Sprintf("%d", st.RemoverUnlinks)},
		{"remover unlink misses", fmt.Sprintf("%d", st.RemoverUnlinkMisses)},
		{"helped unlinks", fmt.Sprintf("%d", st.HelpedUnlinks)},
		{"traversal restarts", fmt.Sprintf("%d", st.Restarts)},
		{"keys", fmt.Sprintf("%d", st.Len)},
	})
	table.Render()
}
