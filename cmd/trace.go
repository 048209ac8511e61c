package cmd

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/metailurini/listset"
	"github.com/metailurini/listset/internal/workload"
)

// exampleTrace is a single-threaded walk through the set's contract.
var exampleTrace = []workload.Op{
	{Kind: workload.OpAdd, Key: 3},
	{Kind: workload.OpAdd, Key: 7},
	{Kind: workload.OpAdd, Key: 3},
	{Kind: workload.OpRemove, Key: 7},
	{Kind: workload.OpContains, Key: 7},
	{Kind: workload.OpContains, Key: 3},
	{Kind: workload.OpRemove, Key: 3},
	{Kind: workload.OpRemove, Key: 3},
}

func NewTraceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trace",
		Short: "Replay a short example trace on an empty set",
		RunE: func(cmd *cobra.Command, args []string) error {
			set := listset.New[int64]()
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Step", "Call", "Result", "Len"})
			table.SetAutoWrapText(false)
			for i, op := range exampleTrace {
				ok := apply(set, op)
				table.Append([]string{
					strconv.Itoa(i + 1),
					fmt.Sprintf("%s(%d)", op.Kind, op.Key),
					strconv.FormatBool(ok),
					strconv.FormatInt(set.Len(), 10),
				})
			}
			table.Render()
			return nil
		},
	}
}

func apply(set *listset.Set[int64], op workload.Op) bool {
	switch op.Kind {
	case workload.OpAdd:
		return set.Add(op.Key)
	case workload.OpRemove:
		return set.Remove(op.Key)
	default:
		return set.Contains(op.Key)
	}
}
