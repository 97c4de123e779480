package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pdq/constants"
	"pdq/journal"
)

func newRunsCmd() *cobra.Command {
	var (
		journalPath string
		workload    string
	)
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List benchmark runs recorded in the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := journal.Open(cmd.Context(), journalPath)
			if err != nil {
				return err
			}
			defer j.Close()

			runs, err := j.Runs(cmd.Context(), workload)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tWORKLOAD\tIMPL\tN\tSEED\tNS/OP\tCREATED")
			for _, r := range runs {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%.2f\t%s\n",
					r.ID, r.Workload, r.Impl, r.N, r.Seed, r.NsPerOp,
					r.Created.UTC().Format("2006-01-02T15:04:05Z"))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&journalPath, "journal", constants.DefaultJournalPath, "sqlite journal path")
	cmd.Flags().StringVar(&workload, "workload", "", "filter by workload name")
	return cmd
}
