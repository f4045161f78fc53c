package commands

import (
	"fmt"

	"zdsctl/pkg/journal"
	"zdsctl/pkg/types"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [NAME]",
	Short: "Show recent converge runs from the journal",
	Long:  `List recent converge runs, newest first. With NAME, only runs against that data set are shown.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ZDS == nil {
			return fmt.Errorf("app not initialized")
		}

		var runs []journal.Run
		var err error
		if len(args) == 1 {
			runs, err = ZDS.Journal.ForName(cmd.Context(), types.DsName(args[0]), historyLimit)
		} else {
			runs, err = ZDS.Journal.Recent(cmd.Context(), historyLimit)
		}
		if err != nil {
			return fmt.Errorf("failed to query journal: %w", err)
		}
		if len(runs) == 0 {
			fmt.Println("no runs recorded")
			return nil
		}

		for _, run := range runs {
			status := "ok"
			if run.Changed {
				status = "changed"
			}
			if run.Error != "" {
				status = "failed"
			}
			fmt.Printf("%s  %-8s %-12s %-44s %dms\n",
				run.CreatedAt.Format("2006-01-02 15:04:05"), status, run.State, run.Name, run.DurationMs)
			if run.Error != "" {
				fmt.Printf("    %s\n", run.Error)
			}
			if len(run.Actions) > 0 && string(run.Actions) != "null" {
				fmt.Printf("    actions: %s\n", run.Actions)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum runs to show")
}
