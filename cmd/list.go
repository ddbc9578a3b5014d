package cmd

import (
	"fmt"
	"time"

	"schedsync/internal/schedule"

	"github.com/spf13/cobra"
)

var listDays int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List upcoming schedule occurrences and exit",
	Long: `List the occurrences of the local schedule file over the coming days
in a simple text format and exit. Recurring entries are expanded into their
individual occurrences.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().IntVarP(&listDays, "days", "d", 7, "Number of days to list")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	if cfg == nil {
		initConfig()
	}
	if cfg.Schedule.File == "" {
		return fmt.Errorf("no schedule file configured")
	}

	doc, err := schedule.LoadFile(cfg.Schedule.File)
	if err != nil {
		return err
	}

	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 0, listDays)

	occurrences := doc.Expand(from, to)
	if len(occurrences) == 0 {
		fmt.Printf("No occurrences in the next %d days\n", listDays)
		return nil
	}

	lastDay := ""
	for _, occ := range occurrences {
		day := occ.Start.Format(cfg.UI.DateFormat)
		if day != lastDay {
			if lastDay != "" {
				fmt.Println()
			}
			fmt.Println(day)
			lastDay = day
		}
		fmt.Printf("  %s-%s  %s\n",
			occ.Start.Format(cfg.UI.TimeFormat),
			occ.End.Format(cfg.UI.TimeFormat),
			occ.Item.Title)
	}
	return nil
}
