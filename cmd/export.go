package cmd

import (
	"fmt"
	"os"

	"schedsync/internal/schedule"

	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the schedule as an iCalendar file",
	Long: `Export the local schedule file as iCalendar data for use in external
calendar applications. Recurring entries become weekly RRULE events and
disabled entries are exported with status CANCELLED.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
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

	data := doc.ToICS()
	if exportOutput == "" {
		fmt.Print(data)
		return nil
	}
	if err := os.WriteFile(exportOutput, []byte(data), 0o644); err != nil {
		return fmt.Errorf("failed to write %q: %w", exportOutput, err)
	}
	return nil
}
