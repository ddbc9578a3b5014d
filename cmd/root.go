package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"schedsync/internal/client"
	"schedsync/internal/config"
	"schedsync/internal/logging"
	"schedsync/internal/schedule"
	"schedsync/internal/state"
	"schedsync/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	serverURL    string
	scheduleFile string
	cfg          *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "schedsync",
	Short: "A terminal client for the scene scheduler",
	Long: `Schedsync is a terminal client for the scene scheduler: it keeps a
live connection to the schedule server, shows what is on air, and lets you
edit and commit the broadcast schedule.`,
	RunE: runTUI,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "Schedule server websocket URL")
	rootCmd.PersistentFlags().StringVarP(&scheduleFile, "file", "f", "", "Local schedule file")
}

func initConfig() {
	var err error
	cfg, err = config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if serverURL != "" {
		cfg.Server.URL = serverURL
	}
	if scheduleFile != "" {
		cfg.Schedule.File = scheduleFile
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	store := state.NewStore()

	// The program pointer is filled in below; log records arriving before
	// that are only written to the file.
	var program *tea.Program
	log, err := logging.Setup(logging.Options{
		FilePath: cfg.Log.File,
		Level:    logging.ParseLevel(cfg.Log.Level),
		// Console output would fight bubbletea for the terminal.
		Console: false,
		Notify: func(level slog.Level, message string) {
			if program != nil {
				program.Send(ui.ActivityMsg{Level: levelName(level), Message: message})
			}
		},
	})
	if err != nil {
		return fmt.Errorf("error setting up logging: %w", err)
	}

	c := client.New(cfg.Server.URL, store, log)
	c.SetReconnectDelay(cfg.Server.ReconnectDelay.Std())

	model := ui.NewModel(cfg, store, c)
	p := tea.NewProgram(model, tea.WithAltScreen())
	program = p

	unsubscribe := store.Subscribe(func(topic string) {
		p.Send(ui.StateChangedMsg{Topic: topic})
	})
	defer unsubscribe()
	store.SetConfirmLoadHandler(func(incoming *schedule.Document) {
		p.Send(ui.ConfirmLoadMsg{Incoming: incoming})
	})
	store.SetPanicHandler(func(topic string, recovered any) {
		log.Error("state listener panic", "topic", topic, "panic", recovered)
	})
	c.SetActivityHandler(func(level, message string) {
		p.Send(ui.ActivityMsg{Level: level, Message: message})
	})

	if cfg.Schedule.WatchFile && cfg.Schedule.File != "" {
		watcher, err := schedule.NewWatcher(cfg.Schedule.File,
			fileReload(store, log, cfg.Schedule.File),
			func(err error) {
				log.Warn("schedule file watch error", "error", err)
			},
		)
		if err != nil {
			log.Warn("cannot watch schedule file", "file", cfg.Schedule.File, "error", err)
		} else {
			defer watcher.Close()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

// fileReload applies a changed schedule file to the working copy. Unsaved
// local edits win over the file, same as they do over background server
// updates; the user can reload by hand once they have committed or reverted.
func fileReload(store *state.Store, log *slog.Logger, file string) func(*schedule.Document) {
	return func(doc *schedule.Document) {
		if store.Editor().IsDirty {
			log.Warn("schedule file changed on disk, keeping unsaved edits", "file", file)
			return
		}
		log.Info("schedule file changed, reloading", "file", file)
		store.SetWorkingSchedule(doc)
	}
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warn"
	default:
		return "info"
	}
}
