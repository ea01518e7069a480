package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"fitsview/internal/config"
	"fitsview/internal/fits"
	"fitsview/internal/gui"
	"fitsview/internal/log"
	"fitsview/internal/table"
	"fitsview/internal/tui"
)

// NewRootCmd builds the viewer command. Exactly one FITS path is required;
// anything else prints usage and exits non-zero.
func NewRootCmd() *cobra.Command {
	var (
		configPath string
		noMmap     bool
		useTUI     bool
		debug      bool
	)

	cmd := &cobra.Command{
		Use:     "fitsview <file.fits>",
		Short:   "A FITS table and image viewer",
		Long:    `Fitsview browses the tables and images inside a FITS file: paged tabular data with column selection, and image display with zoom, rotation, and sky coordinates.`,
		Version: version,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				log.SetDebug(true)
			}

			var cfg *config.Config
			var err error
			if configPath != "" {
				cfg, err = config.LoadConfigFile(configPath)
			} else {
				cfg, err = config.LoadConfig()
			}
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			mapped := cfg.Access.Mapped && !noMmap
			session := fits.NewSession(mapped)

			if useTUI {
				return runTUI(session, cfg, args[0])
			}

			app, err := gui.NewApp(cfg, session, args[0])
			if err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a config file")
	cmd.Flags().BoolVar(&noMmap, "no-mmap", false, "read the whole file instead of memory mapping")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "browse the table in the terminal instead of the GUI")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	cmd.SilenceUsage = true

	return cmd
}

// runTUI pages the file's first table in the terminal.
func runTUI(session *fits.Session, cfg *config.Config, path string) error {
	session.Notify = func(title, message string) {
		log.Warnf("%s: %s", title, message)
	}
	f, err := session.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var src table.Source
	if tbl, ok := f.FirstTable(); ok {
		src = tbl
	}
	browser := table.NewBrowser(src,
		cfg.Table.PageSize, cfg.Table.ColumnWidth, cfg.Table.FontSize, cfg.Table.MaxColumns)

	p := tea.NewProgram(tui.New(path, browser), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal viewer: %w", err)
	}
	return nil
}
