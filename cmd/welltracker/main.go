package main

import (
	"encoding/json"
	"fmt"
	"os"

	"welltracker/pkg/config"
	"welltracker/pkg/journal"
	"welltracker/pkg/schema"
	"welltracker/pkg/sheets"

	"github.com/rotisserie/eris"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	cfg        *config.Config
	layout     schema.Schema
)

var rootCmd = &cobra.Command{
	Use:          "welltracker-admin",
	Short:        "Maintenance tasks against the well workbook",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = c
		if verbose {
			cfg.Log.Level = "debug"
		}
		if err := config.InitLogger(cfg.Log); err != nil {
			return err
		}

		layout, err = schema.Load(cfg.Workbook.Schema)
		return err
	},
}

var (
	totalSheet    string
	dropdownSheet string
	wellsSheet    string
	wellsCategory string
	historyWell   string
	journalLimit  int
)

var totalCmd = &cobra.Command{
	Use:   "total",
	Short: "Recompute the gain total of a sheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, done, err := openClient(cmd)
		if err != nil {
			return err
		}
		defer done()

		total, err := c.TotalGain(cmd.Context(), totalSheet)
		if err != nil {
			return err
		}
		return printJSON(map[string]float64{"total_gain": total})
	},
}

var wellsCmd = &cobra.Command{
	Use:   "wells",
	Short: "List the wells of a sheet with a PE/RE value",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, done, err := openClient(cmd)
		if err != nil {
			return err
		}
		defer done()

		wells, err := c.Wells(cmd.Context(), wellsSheet, wellsCategory)
		if err != nil {
			return err
		}
		return printJSON(wells)
	},
}

var dropdownsCmd = &cobra.Command{
	Use:   "dropdowns",
	Short: "Print the dropdown vocabularies from the lists sheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, done, err := openClient(cmd)
		if err != nil {
			return err
		}
		defer done()

		sheet := dropdownSheet
		if sheet == "" && len(layout.Sheets) > 0 {
			sheet = layout.Sheets[0]
		}
		options, err := c.DropdownOptions(cmd.Context(), sheet)
		if err != nil {
			return err
		}
		return printJSON(options)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print resolved comments for a well",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, done, err := openClient(cmd)
		if err != nil {
			return err
		}
		defer done()

		comments, err := c.History(cmd.Context(), historyWell)
		if err != nil {
			return err
		}
		return printJSON(map[string][]string{"comments": comments})
	},
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Print recent workbook mutations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Journal.Path == "" {
			return eris.New("journal.path is not configured")
		}
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer j.Close()
		if err := j.Migrate(cmd.Context()); err != nil {
			return err
		}

		entries, err := j.Recent(cmd.Context(), journalLimit)
		if err != nil {
			return err
		}
		return printJSON(entries)
	},
}

var sheetsCmd = &cobra.Command{
	Use:   "sheets",
	Short: "List the editable sheets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(layout.Sheets)
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./welltracker.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	totalCmd.Flags().StringVar(&totalSheet, "sheet", "", "sheet to total (required)")
	_ = totalCmd.MarkFlagRequired("sheet")
	wellsCmd.Flags().StringVar(&wellsSheet, "sheet", "", "sheet to read (required)")
	wellsCmd.Flags().StringVar(&wellsCategory, "pe-re", "", "PE/RE value to match (required)")
	_ = wellsCmd.MarkFlagRequired("sheet")
	_ = wellsCmd.MarkFlagRequired("pe-re")
	dropdownsCmd.Flags().StringVar(&dropdownSheet, "sheet", "", "sheet the dropdowns are for (default first sheet)")
	historyCmd.Flags().StringVar(&historyWell, "well", "", "well name (required)")
	_ = historyCmd.MarkFlagRequired("well")
	journalCmd.Flags().IntVar(&journalLimit, "limit", 20, "number of entries")

	rootCmd.AddCommand(totalCmd, wellsCmd, dropdownsCmd, historyCmd, journalCmd, sheetsCmd)

	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}

// openClient builds a workbook client, journalling when configured. The
// returned func closes whatever was opened.
func openClient(cmd *cobra.Command) (*sheets.Client, func(), error) {
	opts := []sheets.Option{sheets.WithLockTimeout(cfg.Workbook.LockTimeout)}
	done := func() {}
	if cfg.Journal.Path != "" {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return nil, nil, err
		}
		if err := j.Migrate(cmd.Context()); err != nil {
			j.Close()
			return nil, nil, err
		}
		opts = append(opts, sheets.WithRecorder(j))
		done = func() {
			if err := j.Close(); err != nil {
				log.WithError(err).Warn("Failed to close journal")
			}
		}
	}
	return sheets.NewClient(cfg.Workbook.Path, layout, opts...), done, nil
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrap(err, "encode output")
	}
	_, err = fmt.Fprintln(os.Stdout, string(out))
	return err
}
