package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/aliskhannn/revisit/internal/importer"
)

var importOpts = struct {
	userID   int64
	sheet    string
	startRow int
}{}

var importCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Import solved problems from a spreadsheet",
	Long: `Import reads one problem per row: name, difficulty, tags, date solved,
url and notes in columns A to F. Each problem gets its initial reminders.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if importOpts.userID <= 0 {
			return errors.New("--user is required")
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.wire(false); err != nil {
			return err
		}

		cfg := importer.DefaultConfig()
		cfg.SheetName = importOpts.sheet
		cfg.StartRow = importOpts.startRow

		res, err := importer.New(a.problems, cfg, a.logger).ImportFile(cmd.Context(), importOpts.userID, args[0])
		if err != nil {
			return err
		}

		cmd.Printf("processed %d rows: %d created, %d reminders scheduled, %d blank\n",
			res.Processed, res.Created, res.Reminders, res.Skipped)
		for _, e := range res.Errors {
			cmd.PrintErrln(e)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().Int64Var(&importOpts.userID, "user", 0, "owner of the imported problems")
	importCmd.Flags().StringVar(&importOpts.sheet, "sheet", "", "sheet name (defaults to the active sheet)")
	importCmd.Flags().IntVar(&importOpts.startRow, "start-row", 2, "first data row, 1-based")
	rootCmd.AddCommand(importCmd)
}
