package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"team-tracker/internal/activity"

	"github.com/spf13/cobra"
)

var (
	exportOut    string
	exportSearch string
	exportUser   string
)

var exportAuditCmd = &cobra.Command{
	Use:   "export-audit",
	Short: "Write the full activity log as CSV",
	Long: `Writes every activity log entry, newest first, in the same CSV format as
the history export endpoint. The command runs with manager visibility.`,
	Example: `  tracker export-audit --out audit.csv --search status --user 6f1c...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := bootstrap()
		if err != nil {
			return err
		}

		entries, err := activity.NewGormStore(db).Find(cmd.Context(), activity.Query{})
		if err != nil {
			return err
		}
		entries = activity.Filter{Search: exportSearch, UserID: exportUser}.Apply(entries)

		out := exportOut
		if out == "" {
			out = activity.ExportFilename(time.Now())
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		defer f.Close()

		if err := activity.WriteCSV(f, entries); err != nil {
			return err
		}
		slog.Info("audit log exported", "file", out, "entries", len(entries))
		return f.Close()
	},
}

func init() {
	exportAuditCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default audit-log-<date>.csv)")
	exportAuditCmd.Flags().StringVar(&exportSearch, "search", "", "case-insensitive search over action, entity type and details")
	exportAuditCmd.Flags().StringVar(&exportUser, "user", "", "only entries by this user id")
}
