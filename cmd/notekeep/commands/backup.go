package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/notekeep/internal/adapters/tools"
	"go.trai.ch/notekeep/internal/core/domain"
	"go.trai.ch/notekeep/internal/ui/output"
	"go.trai.ch/notekeep/internal/ui/style"
)

func (c *CLI) newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Merge the cache file into the backup file",
		Long: "Snapshot the current backup file, merge the live cache into it without " +
			"dropping meetings the cache no longer holds, and prune old snapshots.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := c.app.Backup(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), c.output, result, func() string {
				return formatCycle(cmd, result)
			})
		},
	}
}

func (c *CLI) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the backup file and its snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := c.app.Status(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), c.output, status, func() string {
				return tools.FormatStatus(status)
			})
		},
	}
}

func (c *CLI) newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Back up the cache file whenever it changes",
		Long: "Run a backup cycle, then one cycle per change of the cache file once it " +
			"has been quiet for a moment. Runs until interrupted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Watch(cmd.Context())
		},
	}
}

func formatCycle(cmd *cobra.Command, result *domain.CycleResult) string {
	out := output.New(cmd.OutOrStdout())
	r := result.Report

	var b strings.Builder
	b.WriteString(output.Paint(out, style.Check, string(style.Green)))
	b.WriteString(" Backup complete\n")
	fmt.Fprintf(&b, "  %-10s %d %s %d\n", "meetings", r.MeetingsBefore, style.Arrow, r.MeetingsAfter)
	fmt.Fprintf(&b, "  %-10s %d\n", "new", r.New)
	fmt.Fprintf(&b, "  %-10s %d\n", "updated", r.Updated)
	fmt.Fprintf(&b, "  %-10s %d\n", "preserved", r.Preserved)
	fmt.Fprintf(&b, "  %-10s %s", "location", result.BackupPath)
	if result.Snapshot != nil {
		fmt.Fprintf(&b, "\n  %-10s %s", "snapshot", result.Snapshot.Name)
	}
	if result.Pruned > 0 {
		fmt.Fprintf(&b, "\n  %-10s %d", "pruned", result.Pruned)
	}
	return b.String()
}
