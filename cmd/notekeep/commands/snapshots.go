package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/notekeep/internal/core/domain"
	"go.trai.ch/notekeep/internal/ui/output"
	"go.trai.ch/notekeep/internal/ui/style"
	"go.trai.ch/zerr"
)

const snapshotTimeLayout = "2006-01-02 15:04:05"

func (c *CLI) newSnapshotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "Inspect and restore backup snapshots",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List snapshots, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snaps, err := c.app.Snapshots(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), c.output, snaps, func() string {
				return formatSnapshots(snaps)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "diff <name>",
		Short: "Print the JSON merge patch from a snapshot to the current backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := c.app.DiffSnapshot(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := json.Indent(&buf, patch, "", "  "); err != nil {
				return zerr.Wrap(err, "failed to format patch")
			}
			buf.WriteByte('\n')
			_, err = buf.WriteTo(cmd.OutOrStdout())
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "restore <name>",
		Short: "Replace the backup file with a snapshot",
		Long: "Replace the backup file with the named snapshot. The current backup file " +
			"is snapshotted first, so a restore can be undone.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.app.RestoreSnapshot(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), c.output, result, func() string {
				return formatRestore(cmd, result)
			})
		},
	})

	return cmd
}

func formatSnapshots(snaps []domain.Snapshot) string {
	if len(snaps) == 0 {
		return "No snapshots yet"
	}

	width := len("NAME")
	for _, s := range snaps {
		width = max(width, len(s.Name))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s  %-19s  %s", width, "NAME", "TAKEN", "SIZE")
	for _, s := range snaps {
		fmt.Fprintf(&b, "\n%-*s  %-19s  %d", width, s.Name, s.TakenAt.Local().Format(snapshotTimeLayout), s.Size)
	}
	return b.String()
}

func formatRestore(cmd *cobra.Command, result *domain.RestoreResult) string {
	out := output.New(cmd.OutOrStdout())

	var b strings.Builder
	b.WriteString(output.Paint(out, style.Check, string(style.Green)))
	fmt.Fprintf(&b, " Restored %s (%d meetings)\n", result.Restored.Name, result.MeetingCount)
	fmt.Fprintf(&b, "  %-9s %s", "location", result.BackupPath)
	if result.Safety != nil {
		fmt.Fprintf(&b, "\n  %-9s %s", "undo with", result.Safety.Name)
	}
	if result.Pruned > 0 {
		fmt.Fprintf(&b, "\n  %-9s %d", "pruned", result.Pruned)
	}
	return b.String()
}
