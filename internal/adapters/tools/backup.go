package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.trai.ch/notekeep/internal/core/domain"
)

// Backup runs a backup cycle and summarizes it. Failures are described in
// the returned text.
func (t *Toolbox) Backup(ctx context.Context) string {
	result, err := t.backups.Backup(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrSourceNotFound) {
			return "Cache file not found: " + t.sourcePath
		}
		return "Backup failed: " + err.Error()
	}
	return FormatCycleResult(result)
}

// FormatCycleResult renders the summary of a backup cycle.
func FormatCycleResult(result *domain.CycleResult) string {
	r := result.Report
	return fmt.Sprintf("# Backup Complete\n\n"+
		"- **Meetings before:** %d\n"+
		"- **Meetings after:** %d\n"+
		"- **New:** %d\n"+
		"- **Updated:** %d\n"+
		"- **Preserved:** %d\n"+
		"- **Location:** `%s`",
		r.MeetingsBefore, r.MeetingsAfter, r.New, r.Updated, r.Preserved, result.BackupPath)
}

// Status describes the backup file and its snapshots.
func (t *Toolbox) Status(ctx context.Context) (string, error) {
	status, err := t.backups.Status(ctx)
	if err != nil {
		return "", err
	}
	return FormatStatus(status), nil
}

// FormatStatus renders a backup status report.
func FormatStatus(status *domain.BackupStatus) string {
	lines := []string{"# Backup Status\n"}

	if !status.Exists {
		lines = append(lines, fmt.Sprintf("No backup found at `%s`", status.BackupPath))
	} else {
		lines = append(lines,
			fmt.Sprintf("- **Location:** `%s`", status.BackupPath),
			fmt.Sprintf("- **Meetings:** %d", status.MeetingCount),
		)
		if status.CreatedAt != "" {
			lines = append(lines, "- **Created:** "+status.CreatedAt)
		}
		if status.LastMergedAt != "" {
			lines = append(lines, "- **Last merged:** "+status.LastMergedAt)
		}
	}
	lines = append(lines, fmt.Sprintf("- **Source:** `%s`", status.SourcePath))

	lines = append(lines, fmt.Sprintf("\n## Snapshots (%d of %d kept)\n", len(status.Snapshots), status.Retention))
	if len(status.Snapshots) == 0 {
		lines = append(lines, "No snapshots yet")
	}
	for i := len(status.Snapshots) - 1; i >= 0; i-- {
		s := status.Snapshots[i]
		lines = append(lines, fmt.Sprintf("• %s (%d bytes)", s.Name, s.Size))
	}
	return strings.Join(lines, "\n")
}
