package domain

import "time"

// BackupMetadata describes the accumulated backup file.
type BackupMetadata struct {
	// CreatedAt is set when the backup is first written and never changes afterwards.
	CreatedAt string `json:"created_at"`
	// LastMergedAt is refreshed on every cycle.
	LastMergedAt string `json:"last_merged_at"`
	// SourcePath is the cache file merged by the latest cycle.
	SourcePath string `json:"source_path"`
	// MeetingCount equals the meetings_after counter of the latest cycle.
	MeetingCount int `json:"meeting_count"`
	// Version is the backup format version.
	Version int `json:"version"`
}

// BackupFile is the on-disk layout of the backup file.
type BackupFile struct {
	Metadata       BackupMetadata `json:"backup_metadata"`
	Documents      Section        `json:"documents"`
	Transcripts    Section        `json:"transcripts"`
	DocumentPanels Section        `json:"documentPanels"`
}

// NewBackupFile assembles a backup file from merged sections.
// Nil sections are written as empty objects.
func NewBackupFile(meta BackupMetadata, doc CacheDocument) *BackupFile {
	return &BackupFile{
		Metadata:       meta,
		Documents:      orEmpty(doc.Documents),
		Transcripts:    orEmpty(doc.Transcripts),
		DocumentPanels: orEmpty(doc.DocumentPanels),
	}
}

func orEmpty(s Section) Section {
	if s == nil {
		return Section{}
	}
	return s
}

// BackupState is what a cycle carries over from an existing backup file.
type BackupState struct {
	Document CacheDocument
	// CreatedAt is the preserved created_at value, empty if the old file had none.
	CreatedAt string
	// LastMergedAt is informational and is replaced by every cycle.
	LastMergedAt string
}

// FormatTimestamp renders t the way backup metadata stores timestamps.
func FormatTimestamp(t time.Time) string {
	return t.Format(MetadataTimeLayout)
}
