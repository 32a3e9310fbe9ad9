package domain

// ReconciliationReport summarizes a merge in terms of meetings,
// i.e. identifiers of the documents section.
type ReconciliationReport struct {
	// MeetingsBefore is the number of meetings in the backup.
	MeetingsBefore int `json:"meetings_before" yaml:"meetings_before"`
	// MeetingsAfter is the number of meetings in the merged result.
	MeetingsAfter int `json:"meetings_after" yaml:"meetings_after"`
	// New counts meetings seen in the source for the first time.
	New int `json:"new" yaml:"new"`
	// Updated counts meetings present in both the backup and the source.
	Updated int `json:"updated" yaml:"updated"`
	// Preserved counts meetings the source no longer has.
	Preserved int `json:"preserved" yaml:"preserved"`
}

// CycleResult is the outcome of one backup cycle.
type CycleResult struct {
	Report     ReconciliationReport `json:"report" yaml:"report"`
	Snapshot   *Snapshot            `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`
	Pruned     int                  `json:"pruned" yaml:"pruned"`
	BackupPath string               `json:"backup_path" yaml:"backup_path"`
}

// BackupStatus describes the backup directory without modifying it.
type BackupStatus struct {
	SourcePath   string     `json:"source_path" yaml:"source_path"`
	BackupPath   string     `json:"backup_path" yaml:"backup_path"`
	Exists       bool       `json:"exists" yaml:"exists"`
	CreatedAt    string     `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	LastMergedAt string     `json:"last_merged_at,omitempty" yaml:"last_merged_at,omitempty"`
	MeetingCount int        `json:"meeting_count" yaml:"meeting_count"`
	Snapshots    []Snapshot `json:"snapshots" yaml:"snapshots"`
	Retention    int        `json:"retention" yaml:"retention"`
}

// RestoreResult is the outcome of restoring a snapshot over the backup file.
type RestoreResult struct {
	Restored     Snapshot  `json:"restored" yaml:"restored"`
	Safety       *Snapshot `json:"safety,omitempty" yaml:"safety,omitempty"`
	Pruned       int       `json:"pruned" yaml:"pruned"`
	MeetingCount int       `json:"meeting_count" yaml:"meeting_count"`
	BackupPath   string    `json:"backup_path" yaml:"backup_path"`
}
