// Package merge reconciles a backup document with the live cache document.
package merge

import "go.trai.ch/notekeep/internal/core/domain"

// Merge folds current into backup and reports the outcome in terms of meetings.
//
// For every section the backup entries are kept and each current entry
// replaces its counterpart, except when the current value is empty while the
// backup value is not. Entries only present in the backup survive unchanged.
// Neither input is modified.
func Merge(backup, current domain.CacheDocument) (domain.CacheDocument, domain.ReconciliationReport) {
	var merged domain.CacheDocument
	for _, name := range domain.Sections {
		merged.SetSection(name, mergeSection(backup.Section(name), current.Section(name)))
	}

	return merged, reconcile(backup.Documents, current.Documents)
}

func mergeSection(backup, current domain.Section) domain.Section {
	result := backup.Clone()
	for id, value := range current {
		if value.IsEmpty() && !result[id].IsEmpty() {
			continue
		}
		result[id] = value
	}
	return result
}

// reconcile counts identifiers only. An identifier present on both sides is
// updated even when every incoming value was rejected.
func reconcile(backup, current domain.Section) domain.ReconciliationReport {
	report := domain.ReconciliationReport{
		MeetingsBefore: len(backup),
	}
	for id := range current {
		if _, ok := backup[id]; ok {
			report.Updated++
		} else {
			report.New++
		}
	}
	report.Preserved = report.MeetingsBefore - report.Updated
	report.MeetingsAfter = report.MeetingsBefore + report.New
	return report
}
