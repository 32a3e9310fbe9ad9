package merge_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/notekeep/internal/core/domain"
	"go.trai.ch/notekeep/internal/engine/merge"
)

func v(x any) domain.Value {
	return domain.MustValue(x)
}

func title(s string) domain.Value {
	return v(map[string]any{"title": s})
}

func segments(texts ...string) domain.Value {
	out := make([]any, 0, len(texts))
	for _, t := range texts {
		out = append(out, map[string]any{"text": t})
	}
	return v(out)
}

func TestMerge_IntoEmptyBackup(t *testing.T) {
	current := domain.CacheDocument{
		Documents:   domain.Section{"m1": title("A"), "m2": title("B")},
		Transcripts: domain.Section{"m1": segments("hi")},
	}

	merged, report := merge.Merge(domain.CacheDocument{}, current)

	assert.Len(t, merged.Documents, 2)
	assert.Equal(t, domain.ReconciliationReport{
		MeetingsBefore: 0,
		MeetingsAfter:  2,
		New:            2,
		Updated:        0,
		Preserved:      0,
	}, report)
}

func TestMerge_PreservesPrunedMeetings(t *testing.T) {
	backup := domain.CacheDocument{
		Documents:   domain.Section{"old": title("Old"), "shared": title("Shared v1")},
		Transcripts: domain.Section{"old": segments("old transcript")},
	}
	current := domain.CacheDocument{
		Documents:   domain.Section{"shared": title("Shared v2"), "new": title("New")},
		Transcripts: domain.Section{"shared": segments("updated")},
	}

	merged, report := merge.Merge(backup, current)

	want := domain.CacheDocument{
		Documents: domain.Section{
			"old":    title("Old"),
			"shared": title("Shared v2"),
			"new":    title("New"),
		},
		Transcripts: domain.Section{
			"old":    segments("old transcript"),
			"shared": segments("updated"),
		},
		DocumentPanels: domain.Section{},
	}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Errorf("merged document mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, domain.ReconciliationReport{
		MeetingsBefore: 2,
		MeetingsAfter:  3,
		New:            1,
		Updated:        1,
		Preserved:      1,
	}, report)
}

func TestMerge_EmptyValueDoesNotOverwrite(t *testing.T) {
	backup := domain.CacheDocument{
		Documents:      domain.Section{"m1": title("Meeting")},
		Transcripts:    domain.Section{"m1": segments("real transcript")},
		DocumentPanels: domain.Section{"m1": v(map[string]any{"p1": map[string]any{"content": "notes"}})},
	}
	current := domain.CacheDocument{
		Documents:      domain.Section{"m1": title("Meeting updated")},
		Transcripts:    domain.Section{"m1": v([]any{})},
		DocumentPanels: domain.Section{"m1": v(map[string]any{})},
	}

	merged, report := merge.Merge(backup, current)

	assert.True(t, merged.Transcripts["m1"].Equal(segments("real transcript")))
	assert.True(t, merged.Documents["m1"].Equal(title("Meeting updated")))
	assert.True(t, merged.DocumentPanels["m1"].Equal(backup.DocumentPanels["m1"]))
	assert.Equal(t, 1, report.Updated)
}

func TestMerge_EmptinessKinds(t *testing.T) {
	tests := []struct {
		name    string
		backup  domain.Value
		current domain.Value
		want    domain.Value
	}{
		{name: "null keeps backup", backup: v("text"), current: v(nil), want: v("text")},
		{name: "empty string keeps backup", backup: v("text"), current: v(""), want: v("text")},
		{name: "empty list keeps backup", backup: v([]int{1}), current: v([]int{}), want: v([]int{1})},
		{name: "empty map keeps backup", backup: v(map[string]int{"a": 1}), current: v(map[string]int{}), want: v(map[string]int{"a": 1})},
		{name: "empty replaces empty", backup: v([]int{}), current: v(""), want: v("")},
		{name: "zero is not empty", backup: v(5), current: v(0), want: v(0)},
		{name: "false is not empty", backup: v(true), current: v(false), want: v(false)},
		{name: "shape change is accepted", backup: v([]int{1}), current: v(map[string]int{"a": 1}), want: v(map[string]int{"a": 1})},
		{name: "empty fills absent", backup: domain.Value{}, current: v([]int{}), want: v([]int{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backup := domain.CacheDocument{Transcripts: domain.Section{}}
			if !tt.backup.IsAbsent() {
				backup.Transcripts["m1"] = tt.backup
			}
			current := domain.CacheDocument{Transcripts: domain.Section{"m1": tt.current}}

			merged, _ := merge.Merge(backup, current)

			got, ok := merged.Transcripts["m1"]
			assert.True(t, ok)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestMerge_HandlesMissingSections(t *testing.T) {
	backup := domain.CacheDocument{Documents: domain.Section{"m1": title("A")}}
	current := domain.CacheDocument{
		Documents:   domain.Section{"m2": title("B")},
		Transcripts: domain.Section{"m2": v([]any{})},
	}

	merged, _ := merge.Merge(backup, current)

	assert.Contains(t, merged.Documents, "m1")
	assert.Contains(t, merged.Documents, "m2")
	assert.Contains(t, merged.Transcripts, "m2")
	assert.NotNil(t, merged.DocumentPanels)
	assert.Empty(t, merged.DocumentPanels)
}

func TestMerge_EmptyCurrentPreservesEverything(t *testing.T) {
	backup := domain.CacheDocument{Documents: domain.Section{"a": title("A"), "b": title("B")}}

	merged, report := merge.Merge(backup, domain.CacheDocument{})

	assert.Len(t, merged.Documents, 2)
	assert.Equal(t, domain.ReconciliationReport{
		MeetingsBefore: 2,
		MeetingsAfter:  2,
		New:            0,
		Updated:        0,
		Preserved:      2,
	}, report)
}

func TestMerge_IdempotentForIdenticalInputs(t *testing.T) {
	doc := domain.CacheDocument{
		Documents:      domain.Section{"a": title("A"), "b": title("B"), "c": title("C")},
		Transcripts:    domain.Section{"a": segments("x")},
		DocumentPanels: domain.Section{},
	}

	merged, report := merge.Merge(doc, doc)
	again, againReport := merge.Merge(merged, doc)

	if diff := cmp.Diff(doc, merged); diff != "" {
		t.Errorf("merge of identical inputs changed the document (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(merged, again); diff != "" {
		t.Errorf("second merge is not idempotent (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, report.Updated)
	assert.Equal(t, 3, report.MeetingsAfter)
	assert.Zero(t, report.New)
	assert.Zero(t, report.Preserved)

	assert.Equal(t, domain.ReconciliationReport{
		MeetingsBefore: 3,
		MeetingsAfter:  3,
		Updated:        3,
	}, againReport)
}

func TestMerge_RemergingUnchangedCurrentReportsNoChange(t *testing.T) {
	current := domain.CacheDocument{
		Documents:   domain.Section{"m1": title("One"), "m2": title("Two")},
		Transcripts: domain.Section{"m1": segments("hello")},
	}

	first, firstReport := merge.Merge(domain.CacheDocument{}, current)
	assert.Equal(t, 2, firstReport.New)

	second, report := merge.Merge(first, current)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("re-merge changed the document (-want +got):\n%s", diff)
	}
	assert.Equal(t, report.MeetingsBefore, report.MeetingsAfter)
	assert.Zero(t, report.New)
	assert.Equal(t, report.MeetingsAfter, report.Updated)
	assert.Zero(t, report.Preserved)
}

func TestMerge_UpdatedCountsRejectedEntries(t *testing.T) {
	backup := domain.CacheDocument{Documents: domain.Section{"m1": title("Kept")}}
	current := domain.CacheDocument{Documents: domain.Section{"m1": v(map[string]any{})}}

	merged, report := merge.Merge(backup, current)

	assert.True(t, merged.Documents["m1"].Equal(title("Kept")))
	assert.Equal(t, 1, report.Updated)
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	backup := domain.CacheDocument{Documents: domain.Section{"a": title("A")}}
	current := domain.CacheDocument{Documents: domain.Section{"b": title("B")}}

	_, _ = merge.Merge(backup, current)

	assert.Len(t, backup.Documents, 1)
	assert.Len(t, current.Documents, 1)
}

func TestMerge_UnionCompleteness(t *testing.T) {
	backup := domain.CacheDocument{
		Documents:      domain.Section{"a": title("A"), "b": v("")},
		DocumentPanels: domain.Section{"p": v(map[string]any{"x": 1})},
	}
	current := domain.CacheDocument{
		Documents:      domain.Section{"b": title("B"), "c": v(nil)},
		DocumentPanels: domain.Section{"q": v([]int{})},
	}

	merged, _ := merge.Merge(backup, current)

	for _, name := range domain.Sections {
		for id := range backup.Section(name) {
			assert.Contains(t, merged.Section(name), id, "section %s", name)
		}
		for id := range current.Section(name) {
			assert.Contains(t, merged.Section(name), id, "section %s", name)
		}
	}
}
