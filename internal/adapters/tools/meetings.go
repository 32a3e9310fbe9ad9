package tools

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"go.trai.ch/notekeep/internal/core/domain"
)

// Search scores every meeting against query: a title match counts two, each
// matching participant one and a transcript match one. Meetings are ranked
// by score, then by date with the most recent first.
func (t *Toolbox) Search(ctx context.Context, query string, limit int) (string, error) {
	if limit < 1 || limit > MaxSearchLimit {
		return "", invalidArguments(SearchMeetings, fmt.Sprintf("limit must be between 1 and %d, got %d", MaxSearchLimit, limit))
	}

	cat, err := t.catalog.RefreshIfStale(ctx)
	if err != nil {
		return "", err
	}
	if len(cat.Meetings) == 0 {
		return "No meeting data available", nil
	}

	type hit struct {
		score   int
		meeting domain.Meeting
	}

	needle := strings.ToLower(query)
	var hits []hit
	for _, id := range cat.MeetingIDs() {
		m := cat.Meetings[id]
		score := 0
		if strings.Contains(strings.ToLower(m.Title), needle) {
			score += 2
		}
		for _, p := range m.Participants {
			if strings.Contains(strings.ToLower(p), needle) {
				score++
			}
		}
		if tr, ok := cat.Transcripts[id]; ok && strings.Contains(strings.ToLower(tr.Content), needle) {
			score++
		}
		if score > 0 {
			hits = append(hits, hit{score: score, meeting: m})
		}
	}

	if len(hits) == 0 {
		return fmt.Sprintf("No meetings found matching '%s'", query), nil
	}

	slices.SortStableFunc(hits, func(a, b hit) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return b.meeting.Date.Compare(a.meeting.Date)
	})
	hits = hits[:min(limit, len(hits))]

	lines := []string{fmt.Sprintf("Found %d meeting(s) matching '%s':\n", len(hits), query)}
	for _, h := range hits {
		lines = append(lines,
			fmt.Sprintf("• **%s** (%s)", h.meeting.Title, h.meeting.ID),
			"  Date: "+t.formatTime(h.meeting.Date),
		)
		if len(h.meeting.Participants) > 0 {
			lines = append(lines, "  Participants: "+strings.Join(h.meeting.Participants, ", "))
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n"), nil
}

// Meeting describes one meeting.
func (t *Toolbox) Meeting(ctx context.Context, id string) (string, error) {
	cat, err := t.catalog.RefreshIfStale(ctx)
	if err != nil {
		return "", err
	}

	m, ok := cat.Meetings[id]
	if !ok {
		return fmt.Sprintf("Meeting '%s' not found", id), nil
	}

	lines := []string{
		fmt.Sprintf("# Meeting Details: %s\n", m.Title),
		"**ID:** " + m.ID,
		"**Date:** " + t.formatTime(m.Date),
	}
	if len(m.Participants) > 0 {
		lines = append(lines, "**Participants:** "+strings.Join(m.Participants, ", "))
	}
	if m.Type != "" {
		lines = append(lines, "**Type:** "+m.Type)
	}
	if n := len(cat.NotesFor(id)); n > 0 {
		lines = append(lines, fmt.Sprintf("**Documents:** %d", n))
	}
	if _, ok := cat.Transcripts[id]; ok {
		lines = append(lines, "**Transcript:** Available")
	}
	return strings.Join(lines, "\n"), nil
}

// Transcript returns the full transcript of a meeting.
func (t *Toolbox) Transcript(ctx context.Context, id string) (string, error) {
	cat, err := t.catalog.RefreshIfStale(ctx)
	if err != nil {
		return "", err
	}

	tr, ok := cat.Transcripts[id]
	if !ok {
		return fmt.Sprintf("No transcript available for meeting '%s'", id), nil
	}

	lines := []string{fmt.Sprintf("# Transcript: %s\n", titleOf(cat, id))}
	if len(tr.Speakers) > 0 {
		lines = append(lines, "**Speakers:** "+strings.Join(tr.Speakers, ", "))
	}
	lines = append(lines, "\n## Transcript Content\n", tr.Content)
	return strings.Join(lines, "\n"), nil
}

// Notes returns the notes attached to a meeting.
func (t *Toolbox) Notes(ctx context.Context, id string) (string, error) {
	cat, err := t.catalog.RefreshIfStale(ctx)
	if err != nil {
		return "", err
	}

	notes := cat.NotesFor(id)
	if len(notes) == 0 {
		return fmt.Sprintf("No documents found for meeting '%s'", id), nil
	}

	lines := []string{
		fmt.Sprintf("# Documents: %s\n", titleOf(cat, id)),
		fmt.Sprintf("Found %d document(s):\n", len(notes)),
	}
	for _, n := range notes {
		lines = append(lines,
			"## "+n.Title,
			"**Type:** "+n.DocumentType,
			"**Created:** "+t.formatTime(n.CreatedAt),
			fmt.Sprintf("\n%s\n", n.Content),
			"---\n",
		)
	}
	return strings.Join(lines, "\n"), nil
}

func titleOf(cat *domain.Catalog, id string) string {
	if m, ok := cat.Meetings[id]; ok {
		return m.Title
	}
	return id
}
