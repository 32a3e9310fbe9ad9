package tools

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"go.trai.ch/notekeep/internal/core/domain"
	"go.trai.ch/zerr"
)

// Pattern types accepted by Analyze.
const (
	PatternTopics       = "topics"
	PatternParticipants = "participants"
	PatternFrequency    = "frequency"
)

const (
	maxParticipants = 10
	maxTopics       = 15
	minTopicLength  = 4
)

var topicStopWords = map[string]struct{}{
	"meeting": {},
	"call":    {},
	"sync":    {},
	"with":    {},
}

// date layouts accepted for analysis bounds. Layouts without an offset are
// read in the display location.
var boundLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// Analyze reports participant, frequency or topic patterns over the meetings
// whose date lies within [start, end]. Empty bounds are open. An end bound
// given as a plain date includes that whole day.
func (t *Toolbox) Analyze(ctx context.Context, pattern, start, end string) (string, error) {
	switch pattern {
	case PatternTopics, PatternParticipants, PatternFrequency:
	default:
		return "", zerr.With(zerr.Wrap(domain.ErrUnknownPattern, fmt.Sprintf("pattern %q", pattern)),
			"expected", []string{PatternTopics, PatternParticipants, PatternFrequency})
	}

	from, err := t.parseBound(start, false)
	if err != nil {
		return "", err
	}
	to, err := t.parseBound(end, true)
	if err != nil {
		return "", err
	}

	cat, err := t.catalog.RefreshIfStale(ctx)
	if err != nil {
		return "", err
	}
	if len(cat.Meetings) == 0 {
		return "No meeting data available", nil
	}

	var meetings []domain.Meeting
	for _, id := range cat.MeetingIDs() {
		m := cat.Meetings[id]
		if !from.IsZero() && m.Date.Before(from) {
			continue
		}
		if !to.IsZero() && m.Date.After(to) {
			continue
		}
		meetings = append(meetings, m)
	}

	switch pattern {
	case PatternParticipants:
		return analyzeParticipants(meetings), nil
	case PatternFrequency:
		return t.analyzeFrequency(meetings), nil
	default:
		return analyzeTopics(meetings), nil
	}
}

func (t *Toolbox) parseBound(s string, end bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	for _, layout := range boundLayouts {
		if ts, err := time.ParseInLocation(layout, s, t.location); err == nil {
			return ts, nil
		}
	}
	day, err := time.ParseInLocation(time.DateOnly, s, t.location)
	if err != nil {
		return time.Time{}, zerr.Wrap(domain.ErrInvalidDate, fmt.Sprintf("date %q", s))
	}
	if end {
		return day.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	return day, nil
}

type count struct {
	key string
	n   int
}

// rank orders counts by frequency, then alphabetically.
func rank(counts map[string]int, limit int) []count {
	ranked := make([]count, 0, len(counts))
	for _, key := range slices.Sorted(maps.Keys(counts)) {
		ranked = append(ranked, count{key: key, n: counts[key]})
	}
	slices.SortStableFunc(ranked, func(a, b count) int {
		return cmp.Compare(b.n, a.n)
	})
	return ranked[:min(limit, len(ranked))]
}

func analyzeParticipants(meetings []domain.Meeting) string {
	counts := make(map[string]int)
	for _, m := range meetings {
		for _, p := range m.Participants {
			counts[p]++
		}
	}
	if len(counts) == 0 {
		return "No participant data found"
	}

	lines := []string{
		fmt.Sprintf("# Participant Analysis (%d meetings)\n", len(meetings)),
		"## Most Active Participants\n",
	}
	for _, c := range rank(counts, maxParticipants) {
		lines = append(lines, fmt.Sprintf("• **%s:** %d meetings", c.key, c.n))
	}
	return strings.Join(lines, "\n")
}

func (t *Toolbox) analyzeFrequency(meetings []domain.Meeting) string {
	if len(meetings) == 0 {
		return "No meetings found for analysis"
	}

	monthly := make(map[string]int)
	for _, m := range meetings {
		monthly[m.Date.In(t.location).Format("2006-01")]++
	}

	lines := []string{
		fmt.Sprintf("# Meeting Frequency Analysis (%d meetings)\n", len(meetings)),
		"## Meetings by Month\n",
	}
	for _, month := range slices.Sorted(maps.Keys(monthly)) {
		lines = append(lines, fmt.Sprintf("• **%s:** %d meetings", month, monthly[month]))
	}

	avg := float64(len(meetings)) / float64(len(monthly))
	lines = append(lines, fmt.Sprintf("\n**Average per month:** %.1f", avg))
	return strings.Join(lines, "\n")
}

func analyzeTopics(meetings []domain.Meeting) string {
	if len(meetings) == 0 {
		return "No meetings found for analysis"
	}

	counts := make(map[string]int)
	for _, m := range meetings {
		for _, word := range strings.Fields(strings.ToLower(m.Title)) {
			if utf8.RuneCountInString(word) < minTopicLength {
				continue
			}
			if _, stop := topicStopWords[word]; stop {
				continue
			}
			counts[word]++
		}
	}
	if len(counts) == 0 {
		return "No significant topics found in meeting titles"
	}

	lines := []string{
		fmt.Sprintf("# Topic Analysis (%d meetings)\n", len(meetings)),
		"## Most Common Topics (from titles)\n",
	}
	for _, c := range rank(counts, maxTopics) {
		lines = append(lines, fmt.Sprintf("• **%s:** %d mentions", c.key, c.n))
	}
	return strings.Join(lines, "\n")
}
