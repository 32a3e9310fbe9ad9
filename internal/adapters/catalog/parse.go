// Package catalog parses cache documents into meetings, notes and transcripts.
package catalog

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"go.trai.ch/notekeep/internal/core/domain"
	"go.trai.ch/notekeep/internal/core/ports"
)

var (
	errNotMapping  = errors.New("entry is not an object")
	errInvalidDate = errors.New("created_at is not a valid timestamp")
	errNotString   = errors.New("field is not a string")
)

// timestamp layouts accepted for created_at, tried in order. Values without
// an offset are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Parser turns cache documents into catalogs. Entries that cannot be parsed
// are skipped and logged.
type Parser struct {
	logger ports.Logger
}

// NewParser creates a new Parser.
func NewParser(logger ports.Logger) *Parser {
	return &Parser{logger: logger}
}

// Parse builds a catalog from doc. Meetings without a created_at timestamp
// are dated at loadedAt.
func (p *Parser) Parse(doc domain.CacheDocument, loadedAt time.Time) *domain.Catalog {
	cat, errs := Parse(doc, loadedAt)
	for _, err := range errs {
		p.logger.Warn("skipping " + err.Error())
	}
	return cat
}

// Parse builds a catalog from doc and returns the entries that were skipped.
func Parse(doc domain.CacheDocument, loadedAt time.Time) (*domain.Catalog, []domain.EntryError) {
	cat := domain.NewCatalog(loadedAt)
	var errs []domain.EntryError

	for _, id := range sortedKeys(doc.Documents) {
		meeting, err := parseMeeting(id, doc.Documents[id], loadedAt)
		if err != nil {
			errs = append(errs, domain.EntryError{Section: domain.SectionDocuments, ID: id, Err: err})
			continue
		}
		cat.Meetings[id] = meeting
	}

	for _, id := range sortedKeys(doc.Transcripts) {
		transcript, ok, err := parseTranscript(id, doc.Transcripts[id])
		if err != nil {
			errs = append(errs, domain.EntryError{Section: domain.SectionTranscripts, ID: id, Err: err})
			continue
		}
		if ok {
			cat.Transcripts[id] = transcript
		}
	}

	for _, id := range sortedKeys(doc.Documents) {
		meeting, ok := cat.Meetings[id]
		if !ok {
			continue
		}
		cat.Notes[id] = parseNote(meeting, doc.Documents[id], doc.DocumentPanels[id])
	}

	return cat, errs
}

func parseMeeting(id string, v domain.Value, loadedAt time.Time) (domain.Meeting, error) {
	data, err := decodeMapping(v)
	if err != nil {
		return domain.Meeting{}, err
	}

	meeting := domain.Meeting{
		ID:           id,
		Title:        stringOr(data, "title", domain.DefaultMeetingTitle),
		Date:         loadedAt,
		Participants: []string{},
		Type:         stringOr(data, "type", domain.DefaultMeetingType),
	}

	if people, ok := data["people"].([]any); ok {
		for _, person := range people {
			p, ok := person.(map[string]any)
			if !ok {
				return domain.Meeting{}, fmt.Errorf("people: %w", errNotMapping)
			}
			if name, _ := p["name"].(string); name != "" {
				meeting.Participants = append(meeting.Participants, name)
			}
		}
	}

	if raw, ok := data["created_at"]; ok && truthy(raw) {
		s, ok := raw.(string)
		if !ok {
			return domain.Meeting{}, fmt.Errorf("created_at: %w", errNotString)
		}
		date, err := parseDate(s)
		if err != nil {
			return domain.Meeting{}, err
		}
		meeting.Date = date
	}

	return meeting, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", errInvalidDate, s)
}

// parseTranscript accepts either a list of segments or an object carrying
// the whole text. ok is false when the transcript has no text.
func parseTranscript(id string, v domain.Value) (domain.Transcript, bool, error) {
	var decoded any
	if err := v.Decode(&decoded); err != nil {
		return domain.Transcript{}, false, err
	}

	var parts []string
	speakers := make(map[string]struct{})

	switch data := decoded.(type) {
	case []any:
		for _, seg := range data {
			segment, ok := seg.(map[string]any)
			if !ok {
				continue
			}
			raw, ok := segment["text"]
			if !ok {
				continue
			}
			text, ok := raw.(string)
			if !ok {
				return domain.Transcript{}, false, fmt.Errorf("text: %w", errNotString)
			}
			if text = strings.TrimSpace(text); text != "" {
				parts = append(parts, text)
			}
			if source, ok := segment["source"].(string); ok {
				speakers[source] = struct{}{}
			}
		}
	case map[string]any:
		for _, key := range []string{"content", "text", "transcript"} {
			if !truthy(data[key]) {
				continue
			}
			text, ok := data[key].(string)
			if !ok {
				return domain.Transcript{}, false, fmt.Errorf("%s: %w", key, errNotString)
			}
			parts = append(parts, text)
			break
		}
		if list, ok := data["speakers"].([]any); ok {
			for _, s := range list {
				if name, ok := s.(string); ok {
					speakers[name] = struct{}{}
				}
			}
		}
	}

	if len(parts) == 0 {
		return domain.Transcript{}, false, nil
	}

	names := make([]string, 0, len(speakers))
	for name := range speakers {
		names = append(names, name)
	}
	slices.Sort(names)

	return domain.Transcript{
		MeetingID: id,
		Content:   strings.Join(parts, " "),
		Speakers:  names,
	}, true, nil
}

// parseNote collects the note text of a meeting. Inline note fields win over
// panel summaries; overview and summary are always appended.
func parseNote(meeting domain.Meeting, doc, panels domain.Value) domain.Note {
	data, _ := decodeMapping(doc)

	var parts []string
	switch {
	case nonEmptyString(data, "notes_plain") != "":
		parts = append(parts, nonEmptyString(data, "notes_plain"))
	case nonEmptyString(data, "notes_markdown") != "":
		parts = append(parts, nonEmptyString(data, "notes_markdown"))
	default:
		if notes, ok := data["notes"].(map[string]any); ok {
			if text := structuredText(notes); text != "" {
				parts = append(parts, text)
			}
		}
	}

	if len(parts) == 0 {
		parts = append(parts, panelTexts(panels)...)
	}

	if overview, ok := data["overview"]; ok && truthy(overview) {
		parts = append(parts, fmt.Sprintf("Overview: %v", overview))
	}
	if summary, ok := data["summary"]; ok && truthy(summary) {
		parts = append(parts, fmt.Sprintf("Summary: %v", summary))
	}

	return domain.Note{
		ID:           meeting.ID,
		MeetingID:    meeting.ID,
		Title:        meeting.Title,
		Content:      strings.Join(parts, "\n\n"),
		DocumentType: domain.NoteDocumentType,
		CreatedAt:    meeting.Date,
	}
}

// panelTexts extracts the structured content of every panel of a meeting,
// ordered by panel identifier.
func panelTexts(v domain.Value) []string {
	panels, err := decodeMapping(v)
	if err != nil {
		return nil
	}

	var texts []string
	for _, key := range slices.Sorted(maps.Keys(panels)) {
		panel, ok := panels[key].(map[string]any)
		if !ok {
			continue
		}
		content, ok := panel["content"].(map[string]any)
		if !ok {
			continue
		}
		if text := structuredText(content); text != "" {
			texts = append(texts, text)
		}
	}
	return texts
}

// structuredText flattens a tree of content nodes into space separated text.
func structuredText(node map[string]any) string {
	content, ok := node["content"]
	if !ok {
		return ""
	}
	return flatten(content)
}

func flatten(content any) string {
	list, ok := content.([]any)
	if !ok {
		return ""
	}

	parts := make([]string, 0, len(list))
	for _, item := range list {
		node, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if text, hasText := node["text"]; node["type"] == "text" && hasText {
			parts = append(parts, fmt.Sprint(text))
			continue
		}
		if child, ok := node["content"]; ok {
			parts = append(parts, flatten(child))
		}
	}
	return strings.Join(parts, " ")
}

func decodeMapping(v domain.Value) (map[string]any, error) {
	if v.Kind() != domain.KindMapping {
		return nil, errNotMapping
	}
	var data map[string]any
	if err := v.Decode(&data); err != nil {
		return nil, err
	}
	return data, nil
}

func stringOr(data map[string]any, key, fallback string) string {
	if s, ok := data[key].(string); ok {
		return s
	}
	return fallback
}

func nonEmptyString(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

// truthy reports whether a decoded JSON value is neither null, false, zero
// nor empty.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}

func sortedKeys(s domain.Section) []string {
	return slices.Sorted(maps.Keys(s))
}
