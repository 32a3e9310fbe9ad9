// Package tools implements the text-returning query and backup tools.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.trai.ch/notekeep/internal/core/domain"
	"go.trai.ch/notekeep/internal/core/ports"
	"go.trai.ch/zerr"
)

// Tool names.
const (
	SearchMeetings  = "search_meetings"
	GetMeeting      = "get_meeting"
	GetTranscript   = "get_transcript"
	GetNotes        = "get_notes"
	AnalyzePatterns = "analyze_patterns"
	BackupCache     = "backup_cache"
	BackupStatus    = "backup_status"
)

const (
	// DefaultSearchLimit is the number of search results returned when no limit is given.
	DefaultSearchLimit = 10
	// MaxSearchLimit is the largest accepted search limit.
	MaxSearchLimit = 50
	// DisplayTimeLayout formats timestamps shown to users.
	DisplayTimeLayout = "2006-01-02 15:04"
)

// Annotations are behavioral hints attached to a tool definition.
type Annotations struct {
	ReadOnlyHint    bool `json:"readOnlyHint"`
	DestructiveHint bool `json:"destructiveHint"`
	IdempotentHint  bool `json:"idempotentHint"`
	OpenWorldHint   bool `json:"openWorldHint"`
}

// Definition describes a tool to clients.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
	Annotations Annotations    `json:"annotations"`
}

// Result is the text produced by a tool call. IsError marks results that
// describe a failure of the tool itself.
type Result struct {
	Text    string
	IsError bool
}

var readOnly = Annotations{ReadOnlyHint: true, IdempotentHint: true}

// Toolbox serves the tools over a catalog and an optional backup service.
type Toolbox struct {
	catalog    ports.CatalogProvider
	backups    ports.BackupService
	location   *time.Location
	sourcePath string
}

// New creates a Toolbox. backups may be nil, in which case the backup tools
// are not offered. Times are displayed in loc, or in the local time zone
// when loc is nil.
func New(catalog ports.CatalogProvider, backups ports.BackupService, loc *time.Location, sourcePath string) *Toolbox {
	if loc == nil {
		loc = time.Local
	}
	return &Toolbox{
		catalog:    catalog,
		backups:    backups,
		location:   loc,
		sourcePath: sourcePath,
	}
}

// Definitions lists the available tools in a stable order.
func (t *Toolbox) Definitions() []Definition {
	defs := []Definition{
		{
			Name:        SearchMeetings,
			Description: "Search meetings by title, content, or participants",
			InputSchema: objectSchema(map[string]any{
				"query": map[string]any{"type": "string", "description": "Search query for meetings"},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of results",
					"minimum":     1,
					"maximum":     MaxSearchLimit,
					"default":     DefaultSearchLimit,
				},
			}, "query"),
			Annotations: readOnly,
		},
		{
			Name:        GetMeeting,
			Description: "Get detailed information about a specific meeting",
			InputSchema: objectSchema(map[string]any{
				"meeting_id": map[string]any{"type": "string", "description": "Meeting ID to retrieve"},
			}, "meeting_id"),
			Annotations: readOnly,
		},
		{
			Name:        GetTranscript,
			Description: "Get the full transcript for a specific meeting",
			InputSchema: objectSchema(map[string]any{
				"meeting_id": map[string]any{"type": "string", "description": "Meeting ID to get transcript for"},
			}, "meeting_id"),
			Annotations: readOnly,
		},
		{
			Name:        GetNotes,
			Description: "Get notes and documents associated with a meeting",
			InputSchema: objectSchema(map[string]any{
				"meeting_id": map[string]any{"type": "string", "description": "Meeting ID to get notes for"},
			}, "meeting_id"),
			Annotations: readOnly,
		},
		{
			Name:        AnalyzePatterns,
			Description: "Analyze patterns across multiple meetings",
			InputSchema: objectSchema(map[string]any{
				"pattern_type": map[string]any{
					"type":        "string",
					"description": "Type of pattern to analyze",
					"enum":        []string{PatternTopics, PatternParticipants, PatternFrequency},
				},
				"start_date": map[string]any{"type": "string", "description": "Start date (ISO format, e.g. 2024-01-01)"},
				"end_date":   map[string]any{"type": "string", "description": "End date (ISO format, e.g. 2024-12-31)"},
			}, "pattern_type"),
			Annotations: readOnly,
		},
	}

	if t.backups == nil {
		return defs
	}

	return append(defs,
		Definition{
			Name:        BackupCache,
			Description: "Create a non-destructive backup of the meeting cache, preserving meetings pruned from the live cache",
			InputSchema: objectSchema(map[string]any{}),
			Annotations: Annotations{IdempotentHint: true},
		},
		Definition{
			Name:        BackupStatus,
			Description: "Show the state of the backup file and its snapshots",
			InputSchema: objectSchema(map[string]any{}),
			Annotations: readOnly,
		},
	)
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

type searchArgs struct {
	Query string `json:"query"`
	Limit *int   `json:"limit"`
}

type meetingArgs struct {
	MeetingID string `json:"meeting_id"`
}

type analyzeArgs struct {
	PatternType string `json:"pattern_type"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

// Call runs the named tool with JSON encoded arguments. Unknown tools and
// malformed arguments are returned as errors. Failures of the tool itself
// are reported in the result text with IsError set.
func (t *Toolbox) Call(ctx context.Context, name string, args json.RawMessage) (Result, error) {
	var (
		text string
		err  error
	)

	switch name {
	case SearchMeetings:
		var a searchArgs
		if err := decodeArgs(name, args, &a); err != nil {
			return Result{}, err
		}
		limit := DefaultSearchLimit
		if a.Limit != nil {
			limit = *a.Limit
		}
		text, err = t.Search(ctx, a.Query, limit)
	case GetMeeting, GetTranscript, GetNotes:
		var a meetingArgs
		if err := decodeArgs(name, args, &a); err != nil {
			return Result{}, err
		}
		if a.MeetingID == "" {
			return Result{}, invalidArguments(name, "meeting_id is required")
		}
		switch name {
		case GetMeeting:
			text, err = t.Meeting(ctx, a.MeetingID)
		case GetTranscript:
			text, err = t.Transcript(ctx, a.MeetingID)
		default:
			text, err = t.Notes(ctx, a.MeetingID)
		}
	case AnalyzePatterns:
		var a analyzeArgs
		if err := decodeArgs(name, args, &a); err != nil {
			return Result{}, err
		}
		text, err = t.Analyze(ctx, a.PatternType, a.StartDate, a.EndDate)
	case BackupCache:
		if t.backups == nil {
			return Result{}, unknownTool(name)
		}
		text = t.Backup(ctx)
	case BackupStatus:
		if t.backups == nil {
			return Result{}, unknownTool(name)
		}
		text, err = t.Status(ctx)
	default:
		return Result{}, unknownTool(name)
	}

	if err != nil {
		if errors.Is(err, domain.ErrInvalidToolArguments) {
			return Result{}, err
		}
		return Result{Text: err.Error(), IsError: true}, nil
	}
	return Result{Text: text}, nil
}

func decodeArgs(tool string, args json.RawMessage, dst any) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, dst); err != nil {
		return errors.Join(domain.ErrInvalidToolArguments, zerr.With(zerr.Wrap(err, "decode failed"), "tool", tool))
	}
	return nil
}

func unknownTool(name string) error {
	return errors.Join(domain.ErrUnknownTool, zerr.With(zerr.New(fmt.Sprintf("no tool named %q", name)), "tool", name))
}

func invalidArguments(tool, reason string) error {
	return errors.Join(domain.ErrInvalidToolArguments, zerr.With(zerr.New(reason), "tool", tool))
}

func (t *Toolbox) formatTime(ts time.Time) string {
	return ts.In(t.location).Format(DisplayTimeLayout)
}
