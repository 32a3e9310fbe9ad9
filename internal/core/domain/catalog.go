package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

const (
	// DefaultMeetingTitle is used for documents without a title.
	DefaultMeetingTitle = "Untitled Meeting"
	// DefaultMeetingType is used for documents without a type.
	DefaultMeetingType = "meeting"
	// NoteDocumentType is the document type of notes derived from meetings.
	NoteDocumentType = "meeting_notes"
)

// Meeting is a parsed entry of the documents section.
type Meeting struct {
	ID           string    `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	Date         time.Time `json:"date" yaml:"date"`
	Participants []string  `json:"participants" yaml:"participants"`
	Type         string    `json:"type" yaml:"type"`
}

// Note is the textual content attached to a meeting.
type Note struct {
	ID           string    `json:"id" yaml:"id"`
	MeetingID    string    `json:"meeting_id" yaml:"meeting_id"`
	Title        string    `json:"title" yaml:"title"`
	Content      string    `json:"content" yaml:"content"`
	DocumentType string    `json:"document_type" yaml:"document_type"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
}

// Transcript is the flattened transcript of a meeting.
type Transcript struct {
	MeetingID string   `json:"meeting_id" yaml:"meeting_id"`
	Content   string   `json:"content" yaml:"content"`
	Speakers  []string `json:"speakers" yaml:"speakers"`
}

// Catalog is the queryable view of a cache document.
type Catalog struct {
	Meetings    map[string]Meeting
	Notes       map[string]Note
	Transcripts map[string]Transcript
	LoadedAt    time.Time
}

// NewCatalog returns an empty catalog.
func NewCatalog(loadedAt time.Time) *Catalog {
	return &Catalog{
		Meetings:    make(map[string]Meeting),
		Notes:       make(map[string]Note),
		Transcripts: make(map[string]Transcript),
		LoadedAt:    loadedAt,
	}
}

// MeetingIDs returns all meeting identifiers in ascending order.
func (c *Catalog) MeetingIDs() []string {
	ids := make([]string, 0, len(c.Meetings))
	for id := range c.Meetings {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// NotesFor returns the notes that belong to the given meeting, ordered by ID.
func (c *Catalog) NotesFor(meetingID string) []Note {
	var notes []Note
	for _, n := range c.Notes {
		if n.MeetingID == meetingID {
			notes = append(notes, n)
		}
	}
	slices.SortFunc(notes, func(a, b Note) int {
		return strings.Compare(a.ID, b.ID)
	})
	return notes
}

// EntryError records an entry that could not be parsed.
type EntryError struct {
	Section string
	ID      string
	Err     error
}

// Error implements the error interface.
func (e EntryError) Error() string {
	return fmt.Sprintf("%s entry %q: %v", e.Section, e.ID, e.Err)
}

// Unwrap returns the underlying error.
func (e EntryError) Unwrap() error {
	return e.Err
}
