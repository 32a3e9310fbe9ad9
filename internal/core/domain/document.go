package domain

import (
	"encoding/json"
	"maps"

	"go.trai.ch/zerr"
)

// Section names of a cache document.
const (
	SectionDocuments      = "documents"
	SectionTranscripts    = "transcripts"
	SectionDocumentPanels = "documentPanels"
)

// Sections lists the sections that take part in backups, in output order.
var Sections = []string{SectionDocuments, SectionTranscripts, SectionDocumentPanels}

// Section maps a stable entry identifier to its opaque value.
type Section map[string]Value

// Clone returns a shallow copy of the section. A nil section clones to an empty one.
func (s Section) Clone() Section {
	out := make(Section, len(s))
	maps.Copy(out, s)
	return out
}

// CacheDocument is the part of a cache file that is backed up.
// Top-level keys other than the three sections are not represented.
type CacheDocument struct {
	Documents      Section
	Transcripts    Section
	DocumentPanels Section
}

// Section returns the named section, or nil for unknown names.
func (d *CacheDocument) Section(name string) Section {
	switch name {
	case SectionDocuments:
		return d.Documents
	case SectionTranscripts:
		return d.Transcripts
	case SectionDocumentPanels:
		return d.DocumentPanels
	default:
		return nil
	}
}

// SetSection replaces the named section. Unknown names are ignored.
func (d *CacheDocument) SetSection(name string, s Section) {
	switch name {
	case SectionDocuments:
		d.Documents = s
	case SectionTranscripts:
		d.Transcripts = s
	case SectionDocumentPanels:
		d.DocumentPanels = s
	}
}

// MeetingCount returns the number of entries in the documents section.
func (d *CacheDocument) MeetingCount() int {
	return len(d.Documents)
}

// DecodeSections extracts the known sections from a decoded top-level object.
// Missing sections and sections holding an empty value (null, [], {} or "")
// become empty sections. Any other section that is not a JSON object is
// rejected.
func DecodeSections(top map[string]json.RawMessage) (CacheDocument, error) {
	var doc CacheDocument
	for _, name := range Sections {
		section := Section{}
		if raw, ok := top[name]; ok {
			v, err := ParseValue(raw)
			if err != nil {
				return CacheDocument{}, zerr.With(zerr.Wrap(err, ErrSectionInvalid.Error()), "section", name)
			}
			if !v.IsEmpty() {
				if err := json.Unmarshal(raw, &section); err != nil {
					return CacheDocument{}, zerr.With(zerr.Wrap(err, ErrSectionInvalid.Error()), "section", name)
				}
			}
		}
		doc.SetSection(name, section)
	}
	return doc, nil
}
