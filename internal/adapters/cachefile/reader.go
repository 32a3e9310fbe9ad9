// Package cachefile reads cache files and reads and writes the backup file.
package cachefile

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"go.trai.ch/notekeep/internal/core/domain"
	"go.trai.ch/notekeep/internal/core/ports"
	"go.trai.ch/zerr"
)

// nestedCacheKey holds the JSON-encoded payload in the nested cache layout.
const nestedCacheKey = "cache"

// nestedStateKey wraps the sections inside a nested payload.
const nestedStateKey = "state"

var _ ports.SourceReader = (*Reader)(nil)

// Reader implements ports.SourceReader.
type Reader struct{}

// NewReader creates a new Reader.
func NewReader() *Reader {
	return &Reader{}
}

// Read loads and decodes the cache file at path.
func (r *Reader) Read(path string) (domain.CacheDocument, error) {
	//nolint:gosec // Path comes from configuration
	data, err := os.ReadFile(path)
	if err != nil {
		wrapped := zerr.With(zerr.Wrap(err, "failed to read cache file"), "path", path)
		if errors.Is(err, fs.ErrNotExist) {
			return domain.CacheDocument{}, errors.Join(domain.ErrSourceNotFound, wrapped)
		}
		return domain.CacheDocument{}, errors.Join(domain.ErrSourceUnreadable, wrapped)
	}

	doc, err := r.Decode(data)
	if err != nil {
		return domain.CacheDocument{}, errors.Join(domain.ErrSourceUnreadable, zerr.With(err, "path", path))
	}
	return doc, nil
}

// Decode parses cache file contents in either the flat or the nested layout.
// In the nested layout the top-level "cache" field is a string holding JSON;
// its "state" object carries the sections when present.
func (r *Reader) Decode(data []byte) (domain.CacheDocument, error) {
	top, err := decodeObject(data)
	if err != nil {
		return domain.CacheDocument{}, zerr.Wrap(err, "cache file is not a JSON object")
	}

	top, err = unwrapNested(top)
	if err != nil {
		return domain.CacheDocument{}, err
	}

	return domain.DecodeSections(top)
}

func unwrapNested(top map[string]json.RawMessage) (map[string]json.RawMessage, error) {
	raw, ok := top[nestedCacheKey]
	if !ok {
		return top, nil
	}

	var payload string
	if err := json.Unmarshal(raw, &payload); err != nil {
		// Only a string-valued "cache" field marks the nested layout.
		return top, nil //nolint:nilerr // a non-string cache field is an ordinary unknown key
	}

	inner, err := decodeObject([]byte(payload))
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrNestedCacheInvalid.Error())
	}

	state, ok := inner[nestedStateKey]
	if !ok {
		return inner, nil
	}

	inner, err = decodeObject(state)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrNestedCacheInvalid.Error()), "field", nestedStateKey)
	}
	return inner, nil
}

var errNotObject = errors.New("expected a JSON object")

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errNotObject
	}
	return obj, nil
}
