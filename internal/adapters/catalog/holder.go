package catalog

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/notekeep/internal/core/domain"
	"go.trai.ch/notekeep/internal/core/ports"
	"go.trai.ch/zerr"
)

// Holder keeps the catalog of one cache file and reloads it when the file
// changes.
//
// Staleness is decided by modification time and size. When either changed
// the file is read and its content fingerprint compared with the last load,
// so a touch without a content change does not trigger a reparse.
type Holder struct {
	path   string
	reader ports.SourceReader
	parser *Parser
	logger ports.Logger
	now    func() time.Time

	mu          sync.Mutex
	catalog     *domain.Catalog
	modTime     time.Time
	size        int64
	fingerprint uint64
}

// NewHolder creates a Holder for the cache file at path.
func NewHolder(path string, reader ports.SourceReader, parser *Parser, logger ports.Logger) *Holder {
	return &Holder{
		path:   path,
		reader: reader,
		parser: parser,
		logger: logger,
		now:    time.Now,
	}
}

// Path returns the file the holder reads.
func (h *Holder) Path() string {
	return h.path
}

// RefreshIfStale returns the current catalog, reloading it when the file
// changed since the last call. A missing file yields an empty catalog. A
// file that cannot be decoded keeps the previous catalog.
func (h *Holder) RefreshIfStale(_ context.Context) (*domain.Catalog, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	info, err := os.Stat(h.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			h.reset()
			h.catalog = domain.NewCatalog(h.now())
			return h.catalog, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSourceUnreadable.Error()), "path", h.path)
	}

	if h.catalog != nil && info.ModTime().Equal(h.modTime) && info.Size() == h.size {
		return h.catalog, nil
	}

	//nolint:gosec // Path comes from configuration
	data, err := os.ReadFile(h.path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSourceUnreadable.Error()), "path", h.path)
	}

	sum := xxhash.Sum64(data)
	if h.catalog != nil && sum == h.fingerprint {
		h.modTime, h.size = info.ModTime(), info.Size()
		return h.catalog, nil
	}

	doc, err := h.reader.Decode(data)
	if err != nil {
		h.logger.Warn("cache file could not be decoded, keeping the previous catalog: " + h.path)
		h.logger.Error(zerr.With(err, "path", h.path))
		if h.catalog == nil {
			h.catalog = domain.NewCatalog(h.now())
		}
		return h.catalog, nil
	}

	h.catalog = h.parser.Parse(doc, h.now())
	h.modTime, h.size, h.fingerprint = info.ModTime(), info.Size(), sum
	return h.catalog, nil
}

// Invalidate forces the next call to RefreshIfStale to reload the file.
func (h *Holder) Invalidate() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reset()
}

func (h *Holder) reset() {
	h.catalog = nil
	h.modTime = time.Time{}
	h.size = 0
	h.fingerprint = 0
}
