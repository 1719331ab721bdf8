package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"go.uber.org/zap"
)

var invalidFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SnapshotStore keeps the raw detail-page HTML per product so extraction
// patterns can be reworked offline without re-crawling.
type SnapshotStore struct {
	root   string
	logger *zap.Logger
}

// NewSnapshotStore creates the store rooted at dir.
func NewSnapshotStore(root string, logger *zap.Logger) (*SnapshotStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create snapshot dir %s: %w", root, err)
	}
	return &SnapshotStore{root: root, logger: logger}, nil
}

// Save writes the page body under a filesystem-safe name derived from the
// product handle. Snapshot failures are logged, never fatal.
func (s *SnapshotStore) Save(handle string, body []byte) {
	if len(body) == 0 {
		return
	}
	target := filepath.Join(s.root, safeFilename(handle)+".html")
	if err := os.WriteFile(target, body, 0o600); err != nil {
		s.logger.Warn("failed to write snapshot",
			zap.String("handle", handle),
			zap.Error(err),
		)
	}
}

func safeFilename(handle string) string {
	name := invalidFilenameChars.ReplaceAllString(handle, "_")
	if name == "" {
		name = "product"
	}
	return name
}
