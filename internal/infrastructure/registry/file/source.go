package file

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/communityhub/member-qa/internal/core/domain"
)

// Source loads known-member records from a persisted JSON file. A missing
// or corrupt file degrades to an empty registry rather than failing
// startup; resolution then trusts the extractor.
type Source struct {
	path   string
	logger *slog.Logger
}

func NewSource(path string, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{path: path, logger: logger}
}

func (s *Source) Load(_ context.Context) ([]domain.MemberRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("known names file missing, resolution will accept any detected name",
				"path", s.path)
			return nil, nil
		}
		s.logger.Error("known names file unreadable", "path", s.path, "error", err)
		return nil, nil
	}

	var records []domain.MemberRecord
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Error("known names file unparseable", "path", s.path, "error", err)
		return nil, nil
	}
	return records, nil
}
