package audit

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Service records sync actions. Logging is best-effort: a failed write is
// reported through the logger and never fails the caller's operation.
type Service struct {
	repo EntryRepository
}

func NewService(repo EntryRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Log(ctx context.Context, action, recordID string) {
	s.LogDetail(ctx, action, recordID, "")
}

func (s *Service) LogDetail(ctx context.Context, action, recordID, detail string) {
	e := &Entry{Action: action, RecordID: recordID, Detail: detail}
	if err := s.repo.Create(ctx, e); err != nil {
		log.Error().Err(err).
			Str("action", action).
			Str("record_id", recordID).
			Msg("audit write failed")
	}
}

func (s *Service) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListRecent(ctx, limit)
}
