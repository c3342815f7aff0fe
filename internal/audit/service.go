package audit

import (
	"context"
	"log/slog"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

// Service records verification status transitions. Recording is best-effort:
// a failed append is logged and never fails the verification it describes.
type Service struct {
	store Store
	log   *slog.Logger
	clk   clock.Clock
}

func NewService(store Store, log *slog.Logger, clk clock.Clock) *Service {
	return &Service{store: store, log: log, clk: clk}
}

func (s *Service) Record(ctx context.Context, status, idType string) {
	event := Event{
		ID:     uuid.New(),
		Status: status,
		IDType: idType,
		At:     s.clk.Now(),
	}
	if err := s.store.Append(ctx, event); err != nil {
		s.log.WarnContext(ctx, "scan event append failed",
			"status", status, "id_type", idType, "error", err)
	}
}

func (s *Service) Recent(ctx context.Context, limit int) ([]Event, error) {
	return s.store.Recent(ctx, limit)
}
