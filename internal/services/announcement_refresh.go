package services

import (
	"context"
	"log/slog"
	"time"

	"conferencecentral/internal/domain"
)

// RunAnnouncementRefresh recomputes the announcement immediately and then on
// every tick until ctx is cancelled. Failures are logged; the loop keeps going.
func RunAnnouncementRefresh(ctx context.Context, svc domain.AnnouncementService, interval time.Duration, logger *slog.Logger) error {
	refresh := func() {
		if _, err := svc.RecomputeAnnouncement(ctx); err != nil && ctx.Err() == nil {
			logger.ErrorContext(ctx, "announcement refresh failed", "err", err)
		}
	}

	refresh()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			refresh()
		}
	}
}
