package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"conferencecentral/internal/domain"
	"conferencecentral/internal/metrics"
)

const (
	announcementPrefix    = "Last chance to attend! The following conferences are nearly sold out: "
	featuredSpeakerPrefix = "Featured speaker: "
	// nearlySoldOutSeats is the largest seat count still announced.
	nearlySoldOutSeats = 5
)

type announcementService struct {
	conferenceRepo domain.ConferenceRepository
	cache          domain.Cache
	logger         *slog.Logger
}

// NewAnnouncementService creates an AnnouncementService backed by cache.
func NewAnnouncementService(conferenceRepo domain.ConferenceRepository, cache domain.Cache, logger *slog.Logger) domain.AnnouncementService {
	return &announcementService{conferenceRepo: conferenceRepo, cache: cache, logger: logger}
}

func (s *announcementService) RecomputeAnnouncement(ctx context.Context) (string, error) {
	names, err := s.conferenceRepo.ListNamesWithSeatsBetween(ctx, 0, nearlySoldOutSeats)
	if err != nil {
		return "", fmt.Errorf("list nearly sold out conferences: %w", err)
	}
	metrics.NearlySoldOutConferences.Set(float64(len(names)))

	if len(names) == 0 {
		if err := s.cache.Delete(ctx, domain.CacheKeyAnnouncement); err != nil {
			return "", fmt.Errorf("clear announcement: %w", err)
		}
		s.logger.DebugContext(ctx, "announcement cleared")
		return "", nil
	}
	announcement := announcementPrefix + strings.Join(names, ", ")
	if err := s.cache.Set(ctx, domain.CacheKeyAnnouncement, announcement); err != nil {
		return "", fmt.Errorf("store announcement: %w", err)
	}
	s.logger.InfoContext(ctx, "announcement updated", "conferences", len(names))
	return announcement, nil
}

func (s *announcementService) SetFeaturedSpeaker(ctx context.Context, speaker string) error {
	speaker = strings.TrimSpace(speaker)
	if speaker == "" {
		return fmt.Errorf("%w: speaker required", domain.ErrInvalidInput)
	}
	if err := s.cache.Set(ctx, domain.CacheKeyFeaturedSpeaker, featuredSpeakerPrefix+speaker); err != nil {
		return fmt.Errorf("store featured speaker: %w", err)
	}
	return nil
}

func (s *announcementService) GetAnnouncement(ctx context.Context) (string, error) {
	v, err := s.cache.Get(ctx, domain.CacheKeyAnnouncement)
	if err != nil {
		return "", fmt.Errorf("get announcement: %w", err)
	}
	return v, nil
}

func (s *announcementService) GetFeaturedSpeaker(ctx context.Context) (string, error) {
	v, err := s.cache.Get(ctx, domain.CacheKeyFeaturedSpeaker)
	if err != nil {
		return "", fmt.Errorf("get featured speaker: %w", err)
	}
	return v, nil
}
