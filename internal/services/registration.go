package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"conferencecentral/internal/domain"
	"conferencecentral/internal/metrics"
)

type registrationService struct {
	profileRepo    domain.ProfileRepository
	conferenceRepo domain.ConferenceRepository
	sessionRepo    domain.SessionRepository
	tx             domain.Transactor
	contextTimeout time.Duration
	now            func() time.Time
}

// NewRegistrationService creates a RegistrationService. Register and
// Unregister lock the caller's profile row before the conference row.
func NewRegistrationService(
	profileRepo domain.ProfileRepository,
	conferenceRepo domain.ConferenceRepository,
	sessionRepo domain.SessionRepository,
	tx domain.Transactor,
	timeout time.Duration,
) domain.RegistrationService {
	return &registrationService{
		profileRepo:    profileRepo,
		conferenceRepo: conferenceRepo,
		sessionRepo:    sessionRepo,
		tx:             tx,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *registrationService) Register(ctx context.Context, identity domain.Identity, conferenceID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	err := s.tx.RunInTx(ctx, func(ctx context.Context, st domain.TxStores) error {
		prof, conf, err := s.lockProfileAndConference(ctx, st, identity, conferenceID)
		if err != nil {
			return err
		}
		if prof.IsAttending(conf.ID) {
			return domain.ErrAlreadyRegistered
		}
		if conf.SeatsAvailable <= 0 {
			return domain.ErrNoSeatsAvailable
		}

		now := s.now()
		prof.ConferenceIDsToAttend = append(prof.ConferenceIDsToAttend, conf.ID)
		prof.UpdatedAt = now
		conf.SeatsAvailable--
		conf.UpdatedAt = now
		if err := st.Profiles.Update(ctx, prof); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		if err := st.Conferences.Update(ctx, conf); err != nil {
			return fmt.Errorf("update conference: %w", err)
		}
		return nil
	})
	metrics.Registrations.WithLabelValues("register", registrationResult(err)).Inc()
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *registrationService) Unregister(ctx context.Context, identity domain.Identity, conferenceID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	removed := false
	err := s.tx.RunInTx(ctx, func(ctx context.Context, st domain.TxStores) error {
		prof, conf, err := s.lockProfileAndConference(ctx, st, identity, conferenceID)
		if err != nil {
			return err
		}
		if !prof.RemoveConference(conf.ID) {
			return nil
		}

		now := s.now()
		prof.UpdatedAt = now
		if conf.SeatsAvailable < conf.MaxAttendees {
			conf.SeatsAvailable++
		}
		conf.UpdatedAt = now
		if err := st.Profiles.Update(ctx, prof); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		if err := st.Conferences.Update(ctx, conf); err != nil {
			return fmt.Errorf("update conference: %w", err)
		}
		removed = true
		return nil
	})
	result := registrationResult(err)
	if err == nil && !removed {
		result = "not_registered"
	}
	metrics.Registrations.WithLabelValues("unregister", result).Inc()
	if err != nil {
		return false, err
	}
	return removed, nil
}

// lockProfileAndConference locks the caller's profile and then the
// conference. Every registration transaction takes the locks in this order.
func (s *registrationService) lockProfileAndConference(ctx context.Context, st domain.TxStores, identity domain.Identity, conferenceID string) (*domain.Profile, *domain.Conference, error) {
	if conferenceID == "" {
		return nil, nil, fmt.Errorf("%w: conference id required", domain.ErrInvalidInput)
	}
	prof, err := lockProfile(ctx, st.Profiles, identity, s.now())
	if err != nil {
		return nil, nil, err
	}
	conf, err := st.Conferences.GetForUpdate(ctx, conferenceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: no conference found with id %s", domain.ErrNotFound, conferenceID)
		}
		return nil, nil, fmt.Errorf("lock conference: %w", err)
	}
	return prof, conf, nil
}

func registrationResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, domain.ErrAlreadyRegistered):
		return "already_registered"
	case errors.Is(err, domain.ErrNoSeatsAvailable):
		return "no_seats"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return metrics.ResultError
	}
}

// ListConferencesAttending returns the caller's conferences in attending-list
// order. Identifiers that no longer resolve are skipped.
func (s *registrationService) ListConferencesAttending(ctx context.Context, identity domain.Identity) ([]*domain.Conference, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	prof, err := getOrCreateProfile(ctx, s.profileRepo, identity, s.now())
	if err != nil {
		return nil, err
	}
	if len(prof.ConferenceIDsToAttend) == 0 {
		return []*domain.Conference{}, nil
	}
	confs, err := s.conferenceRepo.ListByIDs(ctx, prof.ConferenceIDsToAttend)
	if err != nil {
		return nil, fmt.Errorf("list attending conferences: %w", err)
	}
	return inListOrder(prof.ConferenceIDsToAttend, confs, func(c *domain.Conference) string { return c.ID }), nil
}

func (s *registrationService) AddToWishlist(ctx context.Context, identity domain.Identity, sessionID string) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.updateWishlist(ctx, identity, func(p *domain.Profile) error {
		p.SessionIDsWishlist = append(p.SessionIDsWishlist, sessionID)
		return nil
	})
}

func (s *registrationService) RemoveFromWishlist(ctx context.Context, identity domain.Identity, sessionID string) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.updateWishlist(ctx, identity, func(p *domain.Profile) error {
		if !p.RemoveFromWishlist(sessionID) {
			return domain.ErrNotInWishlist
		}
		return nil
	})
}

// ListWishlist returns the wishlisted sessions in wishlist order; a session
// listed twice appears twice.
func (s *registrationService) ListWishlist(ctx context.Context, identity domain.Identity) ([]*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	prof, err := getOrCreateProfile(ctx, s.profileRepo, identity, s.now())
	if err != nil {
		return nil, err
	}
	if len(prof.SessionIDsWishlist) == 0 {
		return []*domain.Session{}, nil
	}
	sessions, err := s.sessionRepo.ListByIDs(ctx, prof.SessionIDsWishlist)
	if err != nil {
		return nil, fmt.Errorf("list wishlist sessions: %w", err)
	}
	return inListOrder(prof.SessionIDsWishlist, sessions, func(s *domain.Session) string { return s.ID }), nil
}

func (s *registrationService) requireSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("%w: session id required", domain.ErrInvalidInput)
	}
	if _, err := s.sessionRepo.GetByID(ctx, sessionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: no session found with id %s", domain.ErrNotFound, sessionID)
		}
		return fmt.Errorf("get session: %w", err)
	}
	return nil
}

func (s *registrationService) updateWishlist(ctx context.Context, identity domain.Identity, mutate func(*domain.Profile) error) (*domain.Profile, error) {
	var saved *domain.Profile
	err := s.tx.RunInTx(ctx, func(ctx context.Context, st domain.TxStores) error {
		prof, err := lockProfile(ctx, st.Profiles, identity, s.now())
		if err != nil {
			return err
		}
		if err := mutate(prof); err != nil {
			return err
		}
		prof.UpdatedAt = s.now()
		if err := st.Profiles.Update(ctx, prof); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		saved = prof
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// inListOrder arranges items to follow ids, repeating an item for a repeated
// id and skipping ids with no item.
func inListOrder[T any](ids []string, items []*T, key func(*T) string) []*T {
	byID := make(map[string]*T, len(items))
	for _, it := range items {
		byID[key(it)] = it
	}
	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			out = append(out, it)
		}
	}
	return out
}
