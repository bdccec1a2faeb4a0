package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"conferencecentral/internal/domain"
)

type profileService struct {
	profileRepo    domain.ProfileRepository
	tx             domain.Transactor
	contextTimeout time.Duration
	now            func() time.Time
}

// NewProfileService creates a ProfileService.
func NewProfileService(profileRepo domain.ProfileRepository, tx domain.Transactor, timeout time.Duration) domain.ProfileService {
	return &profileService{profileRepo: profileRepo, tx: tx, contextTimeout: timeout, now: time.Now}
}

func (s *profileService) GetProfile(ctx context.Context, identity domain.Identity) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return getOrCreateProfile(ctx, s.profileRepo, identity, s.now())
}

func (s *profileService) SaveProfile(ctx context.Context, identity domain.Identity, update domain.ProfileUpdate) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if identity.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	var saved *domain.Profile
	err := s.tx.RunInTx(ctx, func(ctx context.Context, st domain.TxStores) error {
		prof, err := lockProfile(ctx, st.Profiles, identity, s.now())
		if err != nil {
			return err
		}
		changed := false
		if update.DisplayName != nil {
			if name := strings.TrimSpace(*update.DisplayName); name != "" {
				prof.DisplayName = name
				changed = true
			}
		}
		if update.TeeShirtSize != nil && *update.TeeShirtSize != "" {
			prof.TeeShirtSize = *update.TeeShirtSize
			changed = true
		}
		if changed {
			prof.UpdatedAt = s.now()
			if err := st.Profiles.Update(ctx, prof); err != nil {
				return fmt.Errorf("update profile: %w", err)
			}
		}
		saved = prof
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// getOrCreateProfile returns the caller's profile, creating it on first access.
func getOrCreateProfile(ctx context.Context, repo domain.ProfileRepository, identity domain.Identity, now time.Time) (*domain.Profile, error) {
	if identity.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := repo.Ensure(ctx, domain.NewProfile(identity, now)); err != nil {
		return nil, fmt.Errorf("ensure profile: %w", err)
	}
	prof, err := repo.GetByID(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return prof, nil
}

// lockProfile is getOrCreateProfile for use inside a transaction: the
// returned profile's row stays locked until commit.
func lockProfile(ctx context.Context, repo domain.ProfileRepository, identity domain.Identity, now time.Time) (*domain.Profile, error) {
	if identity.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := repo.Ensure(ctx, domain.NewProfile(identity, now)); err != nil {
		return nil, fmt.Errorf("ensure profile: %w", err)
	}
	prof, err := repo.GetForUpdate(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("lock profile: %w", err)
	}
	return prof, nil
}
