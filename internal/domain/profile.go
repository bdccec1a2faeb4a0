package domain

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
)

// TeeShirtSize is the shirt size preference stored on a profile.
type TeeShirtSize string

const (
	TeeShirtNotSpecified TeeShirtSize = "NOT_SPECIFIED"
	TeeShirtXSM          TeeShirtSize = "XS_M"
	TeeShirtXSW          TeeShirtSize = "XS_W"
	TeeShirtSM           TeeShirtSize = "S_M"
	TeeShirtSW           TeeShirtSize = "S_W"
	TeeShirtMM           TeeShirtSize = "M_M"
	TeeShirtMW           TeeShirtSize = "M_W"
	TeeShirtLM           TeeShirtSize = "L_M"
	TeeShirtLW           TeeShirtSize = "L_W"
	TeeShirtXLM          TeeShirtSize = "XL_M"
	TeeShirtXLW          TeeShirtSize = "XL_W"
	TeeShirtXXLM         TeeShirtSize = "XXL_M"
	TeeShirtXXLW         TeeShirtSize = "XXL_W"
	TeeShirtXXXLM        TeeShirtSize = "XXXL_M"
	TeeShirtXXXLW        TeeShirtSize = "XXXL_W"
)

// ParseTeeShirtSize returns the size for s (case-insensitive) or ErrInvalidInput.
func ParseTeeShirtSize(s string) (TeeShirtSize, error) {
	size := TeeShirtSize(strings.ToUpper(strings.TrimSpace(s)))
	switch size {
	case TeeShirtNotSpecified,
		TeeShirtXSM, TeeShirtXSW,
		TeeShirtSM, TeeShirtSW,
		TeeShirtMM, TeeShirtMW,
		TeeShirtLM, TeeShirtLW,
		TeeShirtXLM, TeeShirtXLW,
		TeeShirtXXLM, TeeShirtXXLW,
		TeeShirtXXXLM, TeeShirtXXXLW:
		return size, nil
	}
	return "", fmt.Errorf("%w: unknown tee shirt size %q", ErrInvalidInput, s)
}

// Identity is the authenticated caller as resolved from the bearer token.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// Profile is the per-user record keyed by the identity's user ID.
// swagger:model Profile
type Profile struct {
	UserID                string       `json:"user_id"`
	DisplayName           string       `json:"display_name"`
	MainEmail             string       `json:"main_email"`
	TeeShirtSize          TeeShirtSize `json:"tee_shirt_size"`
	ConferenceIDsToAttend []string     `json:"conference_ids_to_attend"`
	SessionIDsWishlist    []string     `json:"session_ids_wishlist"`
	CreatedAt             time.Time    `json:"created_at"`
	UpdatedAt             time.Time    `json:"updated_at"`
}

// NewProfile returns the profile created on first access for identity.
func NewProfile(identity Identity, now time.Time) *Profile {
	return &Profile{
		UserID:                identity.UserID,
		DisplayName:           identity.Name,
		MainEmail:             identity.Email,
		TeeShirtSize:          TeeShirtNotSpecified,
		ConferenceIDsToAttend: []string{},
		SessionIDsWishlist:    []string{},
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

// IsAttending reports whether conferenceID is in the attending list.
func (p *Profile) IsAttending(conferenceID string) bool {
	return slices.Contains(p.ConferenceIDsToAttend, conferenceID)
}

// RemoveConference drops conferenceID from the attending list.
// It returns false when the profile was not attending.
func (p *Profile) RemoveConference(conferenceID string) bool {
	i := slices.Index(p.ConferenceIDsToAttend, conferenceID)
	if i < 0 {
		return false
	}
	p.ConferenceIDsToAttend = slices.Delete(p.ConferenceIDsToAttend, i, i+1)
	return true
}

// RemoveFromWishlist drops the first occurrence of sessionID.
func (p *Profile) RemoveFromWishlist(sessionID string) bool {
	i := slices.Index(p.SessionIDsWishlist, sessionID)
	if i < 0 {
		return false
	}
	p.SessionIDsWishlist = slices.Delete(p.SessionIDsWishlist, i, i+1)
	return true
}

// ProfileRepository defines storage operations for profiles.
type ProfileRepository interface {
	// Ensure inserts p unless a profile with the same user ID already exists.
	Ensure(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, userID string) (*Profile, error)
	// GetForUpdate reads the profile and locks its row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, userID string) (*Profile, error)
	Update(ctx context.Context, p *Profile) error
	// DisplayNames returns user ID -> display name for the given IDs that exist.
	DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error)
}

// ProfileUpdate carries the user-modifiable profile fields; nil means unchanged.
type ProfileUpdate struct {
	DisplayName  *string
	TeeShirtSize *TeeShirtSize
}

// ProfileService defines profile read and update operations.
type ProfileService interface {
	GetProfile(ctx context.Context, identity Identity) (*Profile, error)
	SaveProfile(ctx context.Context, identity Identity, update ProfileUpdate) (*Profile, error)
}
