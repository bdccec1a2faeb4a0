package domain

import (
	"context"
	"time"
)

// Conference is owned by exactly one profile (OrganizerUserID).
// SeatsAvailable never exceeds MaxAttendees. Registration moves it by one;
// a capacity change keeps the number of seats already taken.
// swagger:model Conference
type Conference struct {
	ID                   string     `json:"id"`
	OrganizerUserID      string     `json:"organizer_user_id"`
	OrganizerDisplayName string     `json:"organizer_display_name"`
	Name                 string     `json:"name"`
	Description          string     `json:"description"`
	Topics               []string   `json:"topics"`
	City                 string     `json:"city"`
	StartDate            *time.Time `json:"start_date"`
	EndDate              *time.Time `json:"end_date"`
	Month                int        `json:"month"`
	MaxAttendees         int        `json:"max_attendees"`
	SeatsAvailable       int        `json:"seats_available"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// ConferenceFields carries client-supplied conference attributes.
// Nil pointers and empty slices mean the field was not supplied.
type ConferenceFields struct {
	Name         *string
	Description  *string
	Topics       []string
	City         *string
	StartDate    *string
	EndDate      *string
	MaxAttendees *int
}

// ConferenceRepository defines storage operations for conferences.
type ConferenceRepository interface {
	Create(ctx context.Context, c *Conference) error
	// GetByID returns the conference with OrganizerDisplayName filled in.
	GetByID(ctx context.Context, id string) (*Conference, error)
	// GetForUpdate reads the conference and locks its row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id string) (*Conference, error)
	Update(ctx context.Context, c *Conference) error
	ListByOrganizer(ctx context.Context, userID string) ([]*Conference, error)
	ListByIDs(ctx context.Context, ids []string) ([]*Conference, error)
	Query(ctx context.Context, q ConferenceQuery) ([]*Conference, error)
	// ListNamesWithSeatsBetween returns names of conferences with min < seats_available <= max.
	ListNamesWithSeatsBetween(ctx context.Context, min, max int) ([]string, error)
}

// ConferenceService defines conference creation, update and lookup.
type ConferenceService interface {
	CreateConference(ctx context.Context, owner Identity, fields ConferenceFields) (*Conference, error)
	UpdateConference(ctx context.Context, requester Identity, conferenceID string, fields ConferenceFields) (*Conference, error)
	GetConference(ctx context.Context, conferenceID string) (*Conference, error)
	ListConferencesCreated(ctx context.Context, owner Identity) ([]*Conference, error)
	QueryConferences(ctx context.Context, filters []FilterSpec) ([]*Conference, error)
}
