package domain

import (
	"context"
	"math"
	"time"
)

// Session represents a talk within a conference. Sessions are not modified after creation.
// swagger:model Session
type Session struct {
	ID            string    `json:"id"`
	ConferenceID  string    `json:"conference_id"`
	Name          string    `json:"name"`
	Highlights    string    `json:"highlights"`
	Speaker       string    `json:"speaker"`
	DurationMins  int       `json:"duration_minutes"`
	TypeOfSession []string  `json:"type_of_session"`
	Date          time.Time `json:"date"`
	// StartTime is the local start time formatted as HH:MM.
	StartTime string    `json:"start_time"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionFields carries client-supplied session attributes; nil/empty means not supplied.
type SessionFields struct {
	Name          *string
	Highlights    *string
	Speaker       *string
	DurationMins  *int
	TypeOfSession []string
	Date          *string
	StartTime     *string
}

// PaginationParams holds offset-based pagination parameters for list queries.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset returns the row offset for the current page (0-based). It saturates
// at math.MaxInt instead of overflowing.
func (p PaginationParams) Offset() int {
	if p.Page < 1 || p.PageSize < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PageSize
}

// SessionRepository defines storage operations for sessions.
type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	ListByConference(ctx context.Context, conferenceID string) ([]*Session, error)
	ListByConferenceAndType(ctx context.Context, conferenceID, sessionType string) ([]*Session, error)
	ListBySpeaker(ctx context.Context, speaker string) ([]*Session, error)
	ListAll(ctx context.Context, p PaginationParams) (sessions []*Session, total int, err error)
	ListBefore(ctx context.Context, date time.Time) ([]*Session, error)
	ListByIDs(ctx context.Context, ids []string) ([]*Session, error)
	// CountSpeakerSessions counts the conference's sessions given by speaker.
	CountSpeakerSessions(ctx context.Context, conferenceID, speaker string) (int, error)
}

// SessionService defines session creation and the session listings.
type SessionService interface {
	CreateSession(ctx context.Context, requester Identity, conferenceID string, fields SessionFields) (*Session, error)
	ListSessions(ctx context.Context, conferenceID string) ([]*Session, error)
	ListSessionsByType(ctx context.Context, conferenceID, sessionType string) ([]*Session, error)
	ListSessionsBySpeaker(ctx context.Context, speaker string) ([]*Session, error)
	ListAllSessions(ctx context.Context, p PaginationParams) ([]*Session, int, error)
	ListPastSessions(ctx context.Context) ([]*Session, error)
}
