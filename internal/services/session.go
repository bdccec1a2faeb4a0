package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"conferencecentral/internal/domain"
)

const (
	defaultSessionName      = "Default"
	defaultSessionStartTime = "00:00"
	startTimeLayout         = "15:04"
)

func defaultSessionTypes() []string {
	return []string{"General"}
}

type sessionService struct {
	sessionRepo    domain.SessionRepository
	conferenceRepo domain.ConferenceRepository
	tasks          domain.TaskQueue
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
	newID          func() string
}

// NewSessionService creates a SessionService.
func NewSessionService(
	sessionRepo domain.SessionRepository,
	conferenceRepo domain.ConferenceRepository,
	tasks domain.TaskQueue,
	logger *slog.Logger,
	timeout time.Duration,
) domain.SessionService {
	return &sessionService{
		sessionRepo:    sessionRepo,
		conferenceRepo: conferenceRepo,
		tasks:          tasks,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
		newID:          uuid.NewString,
	}
}

// CreateSession adds a session to a conference owned by requester. A speaker
// who already has a session in the same conference becomes the featured speaker.
func (s *sessionService) CreateSession(ctx context.Context, requester domain.Identity, conferenceID string, fields domain.SessionFields) (*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if conferenceID == "" {
		return nil, fmt.Errorf("%w: conference id required", domain.ErrInvalidInput)
	}
	if requester.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	conf, err := s.conferenceRepo.GetByID(ctx, conferenceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get conference: %w", err)
	}
	if conf.OrganizerUserID != requester.UserID {
		return nil, domain.ErrForbidden
	}

	sess, err := s.buildSession(conf.ID, fields)
	if err != nil {
		return nil, err
	}

	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	// Count after the insert: of two concurrent sessions for one speaker,
	// at least one sees the other.
	featured := false
	if sess.Speaker != "" {
		n, err := s.sessionRepo.CountSpeakerSessions(ctx, conf.ID, sess.Speaker)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping featured speaker check", "session_id", sess.ID, "error", err)
		}
		featured = n > 1
	}
	if featured {
		enqueueTask(ctx, s.tasks, s.logger, domain.Task{
			Kind:    domain.TaskSetFeaturedSpeaker,
			Speaker: sess.Speaker,
		})
	}
	return sess, nil
}

func (s *sessionService) buildSession(conferenceID string, f domain.SessionFields) (*domain.Session, error) {
	now := s.now()
	sess := &domain.Session{
		ID:            s.newID(),
		ConferenceID:  conferenceID,
		Name:          strings.TrimSpace(deref(f.Name)),
		Highlights:    deref(f.Highlights),
		Speaker:       strings.TrimSpace(deref(f.Speaker)),
		TypeOfSession: f.TypeOfSession,
		StartTime:     defaultSessionStartTime,
		CreatedAt:     now,
	}
	if sess.Name == "" {
		sess.Name = defaultSessionName
	}
	if len(sess.TypeOfSession) == 0 {
		sess.TypeOfSession = defaultSessionTypes()
	}
	if f.DurationMins != nil {
		if *f.DurationMins < 0 {
			return nil, fmt.Errorf("%w: duration must be a non-negative number of minutes", domain.ErrInvalidInput)
		}
		sess.DurationMins = *f.DurationMins
	}

	if date := deref(f.Date); date != "" {
		d, err := parseDate("date", date)
		if err != nil {
			return nil, err
		}
		sess.Date = d
	} else {
		y, m, d := now.UTC().Date()
		sess.Date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	if start := strings.TrimSpace(deref(f.StartTime)); start != "" {
		t, err := time.Parse(startTimeLayout, start)
		if err != nil {
			return nil, fmt.Errorf("%w: start_time must be HH:MM", domain.ErrInvalidInput)
		}
		sess.StartTime = t.Format(startTimeLayout)
	}
	return sess, nil
}

func (s *sessionService) ListSessions(ctx context.Context, conferenceID string) ([]*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if conferenceID == "" {
		return nil, fmt.Errorf("%w: conference id required", domain.ErrInvalidInput)
	}
	sessions, err := s.sessionRepo.ListByConference(ctx, conferenceID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return nonNil(sessions), nil
}

func (s *sessionService) ListSessionsByType(ctx context.Context, conferenceID, sessionType string) ([]*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if conferenceID == "" {
		return nil, fmt.Errorf("%w: conference id required", domain.ErrInvalidInput)
	}
	sessions, err := s.sessionRepo.ListByConferenceAndType(ctx, conferenceID, sessionType)
	if err != nil {
		return nil, fmt.Errorf("list sessions by type: %w", err)
	}
	return nonNil(sessions), nil
}

func (s *sessionService) ListSessionsBySpeaker(ctx context.Context, speaker string) ([]*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	sessions, err := s.sessionRepo.ListBySpeaker(ctx, speaker)
	if err != nil {
		return nil, fmt.Errorf("list sessions by speaker: %w", err)
	}
	return nonNil(sessions), nil
}

func (s *sessionService) ListAllSessions(ctx context.Context, p domain.PaginationParams) ([]*domain.Session, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	sessions, total, err := s.sessionRepo.ListAll(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list all sessions: %w", err)
	}
	return nonNil(sessions), total, nil
}

// ListPastSessions returns sessions dated before today (UTC).
func (s *sessionService) ListPastSessions(ctx context.Context) ([]*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	y, m, d := s.now().UTC().Date()
	sessions, err := s.sessionRepo.ListBefore(ctx, time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	if err != nil {
		return nil, fmt.Errorf("list past sessions: %w", err)
	}
	return nonNil(sessions), nil
}
