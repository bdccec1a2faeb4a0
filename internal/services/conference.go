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
	defaultConferenceCity = "Default City"
	dateLayout            = "2006-01-02"
)

func defaultConferenceTopics() []string {
	return []string{"Default", "Topic"}
}

type conferenceService struct {
	conferenceRepo domain.ConferenceRepository
	profileRepo    domain.ProfileRepository
	tx             domain.Transactor
	tasks          domain.TaskQueue
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
	newID          func() string
}

// NewConferenceService creates a ConferenceService. Confirmation emails are
// enqueued on tasks after a conference is stored.
func NewConferenceService(
	conferenceRepo domain.ConferenceRepository,
	profileRepo domain.ProfileRepository,
	tx domain.Transactor,
	tasks domain.TaskQueue,
	logger *slog.Logger,
	timeout time.Duration,
) domain.ConferenceService {
	return &conferenceService{
		conferenceRepo: conferenceRepo,
		profileRepo:    profileRepo,
		tx:             tx,
		tasks:          tasks,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
		newID:          uuid.NewString,
	}
}

func (s *conferenceService) CreateConference(ctx context.Context, owner domain.Identity, fields domain.ConferenceFields) (*domain.Conference, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if owner.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	name := strings.TrimSpace(deref(fields.Name))
	if name == "" {
		return nil, fmt.Errorf("%w: conference 'name' field required", domain.ErrInvalidInput)
	}

	now := s.now()
	c := &domain.Conference{
		ID:              s.newID(),
		OrganizerUserID: owner.UserID,
		Name:            name,
		Description:     deref(fields.Description),
		Topics:          fields.Topics,
		City:            strings.TrimSpace(deref(fields.City)),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if fields.MaxAttendees != nil {
		if *fields.MaxAttendees < 0 {
			return nil, fmt.Errorf("%w: max_attendees must be non-negative", domain.ErrInvalidInput)
		}
		c.MaxAttendees = *fields.MaxAttendees
	}
	if c.City == "" {
		c.City = defaultConferenceCity
	}
	if len(c.Topics) == 0 {
		c.Topics = defaultConferenceTopics()
	}
	if err := setConferenceDates(c, deref(fields.StartDate), deref(fields.EndDate)); err != nil {
		return nil, err
	}
	// Seats start full; the default of 0 only stands when there is no capacity.
	if c.MaxAttendees > 0 {
		c.SeatsAvailable = c.MaxAttendees
	}

	prof, err := getOrCreateProfile(ctx, s.profileRepo, owner, now)
	if err != nil {
		return nil, err
	}
	if err := s.conferenceRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create conference: %w", err)
	}
	c.OrganizerDisplayName = prof.DisplayName

	email := owner.Email
	if email == "" {
		email = prof.MainEmail
	}
	if email == "" {
		s.logger.WarnContext(ctx, "skipping confirmation email: organizer has no email", "conference_id", c.ID)
	} else {
		enqueueTask(ctx, s.tasks, s.logger, domain.Task{
			Kind:           domain.TaskSendConfirmationEmail,
			Email:          email,
			ConferenceInfo: describeConference(c),
		})
	}
	return c, nil
}

func (s *conferenceService) UpdateConference(ctx context.Context, requester domain.Identity, conferenceID string, fields domain.ConferenceFields) (*domain.Conference, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if requester.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	var updated *domain.Conference
	err := s.tx.RunInTx(ctx, func(ctx context.Context, st domain.TxStores) error {
		c, err := st.Conferences.GetForUpdate(ctx, conferenceID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get conference: %w", err)
		}
		if c.OrganizerUserID != requester.UserID {
			return domain.ErrForbidden
		}
		if err := applyConferenceUpdate(c, fields); err != nil {
			return err
		}
		c.UpdatedAt = s.now()
		if err := st.Conferences.Update(ctx, c); err != nil {
			return fmt.Errorf("update conference: %w", err)
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	names, err := s.profileRepo.DisplayNames(ctx, []string{updated.OrganizerUserID})
	if err != nil {
		return nil, fmt.Errorf("get organizer name: %w", err)
	}
	updated.OrganizerDisplayName = names[updated.OrganizerUserID]
	return updated, nil
}

func (s *conferenceService) GetConference(ctx context.Context, conferenceID string) (*domain.Conference, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if conferenceID == "" {
		return nil, fmt.Errorf("%w: conference id required", domain.ErrInvalidInput)
	}
	c, err := s.conferenceRepo.GetByID(ctx, conferenceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get conference: %w", err)
	}
	return c, nil
}

func (s *conferenceService) ListConferencesCreated(ctx context.Context, owner domain.Identity) ([]*domain.Conference, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if owner.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	confs, err := s.conferenceRepo.ListByOrganizer(ctx, owner.UserID)
	if err != nil {
		return nil, fmt.Errorf("list conferences by organizer: %w", err)
	}
	return nonNil(confs), nil
}

func (s *conferenceService) QueryConferences(ctx context.Context, filters []domain.FilterSpec) ([]*domain.Conference, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	q, err := BuildConferenceQuery(filters)
	if err != nil {
		return nil, err
	}
	confs, err := s.conferenceRepo.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query conferences: %w", err)
	}
	return nonNil(confs), nil
}

// applyConferenceUpdate copies the supplied, non-empty fields onto c.
func applyConferenceUpdate(c *domain.Conference, f domain.ConferenceFields) error {
	changed := false
	if name := strings.TrimSpace(deref(f.Name)); name != "" {
		c.Name = name
		changed = true
	}
	if f.Description != nil && *f.Description != "" {
		c.Description = *f.Description
		changed = true
	}
	if len(f.Topics) > 0 {
		c.Topics = f.Topics
		changed = true
	}
	if city := strings.TrimSpace(deref(f.City)); city != "" {
		c.City = city
		changed = true
	}
	if f.MaxAttendees != nil {
		if err := resizeConference(c, *f.MaxAttendees); err != nil {
			return err
		}
		changed = true
	}
	if deref(f.StartDate) != "" || deref(f.EndDate) != "" {
		if err := setConferenceDates(c, deref(f.StartDate), deref(f.EndDate)); err != nil {
			return err
		}
		changed = true
	}
	if !changed {
		return fmt.Errorf("%w: no fields to update", domain.ErrInvalidInput)
	}
	return nil
}

// resizeConference changes capacity while keeping the seats already taken.
// A capacity below the taken seats is rejected.
func resizeConference(c *domain.Conference, maxAttendees int) error {
	if maxAttendees < 0 {
		return fmt.Errorf("%w: max_attendees must be non-negative", domain.ErrInvalidInput)
	}
	taken := max(c.MaxAttendees-c.SeatsAvailable, 0)
	if maxAttendees < taken {
		return fmt.Errorf("%w: max_attendees %d is below the %d seats already taken", domain.ErrInvalidInput, maxAttendees, taken)
	}
	c.MaxAttendees = maxAttendees
	c.SeatsAvailable = maxAttendees - taken
	return nil
}

// setConferenceDates parses the supplied dates; an empty string leaves that
// date unchanged. Month follows the start date and stays 0 without one.
func setConferenceDates(c *domain.Conference, start, end string) error {
	if start != "" {
		d, err := parseDate("start_date", start)
		if err != nil {
			return err
		}
		c.StartDate = &d
		c.Month = int(d.Month())
	}
	if end != "" {
		d, err := parseDate("end_date", end)
		if err != nil {
			return err
		}
		c.EndDate = &d
	}
	return nil
}

// parseDate accepts YYYY-MM-DD, ignoring anything after the first 10 characters.
func parseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", domain.ErrInvalidInput, field)
	}
	return d, nil
}

// describeConference renders the conference for the confirmation email body.
func describeConference(c *domain.Conference) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", c.Name)
	if c.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", c.Description)
	}
	fmt.Fprintf(&b, "City: %s\n", c.City)
	fmt.Fprintf(&b, "Topics: %s\n", strings.Join(c.Topics, ", "))
	if c.StartDate != nil {
		fmt.Fprintf(&b, "Start date: %s\n", c.StartDate.Format(dateLayout))
	}
	if c.EndDate != nil {
		fmt.Fprintf(&b, "End date: %s\n", c.EndDate.Format(dateLayout))
	}
	fmt.Fprintf(&b, "Max attendees: %d\n", c.MaxAttendees)
	fmt.Fprintf(&b, "Seats available: %d", c.SeatsAvailable)
	return b.String()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nonNil[T any](items []*T) []*T {
	if items == nil {
		return []*T{}
	}
	return items
}
