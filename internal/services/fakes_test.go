package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"conferencecentral/internal/domain"
)

var errDB = errors.New("db error")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeProfileRepo is an in-memory ProfileRepository. Reads return copies so
// callers only see their changes after Update.
type fakeProfileRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Profile
	updateErr error
	ensureErr error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{byID: make(map[string]*domain.Profile)}
}

func copyProfile(p *domain.Profile) *domain.Profile {
	cp := *p
	cp.ConferenceIDsToAttend = slices.Clone(p.ConferenceIDsToAttend)
	cp.SessionIDsWishlist = slices.Clone(p.SessionIDsWishlist)
	return &cp
}

func (f *fakeProfileRepo) Ensure(ctx context.Context, p *domain.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ensureErr != nil {
		return f.ensureErr
	}
	if _, ok := f.byID[p.UserID]; !ok {
		f.byID[p.UserID] = copyProfile(p)
	}
	return nil
}

func (f *fakeProfileRepo) GetByID(ctx context.Context, userID string) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyProfile(p), nil
}

func (f *fakeProfileRepo) GetForUpdate(ctx context.Context, userID string) (*domain.Profile, error) {
	return f.GetByID(ctx, userID)
}

func (f *fakeProfileRepo) Update(ctx context.Context, p *domain.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.byID[p.UserID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[p.UserID] = copyProfile(p)
	return nil
}

func (f *fakeProfileRepo) DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string)
	for _, id := range userIDs {
		if p, ok := f.byID[id]; ok {
			out[id] = p.DisplayName
		}
	}
	return out, nil
}

// fakeConferenceRepo is an in-memory ConferenceRepository.
type fakeConferenceRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Conference
	profiles  *fakeProfileRepo
	createErr error
	updateErr error
	listErr   error
	lastQuery domain.ConferenceQuery
}

func newFakeConferenceRepo(profiles *fakeProfileRepo) *fakeConferenceRepo {
	return &fakeConferenceRepo{byID: make(map[string]*domain.Conference), profiles: profiles}
}

func copyConference(c *domain.Conference) *domain.Conference {
	cp := *c
	cp.Topics = slices.Clone(c.Topics)
	return &cp
}

func (f *fakeConferenceRepo) put(c *domain.Conference) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[c.ID] = copyConference(c)
}

func (f *fakeConferenceRepo) get(id string) *domain.Conference {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyConference(f.byID[id])
}

func (f *fakeConferenceRepo) Create(ctx context.Context, c *domain.Conference) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.put(c)
	return nil
}

func (f *fakeConferenceRepo) GetByID(ctx context.Context, id string) (*domain.Conference, error) {
	c, err := f.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.profiles != nil {
		names, _ := f.profiles.DisplayNames(ctx, []string{c.OrganizerUserID})
		c.OrganizerDisplayName = names[c.OrganizerUserID]
	}
	return c, nil
}

func (f *fakeConferenceRepo) GetForUpdate(ctx context.Context, id string) (*domain.Conference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyConference(c), nil
}

func (f *fakeConferenceRepo) Update(ctx context.Context, c *domain.Conference) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[c.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[c.ID] = copyConference(c)
	return nil
}

func (f *fakeConferenceRepo) all() []*domain.Conference {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Conference, 0, len(f.byID))
	for _, c := range f.byID {
		out = append(out, copyConference(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (f *fakeConferenceRepo) ListByOrganizer(ctx context.Context, userID string) ([]*domain.Conference, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.Conference
	for _, c := range f.all() {
		if c.OrganizerUserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

// ListByIDs returns matches in arbitrary (name) order, like the SQL query.
func (f *fakeConferenceRepo) ListByIDs(ctx context.Context, ids []string) ([]*domain.Conference, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.Conference
	for _, c := range f.all() {
		if slices.Contains(ids, c.ID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeConferenceRepo) Query(ctx context.Context, q domain.ConferenceQuery) ([]*domain.Conference, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.lastQuery = q
	return f.all(), nil
}

func (f *fakeConferenceRepo) ListNamesWithSeatsBetween(ctx context.Context, min, max int) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var names []string
	for _, c := range f.all() {
		if c.SeatsAvailable > min && c.SeatsAvailable <= max {
			names = append(names, c.Name)
		}
	}
	return names, nil
}

// fakeSessionRepo is an in-memory SessionRepository.
type fakeSessionRepo struct {
	mu        sync.Mutex
	sessions  []*domain.Session
	createErr error
	lastPage  domain.PaginationParams
	lastDate  time.Time
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{}
}

func (f *fakeSessionRepo) filter(keep func(*domain.Session) bool) []*domain.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Session
	for _, s := range f.sessions {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

func (f *fakeSessionRepo) Create(ctx context.Context, s *domain.Session) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = append(f.sessions, s)
	return nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	found := f.filter(func(s *domain.Session) bool { return s.ID == id })
	if len(found) == 0 {
		return nil, domain.ErrNotFound
	}
	return found[0], nil
}

func (f *fakeSessionRepo) ListByConference(ctx context.Context, conferenceID string) ([]*domain.Session, error) {
	return f.filter(func(s *domain.Session) bool { return s.ConferenceID == conferenceID }), nil
}

func (f *fakeSessionRepo) ListByConferenceAndType(ctx context.Context, conferenceID, sessionType string) ([]*domain.Session, error) {
	return f.filter(func(s *domain.Session) bool {
		return s.ConferenceID == conferenceID && slices.Contains(s.TypeOfSession, sessionType)
	}), nil
}

func (f *fakeSessionRepo) ListBySpeaker(ctx context.Context, speaker string) ([]*domain.Session, error) {
	return f.filter(func(s *domain.Session) bool { return s.Speaker == speaker }), nil
}

func (f *fakeSessionRepo) ListAll(ctx context.Context, p domain.PaginationParams) ([]*domain.Session, int, error) {
	f.lastPage = p
	all := f.filter(func(*domain.Session) bool { return true })
	start := min(p.Offset(), len(all))
	end := min(start+p.PageSize, len(all))
	return all[start:end], len(all), nil
}

func (f *fakeSessionRepo) ListBefore(ctx context.Context, date time.Time) ([]*domain.Session, error) {
	f.lastDate = date
	return f.filter(func(s *domain.Session) bool { return s.Date.Before(date) }), nil
}

func (f *fakeSessionRepo) ListByIDs(ctx context.Context, ids []string) ([]*domain.Session, error) {
	return f.filter(func(s *domain.Session) bool { return slices.Contains(ids, s.ID) }), nil
}

func (f *fakeSessionRepo) CountSpeakerSessions(ctx context.Context, conferenceID, speaker string) (int, error) {
	found := f.filter(func(s *domain.Session) bool { return s.ConferenceID == conferenceID && s.Speaker == speaker })
	return len(found), nil
}

// fakeTransactor serializes transactions the way row locks would for a
// single conference.
type fakeTransactor struct {
	mu          sync.Mutex
	profiles    *fakeProfileRepo
	conferences *fakeConferenceRepo
	calls       int
}

func (f *fakeTransactor) RunInTx(ctx context.Context, fn func(ctx context.Context, stores domain.TxStores) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return fn(ctx, domain.TxStores{Profiles: f.profiles, Conferences: f.conferences})
}

// fakeTaskQueue records enqueued tasks.
type fakeTaskQueue struct {
	mu    sync.Mutex
	tasks []domain.Task
	err   error
}

func (f *fakeTaskQueue) Enqueue(ctx context.Context, task domain.Task) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, task)
	return nil
}

// fakeCache is a map-backed Cache.
type fakeCache struct {
	mu     sync.Mutex
	values map[string]string
	err    error
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.values[key], nil
}

func (f *fakeCache) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.values[key] = value
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.values, key)
	return nil
}

type testStores struct {
	profiles    *fakeProfileRepo
	conferences *fakeConferenceRepo
	sessions    *fakeSessionRepo
	tx          *fakeTransactor
	tasks       *fakeTaskQueue
}

func newTestStores() *testStores {
	profiles := newFakeProfileRepo()
	conferences := newFakeConferenceRepo(profiles)
	return &testStores{
		profiles:    profiles,
		conferences: conferences,
		sessions:    newFakeSessionRepo(),
		tx:          &fakeTransactor{profiles: profiles, conferences: conferences},
		tasks:       &fakeTaskQueue{},
	}
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
