package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/delivery/http/middleware"
	"conferencecentral/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var testIdentity = domain.Identity{UserID: "user-1", Email: "ada@example.com", Name: "Ada"}

// newRequest builds a request with an optional JSON body, path values and caller identity.
func newRequest(t *testing.T, method, target string, body any, identity *domain.Identity, pathValues map[string]string) *http.Request {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rdr)
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	if identity != nil {
		req = req.WithContext(middleware.SetIdentity(req.Context(), *identity))
	}
	return req
}

// decodeData decodes the success envelope's data into dest.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var envelope struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	require.Nil(t, envelope.Error)
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

// errorCode decodes the error envelope and returns its code.
func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	require.NotNil(t, envelope.Error)
	return envelope.Error.Code
}

type fakeProfileService struct {
	profile    *domain.Profile
	err        error
	lastUpdate domain.ProfileUpdate
	lastCaller domain.Identity
}

func (f *fakeProfileService) GetProfile(_ context.Context, identity domain.Identity) (*domain.Profile, error) {
	f.lastCaller = identity
	return f.profile, f.err
}

func (f *fakeProfileService) SaveProfile(_ context.Context, identity domain.Identity, update domain.ProfileUpdate) (*domain.Profile, error) {
	f.lastCaller = identity
	f.lastUpdate = update
	return f.profile, f.err
}

type fakeConferenceService struct {
	conference  *domain.Conference
	conferences []*domain.Conference
	err         error
	lastFields  domain.ConferenceFields
	lastID      string
	lastFilters []domain.FilterSpec
	lastCaller  domain.Identity
}

func (f *fakeConferenceService) CreateConference(_ context.Context, owner domain.Identity, fields domain.ConferenceFields) (*domain.Conference, error) {
	f.lastCaller = owner
	f.lastFields = fields
	return f.conference, f.err
}

func (f *fakeConferenceService) UpdateConference(_ context.Context, requester domain.Identity, id string, fields domain.ConferenceFields) (*domain.Conference, error) {
	f.lastCaller = requester
	f.lastID = id
	f.lastFields = fields
	return f.conference, f.err
}

func (f *fakeConferenceService) GetConference(_ context.Context, id string) (*domain.Conference, error) {
	f.lastID = id
	return f.conference, f.err
}

func (f *fakeConferenceService) ListConferencesCreated(_ context.Context, owner domain.Identity) ([]*domain.Conference, error) {
	f.lastCaller = owner
	return f.conferences, f.err
}

func (f *fakeConferenceService) QueryConferences(_ context.Context, filters []domain.FilterSpec) ([]*domain.Conference, error) {
	f.lastFilters = filters
	return f.conferences, f.err
}

type fakeSessionService struct {
	session     *domain.Session
	sessions    []*domain.Session
	total       int
	err         error
	lastConfID  string
	lastType    string
	lastSpeaker string
	lastFields  domain.SessionFields
	lastPage    domain.PaginationParams
}

func (f *fakeSessionService) CreateSession(_ context.Context, _ domain.Identity, conferenceID string, fields domain.SessionFields) (*domain.Session, error) {
	f.lastConfID = conferenceID
	f.lastFields = fields
	return f.session, f.err
}

func (f *fakeSessionService) ListSessions(_ context.Context, conferenceID string) ([]*domain.Session, error) {
	f.lastConfID = conferenceID
	return f.sessions, f.err
}

func (f *fakeSessionService) ListSessionsByType(_ context.Context, conferenceID, sessionType string) ([]*domain.Session, error) {
	f.lastConfID = conferenceID
	f.lastType = sessionType
	return f.sessions, f.err
}

func (f *fakeSessionService) ListSessionsBySpeaker(_ context.Context, speaker string) ([]*domain.Session, error) {
	f.lastSpeaker = speaker
	return f.sessions, f.err
}

func (f *fakeSessionService) ListAllSessions(_ context.Context, p domain.PaginationParams) ([]*domain.Session, int, error) {
	f.lastPage = p
	return f.sessions, f.total, f.err
}

func (f *fakeSessionService) ListPastSessions(_ context.Context) ([]*domain.Session, error) {
	return f.sessions, f.err
}

type fakeRegistrationService struct {
	result      bool
	profile     *domain.Profile
	conferences []*domain.Conference
	sessions    []*domain.Session
	err         error
	lastID      string
}

func (f *fakeRegistrationService) Register(_ context.Context, _ domain.Identity, conferenceID string) (bool, error) {
	f.lastID = conferenceID
	return f.result, f.err
}

func (f *fakeRegistrationService) Unregister(_ context.Context, _ domain.Identity, conferenceID string) (bool, error) {
	f.lastID = conferenceID
	return f.result, f.err
}

func (f *fakeRegistrationService) ListConferencesAttending(_ context.Context, _ domain.Identity) ([]*domain.Conference, error) {
	return f.conferences, f.err
}

func (f *fakeRegistrationService) AddToWishlist(_ context.Context, _ domain.Identity, sessionID string) (*domain.Profile, error) {
	f.lastID = sessionID
	return f.profile, f.err
}

func (f *fakeRegistrationService) RemoveFromWishlist(_ context.Context, _ domain.Identity, sessionID string) (*domain.Profile, error) {
	f.lastID = sessionID
	return f.profile, f.err
}

func (f *fakeRegistrationService) ListWishlist(_ context.Context, _ domain.Identity) ([]*domain.Session, error) {
	return f.sessions, f.err
}

type fakeAnnouncementService struct {
	announcement string
	speaker      string
	err          error
	recomputed   int
}

func (f *fakeAnnouncementService) RecomputeAnnouncement(_ context.Context) (string, error) {
	f.recomputed++
	return f.announcement, f.err
}

func (f *fakeAnnouncementService) SetFeaturedSpeaker(_ context.Context, speaker string) error {
	f.speaker = speaker
	return f.err
}

func (f *fakeAnnouncementService) GetAnnouncement(_ context.Context) (string, error) {
	return f.announcement, f.err
}

func (f *fakeAnnouncementService) GetFeaturedSpeaker(_ context.Context) (string, error) {
	return f.speaker, f.err
}
