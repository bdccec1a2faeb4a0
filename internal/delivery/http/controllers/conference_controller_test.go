package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/domain"
)

func TestConferenceController_CreateConference(t *testing.T) {
	svc := &fakeConferenceService{conference: &domain.Conference{ID: "conf-1", Name: "GopherCon", SeatsAvailable: 100, MaxAttendees: 100}}
	ctrl := NewConferenceController(testLogger, svc)

	body := map[string]any{"name": "GopherCon", "city": "Denver", "topics": []string{"Go"}, "max_attendees": 100, "start_date": "2026-07-01"}
	rr := httptest.NewRecorder()
	ctrl.CreateConference(rr, newRequest(t, http.MethodPost, "/conferences", body, &testIdentity, nil))

	require.Equal(t, http.StatusCreated, rr.Code)
	var got domain.Conference
	decodeData(t, rr, &got)
	assert.Equal(t, "conf-1", got.ID)
	require.NotNil(t, svc.lastFields.Name)
	assert.Equal(t, "GopherCon", *svc.lastFields.Name)
	assert.Equal(t, []string{"Go"}, svc.lastFields.Topics)
	require.NotNil(t, svc.lastFields.MaxAttendees)
	assert.Equal(t, 100, *svc.lastFields.MaxAttendees)
	assert.Equal(t, testIdentity, svc.lastCaller)
}

func TestConferenceController_CreateConferenceErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		identity   *domain.Identity
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{"no identity", map[string]any{"name": "x"}, nil, nil, http.StatusUnauthorized, helpers.ErrCodeUnauthorized},
		{"negative capacity", map[string]any{"name": "x", "max_attendees": -1}, &testIdentity, nil, http.StatusBadRequest, helpers.ErrCodeBadRequest},
		{"seats not client settable", map[string]any{"name": "x", "seats_available": 3}, &testIdentity, nil, http.StatusBadRequest, helpers.ErrCodeBadRequest},
		{"missing name", map[string]any{}, &testIdentity, fmt.Errorf("%w: name required", domain.ErrInvalidInput), http.StatusBadRequest, helpers.ErrCodeBadRequest},
		{"store failure", map[string]any{"name": "x"}, &testIdentity, errors.New("db down"), http.StatusInternalServerError, helpers.ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewConferenceController(testLogger, &fakeConferenceService{err: tt.svcErr})
			rr := httptest.NewRecorder()
			ctrl.CreateConference(rr, newRequest(t, http.MethodPost, "/conferences", tt.body, tt.identity, nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, rr))
		})
	}
}

func TestConferenceController_UpdateConference(t *testing.T) {
	tests := []struct {
		name       string
		svcErr     error
		wantStatus int
	}{
		{"ok", nil, http.StatusOK},
		{"not organizer", domain.ErrForbidden, http.StatusForbidden},
		{"missing", domain.ErrNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeConferenceService{conference: &domain.Conference{ID: "conf-1"}, err: tt.svcErr}
			ctrl := NewConferenceController(testLogger, svc)

			rr := httptest.NewRecorder()
			req := newRequest(t, http.MethodPut, "/conferences/conf-1", map[string]any{"city": "Paris"}, &testIdentity, map[string]string{"conferenceID": "conf-1"})
			ctrl.UpdateConference(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "conf-1", svc.lastID)
			require.NotNil(t, svc.lastFields.City)
			assert.Equal(t, "Paris", *svc.lastFields.City)
		})
	}
}

func TestConferenceController_GetConference(t *testing.T) {
	svc := &fakeConferenceService{conference: &domain.Conference{ID: "conf-1", OrganizerDisplayName: "Ada"}}
	ctrl := NewConferenceController(testLogger, svc)

	rr := httptest.NewRecorder()
	ctrl.GetConference(rr, newRequest(t, http.MethodGet, "/conferences/conf-1", nil, nil, map[string]string{"conferenceID": "conf-1"}))

	require.Equal(t, http.StatusOK, rr.Code)
	var got domain.Conference
	decodeData(t, rr, &got)
	assert.Equal(t, "Ada", got.OrganizerDisplayName)

	rr = httptest.NewRecorder()
	ctrl.GetConference(rr, newRequest(t, http.MethodGet, "/conferences/", nil, nil, nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestConferenceController_ListConferencesCreated(t *testing.T) {
	svc := &fakeConferenceService{conferences: []*domain.Conference{{ID: "a"}, {ID: "b"}}}
	ctrl := NewConferenceController(testLogger, svc)

	rr := httptest.NewRecorder()
	ctrl.ListConferencesCreated(rr, newRequest(t, http.MethodGet, "/conferences/created", nil, &testIdentity, nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var got []*domain.Conference
	decodeData(t, rr, &got)
	assert.Len(t, got, 2)
}

func TestConferenceController_QueryConferences(t *testing.T) {
	svc := &fakeConferenceService{conferences: []*domain.Conference{}}
	ctrl := NewConferenceController(testLogger, svc)

	body := map[string]any{"filters": []map[string]string{
		{"field": "CITY", "operator": "EQ", "value": "London"},
		{"field": "MONTH", "operator": "GT", "value": "3"},
	}}
	rr := httptest.NewRecorder()
	ctrl.QueryConferences(rr, newRequest(t, http.MethodPost, "/conferences/query", body, nil, nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []domain.FilterSpec{
		{Field: "CITY", Operator: "EQ", Value: "London"},
		{Field: "MONTH", Operator: "GT", Value: "3"},
	}, svc.lastFilters)
	assert.JSONEq(t, `{"data":[],"error":null}`, rr.Body.String())
}

func TestConferenceController_QueryConferencesInvalidFilter(t *testing.T) {
	svc := &fakeConferenceService{err: fmt.Errorf("%w: inequality filter is allowed on only one field", domain.ErrInvalidFilter)}
	ctrl := NewConferenceController(testLogger, svc)

	rr := httptest.NewRecorder()
	ctrl.QueryConferences(rr, newRequest(t, http.MethodPost, "/conferences/query", `{"filters":[]}`, nil, nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, helpers.ErrCodeBadRequest, errorCode(t, rr))
}
