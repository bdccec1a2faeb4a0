package controllers

import (
	"log/slog"
	"net/http"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/domain"
)

// CreateSessionRequest is the request body for POST /conferences/{conferenceID}/sessions.
// Date is YYYY-MM-DD and start_time is HH:MM; both default when omitted.
type CreateSessionRequest struct {
	Name            *string  `json:"name"`
	Highlights      *string  `json:"highlights"`
	Speaker         *string  `json:"speaker"`
	DurationMinutes *int     `json:"duration_minutes"`
	TypeOfSession   []string `json:"type_of_session"`
	Date            *string  `json:"date"`
	StartTime       *string  `json:"start_time"`
}

// Validate implements Validator.
func (c CreateSessionRequest) Validate() []string {
	if c.DurationMinutes != nil && *c.DurationMinutes < 0 {
		return []string{"duration_minutes must be non-negative"}
	}
	return nil
}

func (c CreateSessionRequest) toFields() domain.SessionFields {
	return domain.SessionFields{
		Name:          c.Name,
		Highlights:    c.Highlights,
		Speaker:       c.Speaker,
		DurationMins:  c.DurationMinutes,
		TypeOfSession: c.TypeOfSession,
		Date:          c.Date,
		StartTime:     c.StartTime,
	}
}

// SessionSuccessResponse is the success envelope for a single session.
type SessionSuccessResponse struct {
	Data  *domain.Session   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListAllSessionsResponse is the data for GET /sessions.
type ListAllSessionsResponse struct {
	Sessions   []*domain.Session      `json:"sessions"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListAllSessionsSuccessResponse is the success envelope for GET /sessions.
type ListAllSessionsSuccessResponse struct {
	Data  ListAllSessionsResponse `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

type SessionController struct {
	Logger  *slog.Logger
	Service domain.SessionService
}

func NewSessionController(logger *slog.Logger, svc domain.SessionService) *SessionController {
	return &SessionController{Logger: logger, Service: svc}
}

// CreateSession godoc
// @Summary Create a session
// @Description Adds a session to a conference. Only the conference organizer may add sessions. When the speaker already has a session in the conference, they become the featured speaker.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param conferenceID path string true "Conference ID"
// @Param session body CreateSessionRequest true "Session data"
// @Success 201 {object} controllers.SessionSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{conferenceID}/sessions [post]
func (c *SessionController) CreateSession(w http.ResponseWriter, r *http.Request) {
	conferenceID, ok := requirePathValue(w, r, "conferenceID")
	if !ok {
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req CreateSessionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	sess, err := c.Service.CreateSession(r.Context(), identity, conferenceID, req.toFields())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, sess)
}

// ListSessions godoc
// @Summary List a conference's sessions
// @Tags sessions
// @Produce json
// @Param conferenceID path string true "Conference ID"
// @Success 200 {object} controllers.SessionListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{conferenceID}/sessions [get]
func (c *SessionController) ListSessions(w http.ResponseWriter, r *http.Request) {
	conferenceID, ok := requirePathValue(w, r, "conferenceID")
	if !ok {
		return
	}
	sessions, err := c.Service.ListSessions(r.Context(), conferenceID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, sessions)
}

// ListSessionsByType godoc
// @Summary List a conference's sessions of one type
// @Tags sessions
// @Produce json
// @Param conferenceID path string true "Conference ID"
// @Param type path string true "Session type, e.g. Workshop"
// @Success 200 {object} controllers.SessionListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{conferenceID}/sessions/type/{type} [get]
func (c *SessionController) ListSessionsByType(w http.ResponseWriter, r *http.Request) {
	conferenceID, ok := requirePathValue(w, r, "conferenceID")
	if !ok {
		return
	}
	sessionType, ok := requirePathValue(w, r, "type")
	if !ok {
		return
	}
	sessions, err := c.Service.ListSessionsByType(r.Context(), conferenceID, sessionType)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, sessions)
}

// ListSessionsBySpeaker godoc
// @Summary List sessions given by a speaker across all conferences
// @Tags sessions
// @Produce json
// @Param speaker path string true "Speaker name"
// @Success 200 {object} controllers.SessionListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /sessions/speaker/{speaker} [get]
func (c *SessionController) ListSessionsBySpeaker(w http.ResponseWriter, r *http.Request) {
	speaker, ok := requirePathValue(w, r, "speaker")
	if !ok {
		return
	}
	sessions, err := c.Service.ListSessionsBySpeaker(r.Context(), speaker)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, sessions)
}

// ListAllSessions godoc
// @Summary List all sessions
// @Tags sessions
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListAllSessionsSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /sessions [get]
func (c *SessionController) ListAllSessions(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	sessions, total, err := c.Service.ListAllSessions(r.Context(), params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListAllSessionsResponse{
		Sessions:   sessions,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// ListPastSessions godoc
// @Summary List sessions dated before today
// @Tags sessions
// @Produce json
// @Success 200 {object} controllers.SessionListSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /sessions/past [get]
func (c *SessionController) ListPastSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := c.Service.ListPastSessions(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, sessions)
}
