package controllers

import (
	"net/http"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/delivery/http/middleware"
	"conferencecentral/internal/domain"
)

// BoolResponse wraps an operation's success flag.
type BoolResponse struct {
	Result bool `json:"result"`
}

// BoolSuccessResponse is the success envelope for operations returning a flag.
type BoolSuccessResponse struct {
	Data  BoolResponse      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// MessageResponse carries a single string result such as the announcement.
type MessageResponse struct {
	Message string `json:"message"`
}

// MessageSuccessResponse is the success envelope for operations returning a message.
type MessageSuccessResponse struct {
	Data  MessageResponse   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ConferenceListSuccessResponse is the success envelope for conference listings.
type ConferenceListSuccessResponse struct {
	Data  []*domain.Conference `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// SessionListSuccessResponse is the success envelope for session listings.
type SessionListSuccessResponse struct {
	Data  []*domain.Session `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// requireIdentity writes a 401 and returns false when the request carries no caller.
func requireIdentity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
	}
	return identity, ok
}

// requirePathValue writes a 400 and returns false when the path parameter is empty.
func requirePathValue(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := r.PathValue(name)
	if v == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing "+name)
	}
	return v, v != ""
}
