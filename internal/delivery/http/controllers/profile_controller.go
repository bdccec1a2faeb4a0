package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/domain"
)

// SaveProfileRequest is the request body for POST /profile. Omitted or empty
// fields leave the stored value unchanged.
type SaveProfileRequest struct {
	DisplayName  *string `json:"display_name"`
	TeeShirtSize *string `json:"tee_shirt_size"`
}

// Validate implements Validator.
func (s SaveProfileRequest) Validate() []string {
	if s.TeeShirtSize == nil || strings.TrimSpace(*s.TeeShirtSize) == "" {
		return nil
	}
	if _, err := domain.ParseTeeShirtSize(*s.TeeShirtSize); err != nil {
		return []string{"tee_shirt_size must be one of NOT_SPECIFIED, XS_M, XS_W, S_M, S_W, M_M, M_W, L_M, L_W, XL_M, XL_W, XXL_M, XXL_W, XXXL_M, XXXL_W"}
	}
	return nil
}

func (s SaveProfileRequest) toUpdate() domain.ProfileUpdate {
	update := domain.ProfileUpdate{DisplayName: s.DisplayName}
	if s.TeeShirtSize != nil && strings.TrimSpace(*s.TeeShirtSize) != "" {
		size, _ := domain.ParseTeeShirtSize(*s.TeeShirtSize)
		update.TeeShirtSize = &size
	}
	return update
}

// ProfileSuccessResponse is the success envelope for profile operations.
type ProfileSuccessResponse struct {
	Data  *domain.Profile   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type ProfileController struct {
	Logger  *slog.Logger
	Service domain.ProfileService
}

func NewProfileController(logger *slog.Logger, svc domain.ProfileService) *ProfileController {
	return &ProfileController{Logger: logger, Service: svc}
}

// GetProfile godoc
// @Summary Get the caller's profile
// @Description Returns the caller's profile, creating it from the token claims on first access.
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ProfileSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /profile [get]
func (c *ProfileController) GetProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	prof, err := c.Service.GetProfile(r.Context(), identity)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, prof)
}

// SaveProfile godoc
// @Summary Update the caller's profile
// @Description Updates display_name and tee_shirt_size. Empty values are ignored.
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body SaveProfileRequest true "Profile fields"
// @Success 200 {object} controllers.ProfileSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /profile [post]
func (c *ProfileController) SaveProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req SaveProfileRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	prof, err := c.Service.SaveProfile(r.Context(), identity, req.toUpdate())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, prof)
}
