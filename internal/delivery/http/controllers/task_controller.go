package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/domain"
)

// SendConfirmationEmailRequest is the request body for POST /tasks/send_confirmation_email.
type SendConfirmationEmailRequest struct {
	Email          string `json:"email"`
	ConferenceInfo string `json:"conference_info"`
}

// Validate implements Validator.
func (s SendConfirmationEmailRequest) Validate() []string {
	if strings.TrimSpace(s.Email) == "" {
		return []string{"email is required"}
	}
	return nil
}

// SetFeaturedSpeakerRequest is the request body for POST /tasks/set_featured_speaker.
type SetFeaturedSpeakerRequest struct {
	Speaker string `json:"speaker"`
}

// Validate implements Validator.
func (s SetFeaturedSpeakerRequest) Validate() []string {
	if strings.TrimSpace(s.Speaker) == "" {
		return []string{"speaker is required"}
	}
	return nil
}

// TaskController runs queued work synchronously when a scheduler or operator
// calls the task and cron routes directly.
type TaskController struct {
	Logger        *slog.Logger
	Tasks         domain.TaskHandler
	Announcements domain.AnnouncementService
}

func NewTaskController(logger *slog.Logger, tasks domain.TaskHandler, announcements domain.AnnouncementService) *TaskController {
	return &TaskController{Logger: logger, Tasks: tasks, Announcements: announcements}
}

// SendConfirmationEmail godoc
// @Summary Send a conference confirmation email
// @Tags tasks
// @Accept json
// @Produce json
// @Param X-Task-Key header string true "Task key"
// @Param task body SendConfirmationEmailRequest true "Recipient and conference details"
// @Success 200 {object} controllers.BoolSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tasks/send_confirmation_email [post]
func (c *TaskController) SendConfirmationEmail(w http.ResponseWriter, r *http.Request) {
	var req SendConfirmationEmailRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	c.run(w, r, domain.Task{
		Kind:           domain.TaskSendConfirmationEmail,
		Email:          strings.TrimSpace(req.Email),
		ConferenceInfo: req.ConferenceInfo,
	})
}

// SetFeaturedSpeaker godoc
// @Summary Set the featured speaker
// @Tags tasks
// @Accept json
// @Produce json
// @Param X-Task-Key header string true "Task key"
// @Param task body SetFeaturedSpeakerRequest true "Speaker name"
// @Success 200 {object} controllers.BoolSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tasks/set_featured_speaker [post]
func (c *TaskController) SetFeaturedSpeaker(w http.ResponseWriter, r *http.Request) {
	var req SetFeaturedSpeakerRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	c.run(w, r, domain.Task{Kind: domain.TaskSetFeaturedSpeaker, Speaker: req.Speaker})
}

// SetAnnouncement godoc
// @Summary Recompute the nearly-sold-out announcement
// @Description Returns the announcement now stored in the cache; empty when it was cleared.
// @Tags tasks
// @Produce json
// @Param X-Task-Key header string true "Task key"
// @Success 200 {object} controllers.MessageSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /crons/set_announcement [get]
func (c *TaskController) SetAnnouncement(w http.ResponseWriter, r *http.Request) {
	msg, err := c.Announcements.RecomputeAnnouncement(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, MessageResponse{Message: msg})
}

func (c *TaskController) run(w http.ResponseWriter, r *http.Request, task domain.Task) {
	if err := c.Tasks.Handle(r.Context(), task); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, BoolResponse{Result: true})
}
