package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	"conferencecentral/internal/delivery/http/controllers"
	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/delivery/http/middleware"
	"conferencecentral/internal/domain"
	"conferencecentral/internal/metrics"
)

// ErrCodeUnavailable is returned by /healthz when a dependency is down.
const ErrCodeUnavailable = "unavailable"

// HealthCheck is a named dependency probe reported by /healthz.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// RouterDeps carries everything the router wires into handlers.
type RouterDeps struct {
	Logger         *slog.Logger
	Verifier       domain.TokenVerifier
	TaskKeys       domain.TaskKeyChecker
	AllowedOrigins []string
	HealthChecks   []HealthCheck

	Profiles      *controllers.ProfileController
	Conferences   *controllers.ConferenceController
	Sessions      *controllers.SessionController
	Registrations *controllers.RegistrationController
	Announcements *controllers.AnnouncementController
	Tasks         *controllers.TaskController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(d RouterDeps) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(d.Verifier, d.Logger)
	taskKey := middleware.RequireTaskKey(d.TaskKeys, d.Logger)

	// Profile and wishlist
	mux.HandleFunc("GET /profile", auth(d.Profiles.GetProfile))
	mux.HandleFunc("POST /profile", auth(d.Profiles.SaveProfile))
	mux.HandleFunc("GET /profile/wishlist", auth(d.Registrations.ListWishlist))
	mux.HandleFunc("POST /profile/wishlist/{sessionID}", auth(d.Registrations.AddToWishlist))
	mux.HandleFunc("DELETE /profile/wishlist/{sessionID}", auth(d.Registrations.RemoveFromWishlist))

	// Conferences
	mux.HandleFunc("POST /conferences", auth(d.Conferences.CreateConference))
	mux.HandleFunc("POST /conferences/query", d.Conferences.QueryConferences)
	mux.HandleFunc("GET /conferences/created", auth(d.Conferences.ListConferencesCreated))
	mux.HandleFunc("GET /conferences/attending", auth(d.Registrations.ListConferencesAttending))
	mux.HandleFunc("GET /conferences/{conferenceID}", d.Conferences.GetConference)
	mux.HandleFunc("PUT /conferences/{conferenceID}", auth(d.Conferences.UpdateConference))
	mux.HandleFunc("POST /conferences/{conferenceID}/registration", auth(d.Registrations.Register))
	mux.HandleFunc("DELETE /conferences/{conferenceID}/registration", auth(d.Registrations.Unregister))

	// Sessions
	mux.HandleFunc("POST /conferences/{conferenceID}/sessions", auth(d.Sessions.CreateSession))
	mux.HandleFunc("GET /conferences/{conferenceID}/sessions", d.Sessions.ListSessions)
	mux.HandleFunc("GET /conferences/{conferenceID}/sessions/type/{type}", d.Sessions.ListSessionsByType)
	mux.HandleFunc("GET /sessions", d.Sessions.ListAllSessions)
	mux.HandleFunc("GET /sessions/past", d.Sessions.ListPastSessions)
	mux.HandleFunc("GET /sessions/speaker/{speaker}", d.Sessions.ListSessionsBySpeaker)

	// Announcements
	mux.HandleFunc("GET /announcement", d.Announcements.GetAnnouncement)
	mux.HandleFunc("GET /featured-speaker", d.Announcements.GetFeaturedSpeaker)

	// Tasks and crons
	mux.HandleFunc("POST /tasks/send_confirmation_email", taskKey(d.Tasks.SendConfirmationEmail))
	mux.HandleFunc("POST /tasks/set_featured_speaker", taskKey(d.Tasks.SetFeaturedSpeaker))
	mux.HandleFunc("GET /crons/set_announcement", taskKey(d.Tasks.SetAnnouncement))

	// Operations
	mux.HandleFunc("GET /healthz", healthHandler(d.HealthChecks))
	mux.Handle("GET /metrics", metrics.Handler())

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return middleware.CORS(d.AllowedOrigins, middleware.LoggingMiddleware(d.Logger, mux))
}

// healthHandler reports 503 naming the failing dependencies when any check fails.
func healthHandler(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := make(map[string]string, len(checks))
		var failed []string
		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				failed = append(failed, c.Name+": "+err.Error())
				continue
			}
			status[c.Name] = "ok"
		}
		if len(failed) > 0 {
			helpers.WriteJSONError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, strings.Join(failed, "; "))
			return
		}
		helpers.WriteJSONSuccess(w, http.StatusOK, status)
	}
}
