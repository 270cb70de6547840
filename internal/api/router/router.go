package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/carebridge-health/telecare-platform/internal/appointments"
	"github.com/carebridge-health/telecare-platform/internal/assistant"
	"github.com/carebridge-health/telecare-platform/internal/delivery"
	"github.com/carebridge-health/telecare-platform/internal/doctors"
	httpmiddleware "github.com/carebridge-health/telecare-platform/internal/http/middleware"
	"github.com/carebridge-health/telecare-platform/internal/notifications"
	"github.com/carebridge-health/telecare-platform/internal/patients"
	"github.com/carebridge-health/telecare-platform/internal/prescriptions"
	"github.com/carebridge-health/telecare-platform/internal/realtime"
	"github.com/carebridge-health/telecare-platform/internal/vitals"
	"github.com/carebridge-health/telecare-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger               *logging.Logger
	Authority            *httpmiddleware.TokenAuthority
	AppointmentsHandler  *appointments.Handler
	DoctorsHandler       *doctors.Handler
	PatientsHandler      *patients.Handler
	VitalsHandler        *vitals.Handler
	PrescriptionsHandler *prescriptions.Handler
	NotificationsHandler *notifications.Handler
	DeliveryHandler      *delivery.Handler
	AssistantHandler     *assistant.Handler
	RealtimeHub          *realtime.Hub
	MetricsHandler       http.Handler
	CORSAllowedOrigins   []string
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints.
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.AppointmentsHandler != nil {
			public.Post("/payments/callback", cfg.AppointmentsHandler.PaymentCallback)
		}
		if cfg.RealtimeHub != nil {
			public.Get("/realtime/ws", cfg.RealtimeHub.HandleWebSocket)
		}
	})

	// Authenticated endpoints.
	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.SessionAuth(cfg.Authority))

		if cfg.DoctorsHandler != nil {
			private.Get("/doctors", cfg.DoctorsHandler.List)
			private.Get("/doctors/{doctorID}", cfg.DoctorsHandler.Get)
			private.Put("/doctors/{doctorID}/availability", cfg.DoctorsHandler.SetAvailability)
		}
		if cfg.PatientsHandler != nil {
			private.Get("/patients/me", cfg.PatientsHandler.Me)
			private.Put("/patients/me", cfg.PatientsHandler.UpdateMe)
		}
		if cfg.AppointmentsHandler != nil {
			private.Get("/appointments", cfg.AppointmentsHandler.List)
			private.Post("/appointments", cfg.AppointmentsHandler.Book)
			private.Patch("/appointments/{appointmentID}/reschedule", cfg.AppointmentsHandler.Reschedule)
			private.Post("/appointments/{appointmentID}/cancel", cfg.AppointmentsHandler.Cancel)
			private.Post("/appointments/{appointmentID}/complete", cfg.AppointmentsHandler.Complete)
		}
		if cfg.VitalsHandler != nil {
			private.Get("/vitals", cfg.VitalsHandler.List)
			private.Post("/vitals", cfg.VitalsHandler.Record)
		}
		if cfg.PrescriptionsHandler != nil {
			private.Get("/prescriptions", cfg.PrescriptionsHandler.List)
			private.Post("/prescriptions", cfg.PrescriptionsHandler.Create)
		}
		if cfg.NotificationsHandler != nil {
			private.Get("/notifications", cfg.NotificationsHandler.List)
			private.Post("/notifications/{notificationID}/read", cfg.NotificationsHandler.MarkRead)
			private.Post("/notifications/read-all", cfg.NotificationsHandler.MarkAllRead)
		}
		if cfg.DeliveryHandler != nil {
			private.Get("/deliveries", cfg.DeliveryHandler.List)
			private.Post("/deliveries", cfg.DeliveryHandler.Create)
			private.Post("/deliveries/{deliveryID}/advance", cfg.DeliveryHandler.Advance)
		}
		if cfg.AssistantHandler != nil {
			private.Post("/assistant/chat", cfg.AssistantHandler.Chat)
			private.Post("/assistant/analyze", cfg.AssistantHandler.Analyze)
		}
	})

	return r
}
