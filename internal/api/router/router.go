package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/clinicport/clinicport/internal/access"
	"github.com/clinicport/clinicport/internal/http/handlers"
	httpmiddleware "github.com/clinicport/clinicport/internal/http/middleware"
	"github.com/clinicport/clinicport/internal/identity"
	"github.com/clinicport/clinicport/internal/observability/metrics"
	"github.com/clinicport/clinicport/internal/session"
	"github.com/clinicport/clinicport/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger *logging.Logger

	AuthHandler       *handlers.AuthHandler
	AdminHandler      *handlers.AdminHandler
	SuperAdminHandler *handlers.SuperAdminHandler
	DoctorHandler     *handlers.DoctorHandler
	PatientHandler    *handlers.PatientHandler

	SessionStore *session.Store
	Cookies      *session.Cookies
	GateMetrics  *metrics.GateMetrics

	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	LoginRatePerSec    float64
	LoginRateBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
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

	gate := func(roles ...identity.Role) func(http.Handler) http.Handler {
		return access.Gate(cfg.SessionStore, cfg.Cookies, cfg.GateMetrics, cfg.Logger, roles...)
	}

	// Public endpoints (health, metrics, hydration, browsing)
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.AuthHandler != nil {
			public.Get("/session", cfg.AuthHandler.Session)
			public.Post("/logout", cfg.AuthHandler.Logout)
		}
		if cfg.PatientHandler != nil {
			public.Get("/doctors", cfg.PatientHandler.BrowseDoctors)
			public.Get("/doctors/{doctorID}/slots", cfg.PatientHandler.DoctorSlots)
		}
	})

	// Login and signup, rate-limited per IP.
	if cfg.AuthHandler != nil {
		r.Group(func(login chi.Router) {
			rate, burst := cfg.LoginRatePerSec, cfg.LoginRateBurst
			if rate <= 0 {
				rate = 1
			}
			if burst <= 0 {
				burst = 5
			}
			login.Use(httpmiddleware.RateLimit(rate, burst))
			login.Post("/super-admin/login", cfg.AuthHandler.SuperAdminLogin)
			login.Post("/admin/login", cfg.AuthHandler.AdminLogin)
			login.Post("/doctor/login", cfg.AuthHandler.DoctorLogin)
			login.Post("/login", cfg.AuthHandler.PatientLogin)
			login.Post("/signup", cfg.AuthHandler.Signup)
		})
	}

	// Role areas, each behind the access gate and its own error boundary.
	if cfg.SuperAdminHandler != nil {
		r.Route("/super-admin", func(sa chi.Router) {
			sa.Use(httpmiddleware.Boundary("super-admin", cfg.Logger))
			sa.Use(gate(identity.RoleSuperAdmin))
			sa.Mount("/", cfg.SuperAdminHandler.Routes())
		})
	}
	if cfg.AdminHandler != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.Boundary("admin", cfg.Logger))
			admin.Use(gate(identity.RoleAdmin, identity.RoleSuperAdmin))
			admin.Mount("/", cfg.AdminHandler.Routes())
		})
	}
	if cfg.DoctorHandler != nil {
		r.Route("/doctor", func(doctor chi.Router) {
			doctor.Use(httpmiddleware.Boundary("doctor", cfg.Logger))
			doctor.Use(gate(identity.RoleDoctor))
			doctor.Mount("/", cfg.DoctorHandler.Routes())
		})
	}
	if cfg.PatientHandler != nil {
		r.Route("/app", func(app chi.Router) {
			app.Use(httpmiddleware.Boundary("patient", cfg.Logger))
			app.Use(gate(identity.RoleUser))
			app.Mount("/", cfg.PatientHandler.Routes())
		})
	}

	return r
}
