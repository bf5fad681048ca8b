package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/slabworks/slabdesk-backend/api/controllers"
	"github.com/slabworks/slabdesk-backend/api/middleware"
	"github.com/slabworks/slabdesk-backend/internal/auth"
	"github.com/slabworks/slabdesk-backend/internal/billing"
	"github.com/slabworks/slabdesk-backend/internal/groups"
	"github.com/slabworks/slabdesk-backend/internal/lifecycle"
	"github.com/slabworks/slabdesk-backend/internal/submissions"
	"github.com/slabworks/slabdesk-backend/pkg/auth/session"
	"github.com/slabworks/slabdesk-backend/pkg/config"
	"github.com/slabworks/slabdesk-backend/pkg/db"
	"github.com/slabworks/slabdesk-backend/pkg/enums"
	"github.com/slabworks/slabdesk-backend/pkg/logger"
	"github.com/slabworks/slabdesk-backend/pkg/redis"
)

// Services bundles everything the router mounts.
type Services struct {
	Auth        auth.Service
	Submissions submissions.Service
	Lifecycle   lifecycle.Service
	Groups      groups.Service
	Billing     billing.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	registry *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		if !cfg.App.IsProd() {
			r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegisterAdmin(svcs.Auth, logg))
		}
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Post("/auth/logout", controllers.AuthLogout(svcs.Auth, logg))

		r.Route("/submissions", func(r chi.Router) {
			r.Get("/", controllers.SubmissionsList(svcs.Submissions, logg))
			r.Post("/", controllers.SubmissionCreate(svcs.Submissions, logg))
			r.Post("/advance-status", controllers.SubmissionsAdvanceStatus(svcs.Lifecycle, logg))
			r.Get("/code/{code}", controllers.SubmissionDetailByCode(svcs.Submissions, logg))
			r.Get("/{submissionId}", controllers.SubmissionDetail(svcs.Submissions, logg))
			r.Post("/{submissionId}/correct-status", controllers.SubmissionCorrectStatus(svcs.Lifecycle, logg))
		})

		r.Route("/groups", func(r chi.Router) {
			r.Get("/", controllers.GroupsList(svcs.Groups, logg))
			r.Post("/", controllers.GroupCreate(svcs.Groups, logg))
			r.Get("/code/{code}", controllers.GroupDetailByCode(svcs.Groups, logg))
			r.Get("/{groupId}", controllers.GroupDetail(svcs.Groups, logg))
			r.Post("/{groupId}/status", controllers.GroupSetStatus(svcs.Groups, logg))
			r.Post("/{groupId}/submissions", controllers.GroupAddSubmissions(svcs.Groups, logg))
			r.Post("/{groupId}/submissions/remove", controllers.GroupRemoveSubmissions(svcs.Groups, logg))
			r.Post("/{groupId}/reorder", controllers.GroupReorderCards(svcs.Groups, logg))
			r.Post("/{groupId}/reopen", controllers.GroupReopen(svcs.Groups, logg))
			r.Post("/{groupId}/resume", controllers.GroupResume(svcs.Groups, logg))
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", controllers.InvoicesList(svcs.Billing, logg))
			r.Post("/assemble", controllers.InvoicesAssemble(svcs.Billing, logg))
			r.Get("/{invoiceId}", controllers.InvoiceDetail(svcs.Billing, logg))
			r.Post("/{invoiceId}/send", controllers.InvoiceSend(svcs.Billing, logg))
			r.Post("/{invoiceId}/split", controllers.InvoiceSplit(svcs.Billing, logg))
		})

		r.Route("/billing/settings", func(r chi.Router) {
			r.Get("/", controllers.BillingSettingsGet(svcs.Billing, logg))
			r.With(middleware.RequireRole(string(enums.AdminRoleOwner), logg)).Put("/", controllers.BillingSettingsUpdate(svcs.Billing, logg))
		})
	})

	return r
}
