// Package webapp serves the portal's pages. Every page is rendered
// server-side from data fetched out of the learning-platform API with the
// visitor's own token; the portal holds no business state beyond session
// cookies and per-browser invite queues.
package webapp

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ldsaas/portal/internal/api"
	"github.com/ldsaas/portal/internal/config"
	"github.com/ldsaas/portal/internal/guard"
	"github.com/ldsaas/portal/internal/logx"
	"github.com/ldsaas/portal/internal/middleware"
	"github.com/ldsaas/portal/internal/notify"
	"github.com/ldsaas/portal/internal/session"
)

//go:embed templates/login.html templates/accept_invite.html templates/employee.html templates/manager.html templates/invite.html templates/profile.html assets/app.css
var templatesFS embed.FS

type server struct {
	api      *api.Client
	sessions *session.Store
	resolver *guard.Resolver
	logger   *slog.Logger
	pending  *pendingTable

	countries *notify.Poller[[]api.NamedRef]
	eduLevels *notify.Poller[[]api.NamedRef]

	loginTmpl        *template.Template
	acceptInviteTmpl *template.Template
	employeeTmpl     *template.Template
	managerTmpl      *template.Template
	inviteTmpl       *template.Template
	profileTmpl      *template.Template
}

// Run serves the portal until ctx is canceled.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	apiClient := api.New(cfg.APIBaseURL)
	s := newServer(apiClient, cfg.CookiePrefix, cfg.SecureCookies, logger)

	// Countries and education levels are global reference data the API
	// serves without authentication, so the pollers fetch them with an
	// empty token.
	s.countries = &notify.Poller[[]api.NamedRef]{
		Interval: cfg.ReferenceRefresh,
		Fetch: func(ctx context.Context) ([]api.NamedRef, error) {
			return apiClient.Countries(ctx, "")
		},
		OnError: func(err error) { logger.Warn("countries refresh failed", "err", err) },
	}
	s.eduLevels = &notify.Poller[[]api.NamedRef]{
		Interval: cfg.ReferenceRefresh,
		Fetch: func(ctx context.Context) ([]api.NamedRef, error) {
			return apiClient.EducationLevels(ctx, "")
		},
		OnError: func(err error) { logger.Warn("education levels refresh failed", "err", err) },
	}
	go s.countries.Run(ctx)
	go s.eduLevels.Run(ctx)

	handler := s.routes(cfg.LoginRatePerMinute)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("portal listening", "addr", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func newServer(apiClient *api.Client, cookiePrefix string, secureCookies bool, logger *slog.Logger) *server {
	return &server{
		api:      apiClient,
		sessions: session.NewStore(cookiePrefix, secureCookies),
		resolver: &guard.Resolver{API: apiClient},
		logger:   logger,
		pending:  newPendingTable(),

		countries: &notify.Poller[[]api.NamedRef]{},
		eduLevels: &notify.Poller[[]api.NamedRef]{},

		loginTmpl:        template.Must(template.ParseFS(templatesFS, "templates/login.html")),
		acceptInviteTmpl: template.Must(template.ParseFS(templatesFS, "templates/accept_invite.html")),
		employeeTmpl:     template.Must(template.ParseFS(templatesFS, "templates/employee.html")),
		managerTmpl:      template.Must(template.ParseFS(templatesFS, "templates/manager.html")),
		inviteTmpl:       template.Must(template.ParseFS(templatesFS, "templates/invite.html")),
		profileTmpl:      template.Must(template.ParseFS(templatesFS, "templates/profile.html")),
	}
}

func (s *server) routes(loginRatePerMinute int) http.Handler {
	loginLimit := middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerWindow: loginRatePerMinute,
		Window:            time.Minute,
		Burst:             loginRatePerMinute,
	})

	mux := http.NewServeMux()
	mux.Handle("/", s.guarded(s.rootRoute))
	mux.Handle("/login", middleware.Chain(s.guarded(s.loginRoute), methodLimited(loginLimit, http.MethodPost)))
	mux.Handle("/logout", http.HandlerFunc(s.logout))
	mux.Handle("/accept-invite", s.guarded(s.acceptInviteRoute))
	mux.Handle("/employee", s.guarded(s.employeePage))
	mux.Handle("/employee/enroll", s.guarded(s.enrollProxy))
	mux.Handle("/manager", s.guarded(s.managerPage))
	mux.Handle("/manager/approve", s.guarded(s.approveProxy))
	mux.Handle("/manager/assign", s.guarded(s.assignProxy))
	mux.Handle("/admin", s.guarded(s.managerPage))
	mux.Handle("/invite", s.guarded(s.invitePage))
	mux.Handle("/invite/add", s.guarded(s.inviteAdd))
	mux.Handle("/invite/remove", s.guarded(s.inviteRemove))
	mux.Handle("/invite/upload", s.guarded(s.inviteUpload))
	mux.Handle("/invite/launch", s.guarded(s.inviteLaunch))
	mux.Handle("/invite/template.xlsx", s.guarded(s.inviteTemplateFile))
	mux.Handle("/profile", s.guarded(s.profileRoute))
	mux.Handle("/profile/avatar", s.guarded(s.avatarUpload))
	mux.Handle("/profile/dependents", s.guarded(s.dependentRoutes))
	mux.Handle("/profile/cities", s.guarded(s.citiesFragment))
	mux.Handle("/notifications", s.guarded(s.notificationsRoute))
	mux.Handle("/static/app.css", http.HandlerFunc(s.appCSSFile))

	csp := strings.Join([]string{
		"default-src 'self'",
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data: https:",
		"script-src 'self' 'unsafe-inline'",
		"connect-src 'self'",
		"frame-ancestors 'none'",
	}, "; ")

	return middleware.Chain(
		mux,
		logx.HTTPMiddleware(s.logger),
		middleware.SecurityHeaders(middleware.SecurityHeadersConfig{ContentSecurityPolicy: csp}),
	)
}

// methodLimited applies mw only to requests of the given method.
func methodLimited(mw func(http.Handler) http.Handler, method string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limited := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == method {
				limited.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *server) appCSSFile(w http.ResponseWriter, r *http.Request) {
	data, err := templatesFS.ReadFile("assets/app.css")
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_, _ = w.Write(data)
}
