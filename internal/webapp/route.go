package webapp

import (
	"errors"
	"net/http"

	"github.com/ldsaas/portal/internal/api"
	"github.com/ldsaas/portal/internal/guard"
	"github.com/ldsaas/portal/internal/logx"
	"github.com/ldsaas/portal/internal/session"
)

type guardedHandler func(w http.ResponseWriter, r *http.Request, sess session.Session)

// guarded reads the session, recovers a missing role, and applies the
// routing rules before handing the request to the page handler.
func (s *server) guarded(h guardedHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := s.sessions.Read(r)
		if sess.Token != "" && sess.Role == session.RoleUnknown {
			role, err := s.resolver.Resolve(r.Context(), sess.Token)
			if err != nil {
				var authErr *api.AuthError
				if errors.As(err, &authErr) {
					logx.FromContext(r.Context()).Info("session token rejected, clearing")
					s.sessions.Clear(w)
					sess = session.Session{}
				}
			} else {
				sess.Role = role
				s.sessions.SetRole(w, role)
			}
		}

		decision := guard.Decide(r.URL.Path, sess)
		if decision.Kind == guard.Redirect {
			s.redirect(w, r, decision)
			return
		}
		h(w, r, sess)
	})
}

// redirect maps the navigation mode onto a status: user-initiated moves get
// a 303 so the browser records a history entry, corrections get a 302 the
// pages treat as a replacement.
func (s *server) redirect(w http.ResponseWriter, r *http.Request, d guard.Decision) {
	status := http.StatusFound
	if d.Nav == guard.NavAssign {
		status = http.StatusSeeOther
	}
	http.Redirect(w, r, d.Target, status)
}
