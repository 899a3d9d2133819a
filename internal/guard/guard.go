// Package guard decides what to do with an incoming page request given the
// locally cached session. Decisions are advisory routing only; the API
// re-checks authorization on every call, so a wrong local role can at worst
// land the user on a page whose data requests 403.
package guard

import (
	"strings"

	"github.com/ldsaas/portal/internal/session"
)

// Kind says whether the requested page renders or the browser is sent
// elsewhere.
type Kind int

const (
	Render Kind = iota
	Redirect
)

// NavMode distinguishes a user-initiated navigation from an automatic
// correction. Corrections replace the history entry so the back button does
// not bounce through them.
type NavMode int

const (
	NavReplace NavMode = iota
	NavAssign
)

// Decision is the outcome of routing one request.
type Decision struct {
	Kind   Kind
	Target string
	Nav    NavMode
}

var render = Decision{Kind: Render}

func redirect(target string) Decision {
	return Decision{Kind: Redirect, Target: target, Nav: NavReplace}
}

// public paths render for everyone, signed in or not, except /login which
// bounces authenticated users home.
func isPublic(path string) bool {
	switch path {
	case "/login", "/accept-invite":
		return true
	}
	return strings.HasPrefix(path, "/static/")
}

// homeOf is the landing page for a role. Admins share the manager console.
func homeOf(role session.Role) string {
	return role.HomePath()
}

// Decide routes one request. The role must already be resolved; a session
// with a token but unknown role should go through Resolver first.
func Decide(path string, sess session.Session) Decision {
	if !sess.Present() {
		if isPublic(path) {
			return render
		}
		return redirect("/login")
	}
	switch {
	case path == "/login":
		// An unresolvable role has /login as its home; rendering the page
		// beats bouncing the visitor in a redirect loop.
		if target := homeOf(sess.Role); target != "/login" {
			return redirect(target)
		}
		return render
	case path == "/":
		return redirect(homeOf(sess.Role))
	case strings.HasPrefix(path, "/employee"):
		if sess.Role == session.RoleEmployee {
			return render
		}
		return redirect(homeOf(sess.Role))
	case strings.HasPrefix(path, "/manager"), strings.HasPrefix(path, "/admin"):
		if sess.Role == session.RoleManager || sess.Role == session.RoleAdmin {
			return render
		}
		return redirect(homeOf(sess.Role))
	}
	return render
}
