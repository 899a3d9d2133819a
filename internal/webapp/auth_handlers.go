package webapp

import (
	"html/template"
	"net/http"
	"net/url"

	"github.com/ldsaas/portal/internal/guard"
	"github.com/ldsaas/portal/internal/logx"
	"github.com/ldsaas/portal/internal/security"
	"github.com/ldsaas/portal/internal/session"
)

type pageData struct {
	Error   string
	Message string
	Name    string
	Role    session.Role

	Email string
	Token string

	Courses     []courseView
	Query       string
	Skill       string
	Skills      []string
	Enrollments []enrollmentView
	Team        []teamMemberView
	Stats       teamStatsView
	Pending     []enrollmentView

	Profile    *profileView
	Countries  []refView
	Cities     []refView
	EduLevels  []refView
	Dependents []dependentView

	Recipients []recipientView
	LogEntries []logEntryView
	Progress   int
	Launching  bool
	Elevated   bool
}

func (s *server) renderPage(w http.ResponseWriter, r *http.Request, tmpl *template.Template, data pageData) {
	if err := tmpl.Execute(w, data); err != nil {
		logx.FromContext(r.Context()).Error("template render failed", "err", err)
	}
}

// rootRoute only sees paths the mux could not match; "/" itself always
// redirects in the guard.
func (s *server) rootRoute(w http.ResponseWriter, r *http.Request, sess session.Session) {
	http.NotFound(w, r)
}

func (s *server) loginRoute(w http.ResponseWriter, r *http.Request, sess session.Session) {
	switch r.Method {
	case http.MethodGet:
		s.renderPage(w, r, s.loginTmpl, pageData{
			Error:   r.URL.Query().Get("error"),
			Message: r.URL.Query().Get("message"),
		})
	case http.MethodPost:
		s.login(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/login?error=Invalid+form+submission", http.StatusFound)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		http.Redirect(w, r, "/login?error=Username+and+password+are+required", http.StatusFound)
		return
	}

	result, err := s.api.Login(r.Context(), username, password)
	if err != nil {
		http.Redirect(w, r, "/login?error="+url.QueryEscape(err.Error()), http.StatusFound)
		return
	}

	role := session.ParseRole(result.User.Role)
	name := result.User.Name
	if name == "" {
		name = result.User.Email
	}
	s.sessions.Set(w, session.Session{
		Token: result.AccessToken,
		Name:  name,
		Role:  role,
	})
	s.redirect(w, r, guard.Decision{
		Kind:   guard.Redirect,
		Target: role.HomePath(),
		Nav:    guard.NavAssign,
	})
}

func (s *server) logout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *server) acceptInviteRoute(w http.ResponseWriter, r *http.Request, sess session.Session) {
	switch r.Method {
	case http.MethodGet:
		email := r.URL.Query().Get("email")
		token := r.URL.Query().Get("token")
		data := pageData{
			Error:   r.URL.Query().Get("error"),
			Email:   email,
			Token:   token,
		}
		if email == "" || token == "" {
			data.Error = "This invitation link is invalid or incomplete. Ask for a new invitation."
		}
		s.renderPage(w, r, s.acceptInviteTmpl, data)
	case http.MethodPost:
		s.acceptInvite(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *server) acceptInvite(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/accept-invite?error=Invalid+form+submission", http.StatusFound)
		return
	}
	email := r.PostFormValue("email")
	token := r.PostFormValue("token")
	password := r.PostFormValue("password")
	confirm := r.PostFormValue("confirm_password")

	back := func(msg string) {
		http.Redirect(w, r, "/accept-invite?email="+url.QueryEscape(email)+
			"&token="+url.QueryEscape(token)+
			"&error="+url.QueryEscape(msg), http.StatusFound)
	}

	if email == "" || token == "" {
		back("This invitation link is invalid or incomplete. Ask for a new invitation.")
		return
	}
	if err := security.ValidatePasswordConfirmation(password, confirm); err != nil {
		back(err.Error())
		return
	}

	if err := s.api.AcceptInvite(r.Context(), email, token, password); err != nil {
		back(err.Error())
		return
	}
	http.Redirect(w, r, "/login?message="+url.QueryEscape("Account created. Sign in with your new password."), http.StatusSeeOther)
}
