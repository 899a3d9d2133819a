package webapp

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ldsaas/portal/internal/api"
	"github.com/ldsaas/portal/internal/logx"
	"github.com/ldsaas/portal/internal/session"
)

// expireSession drops the local session and bounces to login.
func (s *server) expireSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w)
	http.Redirect(w, r, "/login?error=Session+expired", http.StatusFound)
}

// isAuthFailure reports a 401. The feed treats 403 the same way because
// tokens demoted server-side show up as forbidden there first.
func isAuthFailure(err error, includeForbidden bool) bool {
	var authErr *api.AuthError
	if errors.As(err, &authErr) {
		return true
	}
	if !includeForbidden {
		return false
	}
	var statusErr *api.StatusError
	return errors.As(err, &statusErr) && statusErr.Status == http.StatusForbidden
}

func (s *server) employeePage(w http.ResponseWriter, r *http.Request, sess session.Session) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	courses, err := s.api.ListCourses(r.Context(), sess.Token)
	if err != nil {
		if isAuthFailure(err, true) {
			s.expireSession(w, r)
			return
		}
		s.renderPage(w, r, s.employeeTmpl, pageData{Name: sess.Name, Role: sess.Role, Error: err.Error()})
		return
	}

	mine, err := s.api.MyEnrollments(r.Context(), sess.Token)
	if err != nil {
		if isAuthFailure(err, false) {
			s.expireSession(w, r)
			return
		}
		logx.FromContext(r.Context()).Warn("enrollments fetch failed", "err", err)
	}

	query := r.URL.Query().Get("q")
	skill := r.URL.Query().Get("skill")
	catalog := courseViews(courses, mine)
	s.renderPage(w, r, s.employeeTmpl, pageData{
		Name:        sess.Name,
		Role:        sess.Role,
		Error:       r.URL.Query().Get("error"),
		Message:     r.URL.Query().Get("message"),
		Courses:     filterCourses(catalog, query, skill),
		Query:       query,
		Skill:       skill,
		Skills:      skillOptions(catalog),
		Enrollments: enrollmentViews(mine),
	})
}

func (s *server) enrollProxy(w http.ResponseWriter, r *http.Request, sess session.Session) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	courseID, err := strconv.Atoi(r.PostFormValue("course_id"))
	if err != nil {
		http.Redirect(w, r, "/employee?error=Invalid+course", http.StatusFound)
		return
	}
	if err := s.api.Enroll(r.Context(), sess.Token, courseID); err != nil {
		if isAuthFailure(err, false) {
			s.expireSession(w, r)
			return
		}
		http.Redirect(w, r, "/employee?error="+url.QueryEscape(err.Error()), http.StatusFound)
		return
	}
	http.Redirect(w, r, "/employee?message="+url.QueryEscape("Enrollment requested. Your manager will review it."), http.StatusSeeOther)
}

func (s *server) managerPage(w http.ResponseWriter, r *http.Request, sess session.Session) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data := pageData{
		Name:     sess.Name,
		Role:     sess.Role,
		Error:    r.URL.Query().Get("error"),
		Message:  r.URL.Query().Get("message"),
		Elevated: sess.Role.Elevated(),
	}

	team, err := s.api.MyTeam(r.Context(), sess.Token)
	if err != nil {
		// Only a hard 401 ends the session here; a forbidden team listing
		// renders as a notice so admins without reports still get a page.
		if isAuthFailure(err, false) {
			s.expireSession(w, r)
			return
		}
		data.Error = err.Error()
		s.renderPage(w, r, s.managerTmpl, data)
		return
	}
	teamEnrollments, err := s.api.TeamEnrollments(r.Context(), sess.Token)
	if err != nil {
		logx.FromContext(r.Context()).Warn("team enrollments fetch failed", "err", err)
	}
	data.Team = teamViews(team, teamEnrollments)
	data.Stats = teamStats(team, teamEnrollments)
	data.Enrollments = enrollmentViews(teamEnrollments)
	if pending, err := s.api.PendingEnrollments(r.Context(), sess.Token); err == nil {
		data.Pending = enrollmentViews(pending)
	} else {
		logx.FromContext(r.Context()).Warn("pending enrollments fetch failed", "err", err)
	}
	if courses, err := s.api.ListCourses(r.Context(), sess.Token); err == nil {
		data.Courses = courseViews(courses, nil)
	} else {
		logx.FromContext(r.Context()).Warn("courses fetch failed", "err", err)
	}

	s.renderPage(w, r, s.managerTmpl, data)
}

func (s *server) approveProxy(w http.ResponseWriter, r *http.Request, sess session.Session) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	enrollmentID, err := strconv.Atoi(r.PostFormValue("enrollment_id"))
	if err != nil {
		http.Redirect(w, r, "/manager?error=Invalid+enrollment", http.StatusFound)
		return
	}
	if err := s.api.ApproveEnrollment(r.Context(), sess.Token, enrollmentID); err != nil {
		if isAuthFailure(err, false) {
			s.expireSession(w, r)
			return
		}
		http.Redirect(w, r, "/manager?error="+url.QueryEscape(err.Error()), http.StatusFound)
		return
	}
	http.Redirect(w, r, "/manager?message=Enrollment+approved", http.StatusSeeOther)
}

func (s *server) assignProxy(w http.ResponseWriter, r *http.Request, sess session.Session) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/manager?error=Invalid+form", http.StatusFound)
		return
	}
	courseID, err := strconv.Atoi(r.PostForm.Get("course_id"))
	if err != nil {
		http.Redirect(w, r, "/manager?error=Invalid+course", http.StatusFound)
		return
	}
	ids := r.PostForm["employee_id"]
	if len(ids) == 0 {
		http.Redirect(w, r, "/manager?error=Pick+at+least+one+team+member", http.StatusFound)
		return
	}
	deadline := r.PostForm.Get("deadline")

	// One POST per member so a bad id or a conflict only loses that member.
	assigned := 0
	var lastErr error
	for _, raw := range ids {
		employeeID, err := strconv.Atoi(raw)
		if err != nil {
			lastErr = err
			continue
		}
		req := api.AssignRequest{CourseID: courseID, EmployeeID: employeeID, Deadline: deadline}
		if err := s.api.AssignCourse(r.Context(), sess.Token, req); err != nil {
			if isAuthFailure(err, false) {
				s.expireSession(w, r)
				return
			}
			lastErr = err
			continue
		}
		assigned++
	}
	if assigned == 0 {
		msg := "Course could not be assigned"
		if lastErr != nil {
			msg = lastErr.Error()
		}
		http.Redirect(w, r, "/manager?error="+url.QueryEscape(msg), http.StatusFound)
		return
	}
	msg := fmt.Sprintf("Assigned course to %d of %d team members", assigned, len(ids))
	http.Redirect(w, r, "/manager?message="+url.QueryEscape(msg), http.StatusSeeOther)
}
