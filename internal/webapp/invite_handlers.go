package webapp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ldsaas/portal/internal/invite"
	"github.com/ldsaas/portal/internal/logx"
	"github.com/ldsaas/portal/internal/session"
)

func (s *server) invitePage(w http.ResponseWriter, r *http.Request, sess session.Session) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := s.pending.forRequest(w, r)
	recipients, progress, launching := q.snapshot()
	s.renderPage(w, r, s.inviteTmpl, pageData{
		Name:       sess.Name,
		Role:       sess.Role,
		Error:      r.URL.Query().Get("error"),
		Message:    r.URL.Query().Get("message"),
		Elevated:   sess.Role.Elevated(),
		Recipients: recipientViews(recipients),
		LogEntries: logEntryViews(q.Log.Entries()),
		Progress:   progress,
		Launching:  launching,
	})
}

func (s *server) inviteUpload(w http.ResponseWriter, r *http.Request, sess session.Session) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	file, header, err := r.FormFile("manifest")
	if err != nil {
		http.Redirect(w, r, "/invite?error=A+manifest+file+is+required", http.StatusFound)
		return
	}
	defer file.Close()

	recipients, err := invite.ParseRecipients(file, header.Filename)
	if err != nil {
		http.Redirect(w, r, "/invite?error="+url.QueryEscape(err.Error()), http.StatusFound)
		return
	}

	q := s.pending.forRequest(w, r)
	if !q.stage(recipients) {
		http.Redirect(w, r, "/invite?error=A+launch+is+already+running", http.StatusFound)
		return
	}
	q.Log.Append(fmt.Sprintf("Scanned %d recruits from manifest", len(recipients)))
	http.Redirect(w, r, "/invite", http.StatusSeeOther)
}

func (s *server) inviteAdd(w http.ResponseWriter, r *http.Request, sess session.Session) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	name := strings.TrimSpace(r.FormValue("name"))
	if !strings.Contains(email, "@") {
		http.Redirect(w, r, "/invite?error=A+valid+email+is+required", http.StatusFound)
		return
	}
	role := strings.ToLower(strings.TrimSpace(r.FormValue("role")))
	if role == "" || !sess.Role.Elevated() {
		role = "employee"
	}
	q := s.pending.forRequest(w, r)
	if !q.add(invite.Recipient{Email: email, Name: name, Role: role}) {
		http.Redirect(w, r, "/invite?error=A+launch+is+already+running", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/invite", http.StatusSeeOther)
}

func (s *server) inviteRemove(w http.ResponseWriter, r *http.Request, sess session.Session) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	index, err := strconv.Atoi(r.FormValue("index"))
	if err != nil {
		http.Redirect(w, r, "/invite", http.StatusSeeOther)
		return
	}
	q := s.pending.forRequest(w, r)
	q.removeAt(index)
	http.Redirect(w, r, "/invite", http.StatusSeeOther)
}

func (s *server) inviteLaunch(w http.ResponseWriter, r *http.Request, sess session.Session) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := s.pending.forRequest(w, r)
	recipients, ok := q.begin()
	if !ok {
		http.Redirect(w, r, "/invite?error=Nothing+to+launch", http.StatusFound)
		return
	}

	launcher := &invite.Launcher{
		Sender:     s.api,
		Log:        q.Log,
		OnProgress: q.setProgress,
	}
	token := sess.Token
	elevated := sess.Role.Elevated()
	logger := logx.FromContext(r.Context())

	// The launch outlives the request so the page can show live progress.
	go func() {
		outcome := launcher.Run(context.Background(), token, elevated, recipients)
		logger.Info("invite launch finished",
			"sent", outcome.Sent,
			"failed", outcome.Failed,
		)
		q.finish(outcome.Remaining)
	}()

	http.Redirect(w, r, "/invite", http.StatusSeeOther)
}

func (s *server) inviteTemplateFile(w http.ResponseWriter, r *http.Request, sess session.Session) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	data, err := invite.TemplateWorkbook()
	if err != nil {
		http.Error(w, "unable to build template", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote("invite-template.xlsx"))
	_, _ = w.Write(data)
}
