package webapp

import (
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ldsaas/portal/internal/api"
)

func newTestPortal(t *testing.T, upstream http.Handler) http.Handler {
	t.Helper()
	apiServer := httptest.NewServer(upstream)
	t.Cleanup(apiServer.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := newServer(api.New(apiServer.URL), "portal", false, logger)
	return s.routes(100)
}

func sessionCookies(token, name, role string) []*http.Cookie {
	cookies := []*http.Cookie{
		{Name: "portal_access_token", Value: token},
		{Name: "portal_user_name", Value: name},
	}
	if role != "" {
		cookies = append(cookies, &http.Cookie{Name: "portal_user_role", Value: role})
	}
	return cookies
}

func get(handler http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func postForm(handler http.Handler, path, form string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestLoginSuccessSetsSessionAndRedirectsHome(t *testing.T) {
	t.Parallel()

	portal := newTestPortal(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/auth/login", r.URL.Path)
		w.Write([]byte(`{"access_token":"tok-1","user":{"email":"m@example.com","name":"Mel","role":"manager"}}`))
	}))

	rec := postForm(portal, "/login", "username=m%40example.com&password=pw")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/manager", rec.Header().Get("Location"))

	byName := map[string]string{}
	for _, c := range rec.Result().Cookies() {
		byName[c.Name] = c.Value
	}
	require.Equal(t, "tok-1", byName["portal_access_token"])
	require.Equal(t, "Mel", byName["portal_user_name"])
	require.Equal(t, "manager", byName["portal_user_role"])
}

func TestLoginFailureRedirectsWithErrorMessage(t *testing.T) {
	t.Parallel()

	portal := newTestPortal(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Incorrect username or password"}`))
	}))

	rec := postForm(portal, "/login", "username=x&password=y")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login?error=Incorrect+username+or+password", rec.Header().Get("Location"))
}

func TestAnonymousVisitorIsSentToLogin(t *testing.T) {
	t.Parallel()

	portal := newTestPortal(t, http.NotFoundHandler())
	for _, path := range []string{"/", "/employee", "/manager", "/profile"} {
		rec := get(portal, path)
		require.Equal(t, http.StatusFound, rec.Code, path)
		require.Equal(t, "/login", rec.Header().Get("Location"), path)
	}
}

func TestEmployeeIsCorrectedAwayFromManagerConsole(t *testing.T) {
	t.Parallel()

	portal := newTestPortal(t, http.NotFoundHandler())
	rec := get(portal, "/manager", sessionCookies("tok", "Eve", "employee")...)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/employee", rec.Header().Get("Location"))
}

func TestForbiddenCourseFeedExpiresSession(t *testing.T) {
	t.Parallel()

	portal := newTestPortal(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"detail":"Not allowed"}`))
	}))

	rec := get(portal, "/employee", sessionCookies("stale", "Eve", "employee")...)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login?error=Session+expired", rec.Header().Get("Location"))

	expired := 0
	for _, c := range rec.Result().Cookies() {
		if strings.HasPrefix(c.Name, "portal_") && c.MaxAge < 0 {
			expired++
		}
	}
	require.Equal(t, 3, expired)
}

func TestManagerPageRendersTeam(t *testing.T) {
	t.Parallel()

	portal := newTestPortal(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/users/my-team":
			w.Write([]byte(`[{"id":4,"email":"eve@example.com","name":"Eve","role":"employee"}]`))
		case "/api/v1/enrollments/team", "/api/v1/enrollments/pending", "/api/v1/courses":
			w.Write([]byte(`[]`))
		default:
			http.NotFound(w, r)
		}
	}))

	rec := get(portal, "/manager", sessionCookies("tok", "Mel", "manager")...)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Eve")
	require.Contains(t, rec.Body.String(), "eve@example.com")
}

func TestMissingRoleIsRecoveredFromIdentityLookup(t *testing.T) {
	t.Parallel()

	portal := newTestPortal(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/users/me":
			require.Equal(t, "Bearer opaque-token", r.Header.Get("Authorization"))
			w.Write([]byte(`{"id":9,"email":"m@example.com","name":"Mel","role":"manager"}`))
		case "/api/v1/users/my-team", "/api/v1/enrollments/team", "/api/v1/enrollments/pending", "/api/v1/courses":
			w.Write([]byte(`[]`))
		default:
			http.NotFound(w, r)
		}
	}))

	rec := get(portal, "/manager", sessionCookies("opaque-token", "Mel", "")...)
	require.Equal(t, http.StatusOK, rec.Code)

	roleWrittenBack := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "portal_user_role" && c.Value == "manager" {
			roleWrittenBack = true
		}
	}
	require.True(t, roleWrittenBack)
}

func TestAcceptInviteRejectsShortPassword(t *testing.T) {
	t.Parallel()

	portal := newTestPortal(t, http.NotFoundHandler())
	rec := postForm(portal, "/accept-invite",
		"email=new%40example.com&token=abc&password=short&confirm_password=short")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Contains(t, rec.Header().Get("Location"), "Password+must+be+between+8+and+72+characters")
}

func TestAcceptInviteRejectsMismatchedPasswords(t *testing.T) {
	t.Parallel()

	portal := newTestPortal(t, http.NotFoundHandler())
	rec := postForm(portal, "/accept-invite",
		"email=new%40example.com&token=abc&password=longenough1&confirm_password=longenough2")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Contains(t, rec.Header().Get("Location"), "Passwords+do+not+match")
}

func TestInviteUploadThenLaunch(t *testing.T) {
	t.Parallel()

	portal := newTestPortal(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/auth/invite" {
			w.WriteHeader(http.StatusCreated)
			return
		}
		http.NotFound(w, r)
	}))
	cookies := sessionCookies("tok", "Mel", "manager")

	var body strings.Builder
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("manifest", "recruits.csv")
	require.NoError(t, err)
	_, err = io.WriteString(part, "email,name\nnew@example.com,New Hire\n")
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/invite/upload", strings.NewReader(body.String()))
	req.Header.Set("Content-Type", writer.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	portal.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	var queueCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == queueCookieName {
			queueCookie = c
		}
	}
	require.NotNil(t, queueCookie)
	cookies = append(cookies, queueCookie)

	page := get(portal, "/invite", cookies...)
	require.Equal(t, http.StatusOK, page.Code)
	require.Contains(t, page.Body.String(), "new@example.com")
	require.Contains(t, page.Body.String(), "Scanned 1 recruits from manifest")

	launch := postForm(portal, "/invite/launch", "", cookies...)
	require.Equal(t, http.StatusSeeOther, launch.Code)

	require.Eventually(t, func() bool {
		page := get(portal, "/invite", cookies...)
		return strings.Contains(page.Body.String(), "Invited 1 of 1 recruits")
	}, 2*time.Second, 10*time.Millisecond)
}

func TestInviteManualAddAndRemove(t *testing.T) {
	t.Parallel()

	portal := newTestPortal(t, http.NotFoundHandler())
	cookies := sessionCookies("tok", "Mel", "manager")

	rec := postForm(portal, "/invite/add", "email=solo%40example.com&name=Solo+Hire", cookies...)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	var queueCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == queueCookieName {
			queueCookie = c
		}
	}
	require.NotNil(t, queueCookie)
	cookies = append(cookies, queueCookie)

	page := get(portal, "/invite", cookies...)
	require.Contains(t, page.Body.String(), "solo@example.com")

	rec = postForm(portal, "/invite/remove", "index=0", cookies...)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	page = get(portal, "/invite", cookies...)
	require.NotContains(t, page.Body.String(), "solo@example.com")
	require.Contains(t, page.Body.String(), "Nothing queued")
}

func TestInviteUploadAppendsToManuallyStagedQueue(t *testing.T) {
	t.Parallel()

	portal := newTestPortal(t, http.NotFoundHandler())
	cookies := sessionCookies("tok", "Mel", "manager")

	rec := postForm(portal, "/invite/add", "email=first%40example.com&name=First+Hire", cookies...)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == queueCookieName {
			cookies = append(cookies, c)
		}
	}

	var body strings.Builder
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("manifest", "recruits.csv")
	require.NoError(t, err)
	_, err = io.WriteString(part, "email,name\nsecond@example.com,Second Hire\n")
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/invite/upload", strings.NewReader(body.String()))
	req.Header.Set("Content-Type", writer.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	upload := httptest.NewRecorder()
	portal.ServeHTTP(upload, req)
	require.Equal(t, http.StatusSeeOther, upload.Code)

	page := get(portal, "/invite", cookies...)
	pageBody := page.Body.String()
	require.Contains(t, pageBody, "first@example.com")
	require.Contains(t, pageBody, "second@example.com")
	require.Less(t, strings.Index(pageBody, "first@example.com"), strings.Index(pageBody, "second@example.com"))
}

func TestInviteAddAcceptsMissingName(t *testing.T) {
	t.Parallel()

	portal := newTestPortal(t, http.NotFoundHandler())
	rec := postForm(portal, "/invite/add", "email=nameless%40example.com", sessionCookies("tok", "Mel", "manager")...)
	require.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestInviteAddRequiresValidEmail(t *testing.T) {
	t.Parallel()

	portal := newTestPortal(t, http.NotFoundHandler())
	rec := postForm(portal, "/invite/add", "email=not-an-email&name=Nope", sessionCookies("tok", "Mel", "manager")...)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Contains(t, rec.Header().Get("Location"), "error=")
}

func TestEmployeeCourseFilter(t *testing.T) {
	t.Parallel()

	portal := newTestPortal(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/courses":
			w.Write([]byte(`[
				{"id":1,"name":"Go Fundamentals","provider":"Acme","skills":"go, backend"},
				{"id":2,"name":"Spreadsheet Wizardry","provider":"Acme","skills":"excel"}
			]`))
		case "/api/v1/enrollments/me":
			w.Write([]byte(`[]`))
		default:
			http.NotFound(w, r)
		}
	}))
	cookies := sessionCookies("tok", "Eve", "employee")

	rec := get(portal, "/employee?q=fundamentals", cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Go Fundamentals")
	require.NotContains(t, rec.Body.String(), "Spreadsheet Wizardry")

	rec = get(portal, "/employee?skill=excel", cookies...)
	require.Contains(t, rec.Body.String(), "Spreadsheet Wizardry")
	require.NotContains(t, rec.Body.String(), "Go Fundamentals")
}

func TestAssignCourseToSeveralTeamMembers(t *testing.T) {
	t.Parallel()

	var assigns int32
	portal := newTestPortal(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/enrollments/assign", r.URL.Path)
		atomic.AddInt32(&assigns, 1)
		w.WriteHeader(http.StatusCreated)
	}))

	rec := postForm(portal, "/manager/assign",
		"course_id=7&employee_id=1&employee_id=2&employee_id=3&deadline=2026-09-30",
		sessionCookies("tok", "Mel", "manager")...)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Contains(t, rec.Header().Get("Location"), "Assigned+course+to+3+of+3+team+members")
	require.EqualValues(t, 3, atomic.LoadInt32(&assigns))
}

func TestAssignCourseReportsTotalFailure(t *testing.T) {
	t.Parallel()

	portal := newTestPortal(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"detail":"Already assigned"}`))
	}))

	rec := postForm(portal, "/manager/assign", "course_id=7&employee_id=1",
		sessionCookies("tok", "Mel", "manager")...)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Contains(t, rec.Header().Get("Location"), "Already+assigned")
}

func TestAdminAliasRendersManagerConsole(t *testing.T) {
	t.Parallel()

	portal := newTestPortal(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/users/my-team":
			w.Write([]byte(`[{"id":4,"email":"eve@example.com","name":"Eve","role":"employee"}]`))
		case "/api/v1/enrollments/team", "/api/v1/enrollments/pending", "/api/v1/courses":
			w.Write([]byte(`[]`))
		default:
			http.NotFound(w, r)
		}
	}))

	rec := get(portal, "/admin", sessionCookies("tok", "Ada", "admin")...)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Eve")

	rec = get(portal, "/admin", sessionCookies("tok", "Eve", "employee")...)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/employee", rec.Header().Get("Location"))
}

func TestInviteTemplateDownload(t *testing.T) {
	t.Parallel()

	portal := newTestPortal(t, http.NotFoundHandler())
	rec := get(portal, "/invite/template.xlsx", sessionCookies("tok", "Mel", "admin")...)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Disposition"), "invite-template.xlsx")
	require.NotEmpty(t, rec.Body.Bytes())
}

func TestNotificationsFeedAsJSON(t *testing.T) {
	t.Parallel()

	portal := newTestPortal(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/enrollments/notifications", r.URL.Path)
		w.Write([]byte(`[{"id":1,"title":"Approved","body":"Go learn","is_read":false,"created_at":"2026-08-01T10:00:00Z"}]`))
	}))

	rec := get(portal, "/notifications", sessionCookies("tok", "Eve", "employee")...)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	require.Contains(t, rec.Body.String(), `"Approved"`)
}
