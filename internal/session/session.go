// Package session holds the portal's client-cached authentication state:
// the access token issued by the learning API plus the display name and role
// cached at login time. The triple lives in the visitor's browser as three
// cookies; the portal itself keeps no server-side session table. The cached
// role is a routing hint only; every authenticated API call is re-checked
// by the remote service.
package session

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Role is the cached account role. It mirrors whatever the API reported at
// login; an unrecognized or missing value parses to RoleUnknown.
type Role string

const (
	RoleUnknown  Role = ""
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// ParseRole normalizes a role string from the API or a cookie.
func ParseRole(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "employee":
		return RoleEmployee
	case "manager":
		return RoleManager
	case "admin":
		return RoleAdmin
	default:
		return RoleUnknown
	}
}

// HomePath is the landing route for the role. Admins share the manager
// dashboard.
func (r Role) HomePath() string {
	switch r {
	case RoleManager, RoleAdmin:
		return "/manager"
	case RoleEmployee:
		return "/employee"
	default:
		return "/login"
	}
}

// Elevated reports whether the role may set a non-default role on invites.
func (r Role) Elevated() bool {
	return r == RoleAdmin
}

// Session is the cached triple. Any field may be absent (zero).
type Session struct {
	Token string
	Name  string
	Role  Role
}

// Present reports whether an access token is cached.
func (s Session) Present() bool {
	return s.Token != ""
}

const (
	tokenCookieSuffix = "_access_token"
	nameCookieSuffix  = "_user_name"
	roleCookieSuffix  = "_user_role"
)

// Store reads and writes the session cookies. The zero value is not usable;
// construct with NewStore.
type Store struct {
	prefix string
	secure bool
}

// NewStore returns a Store whose cookies are named prefix_access_token,
// prefix_user_name and prefix_user_role.
func NewStore(prefix string, secure bool) *Store {
	return &Store{prefix: prefix, secure: secure}
}

// Set writes all three cookies on the response. Readers within the same
// browser see either the old triple or the new one, never a mix, because the
// cookies ship on a single response.
func (st *Store) Set(w http.ResponseWriter, s Session) {
	st.write(w, tokenCookieSuffix, s.Token)
	st.write(w, nameCookieSuffix, s.Name)
	st.write(w, roleCookieSuffix, string(s.Role))
}

// SetRole rewrites only the cached role, used when a legacy session is
// missing one and the guard has resolved it.
func (st *Store) SetRole(w http.ResponseWriter, role Role) {
	st.write(w, roleCookieSuffix, string(role))
}

// Clear expires all three cookies.
func (st *Store) Clear(w http.ResponseWriter) {
	st.expire(w, tokenCookieSuffix)
	st.expire(w, nameCookieSuffix)
	st.expire(w, roleCookieSuffix)
}

// Read returns the current triple. Missing cookies yield zero fields; Read
// never fails.
func (st *Store) Read(r *http.Request) Session {
	return Session{
		Token: st.value(r, tokenCookieSuffix),
		Name:  st.value(r, nameCookieSuffix),
		Role:  ParseRole(st.value(r, roleCookieSuffix)),
	}
}

// Cookie values are percent-encoded: http.SetCookie silently drops bytes a
// cookie may not carry, which would mangle non-ASCII display names.
func (st *Store) write(w http.ResponseWriter, suffix, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     st.prefix + suffix,
		Value:    url.QueryEscape(value),
		Path:     "/",
		HttpOnly: true,
		Secure:   st.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (st *Store) expire(w http.ResponseWriter, suffix string) {
	http.SetCookie(w, &http.Cookie{
		Name:     st.prefix + suffix,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   st.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

func (st *Store) value(r *http.Request, suffix string) string {
	c, err := r.Cookie(st.prefix + suffix)
	if err != nil {
		return ""
	}
	decoded, err := url.QueryUnescape(c.Value)
	if err != nil {
		// A cookie written by something else; better raw than dropped.
		return c.Value
	}
	return decoded
}
