package webapp

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ldsaas/portal/internal/api"
	"github.com/ldsaas/portal/internal/logx"
	"github.com/ldsaas/portal/internal/session"
)

// referenceCountries serves the cached list when the poller has one and
// falls back to an authenticated fetch otherwise.
func (s *server) referenceCountries(r *http.Request, token string) []api.NamedRef {
	if cached, ok := s.countries.Latest(); ok {
		return cached
	}
	refs, err := s.api.Countries(r.Context(), token)
	if err != nil {
		logx.FromContext(r.Context()).Warn("countries fetch failed", "err", err)
		return nil
	}
	return refs
}

func (s *server) referenceEduLevels(r *http.Request, token string) []api.NamedRef {
	if cached, ok := s.eduLevels.Latest(); ok {
		return cached
	}
	refs, err := s.api.EducationLevels(r.Context(), token)
	if err != nil {
		logx.FromContext(r.Context()).Warn("education levels fetch failed", "err", err)
		return nil
	}
	return refs
}

func (s *server) profileRoute(w http.ResponseWriter, r *http.Request, sess session.Session) {
	switch r.Method {
	case http.MethodGet:
		s.profilePage(w, r, sess)
	case http.MethodPost:
		s.profileUpdate(w, r, sess)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *server) profilePage(w http.ResponseWriter, r *http.Request, sess session.Session) {
	profile, err := s.api.GetProfile(r.Context(), sess.Token)
	if err != nil {
		if isAuthFailure(err, false) {
			s.expireSession(w, r)
			return
		}
		s.renderPage(w, r, s.profileTmpl, pageData{Name: sess.Name, Role: sess.Role, Error: err.Error()})
		return
	}

	data := pageData{
		Name:      sess.Name,
		Role:      sess.Role,
		Error:     r.URL.Query().Get("error"),
		Message:   r.URL.Query().Get("message"),
		Profile:   &profileView{Profile: *profile},
		Countries: refViews(s.referenceCountries(r, sess.Token), profile.CountryID),
		EduLevels: refViews(s.referenceEduLevels(r, sess.Token), profile.EducationLevelID),
	}
	if profile.CountryID != nil {
		if cities, err := s.api.Cities(r.Context(), sess.Token, *profile.CountryID); err == nil {
			data.Cities = refViews(cities, profile.CityID)
		} else {
			logx.FromContext(r.Context()).Warn("cities fetch failed", "err", err)
		}
	}
	if deps, err := s.api.Dependents(r.Context(), sess.Token); err == nil {
		data.Dependents = dependentViews(deps)
	} else {
		logx.FromContext(r.Context()).Warn("dependents fetch failed", "err", err)
	}

	s.renderPage(w, r, s.profileTmpl, data)
}

func optionalID(value string) *int {
	id, err := strconv.Atoi(value)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

func (s *server) profileUpdate(w http.ResponseWriter, r *http.Request, sess session.Session) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/profile?error=Invalid+form+submission", http.StatusFound)
		return
	}
	profile := api.Profile{
		FirstName:        r.PostFormValue("first_name"),
		LastName:         r.PostFormValue("last_name"),
		Bio:              r.PostFormValue("bio"),
		PhoneNumber:      r.PostFormValue("phone_number"),
		DateOfBirth:      r.PostFormValue("date_of_birth"),
		AddressLine1:     r.PostFormValue("address_line1"),
		AddressLine2:     r.PostFormValue("address_line2"),
		PostalCode:       r.PostFormValue("postal_code"),
		CountryID:        optionalID(r.PostFormValue("country_id")),
		CityID:           optionalID(r.PostFormValue("city_id")),
		EducationLevelID: optionalID(r.PostFormValue("education_level_id")),
	}
	if _, err := s.api.UpdateProfile(r.Context(), sess.Token, profile); err != nil {
		if isAuthFailure(err, false) {
			s.expireSession(w, r)
			return
		}
		http.Redirect(w, r, "/profile?error="+url.QueryEscape(err.Error()), http.StatusFound)
		return
	}
	http.Redirect(w, r, "/profile?message=Profile+saved", http.StatusSeeOther)
}

func (s *server) avatarUpload(w http.ResponseWriter, r *http.Request, sess session.Session) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	file, _, err := r.FormFile("avatar")
	if err != nil {
		http.Redirect(w, r, "/profile?error=An+image+file+is+required", http.StatusFound)
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, 10<<20))
	if err != nil {
		http.Redirect(w, r, "/profile?error=Unable+to+read+image", http.StatusFound)
		return
	}
	processed, err := processAvatarBytes(raw)
	if err != nil {
		http.Redirect(w, r, "/profile?error="+url.QueryEscape(err.Error()), http.StatusFound)
		return
	}

	if _, err := s.api.UploadAvatar(r.Context(), sess.Token, "avatar.png", bytes.NewReader(processed)); err != nil {
		if isAuthFailure(err, false) {
			s.expireSession(w, r)
			return
		}
		http.Redirect(w, r, "/profile?error="+url.QueryEscape(err.Error()), http.StatusFound)
		return
	}
	http.Redirect(w, r, "/profile?message=Photo+updated", http.StatusSeeOther)
}

func (s *server) dependentRoutes(w http.ResponseWriter, r *http.Request, sess session.Session) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/profile?error=Invalid+form+submission", http.StatusFound)
		return
	}

	if id := r.PostFormValue("delete_id"); id != "" {
		dependentID, err := strconv.Atoi(id)
		if err != nil {
			http.Redirect(w, r, "/profile?error=Invalid+dependent", http.StatusFound)
			return
		}
		if err := s.api.DeleteDependent(r.Context(), sess.Token, dependentID); err != nil {
			if isAuthFailure(err, false) {
				s.expireSession(w, r)
				return
			}
			http.Redirect(w, r, "/profile?error="+url.QueryEscape(err.Error()), http.StatusFound)
			return
		}
		http.Redirect(w, r, "/profile?message=Dependent+removed", http.StatusSeeOther)
		return
	}

	dep := api.Dependent{
		Name:         r.PostFormValue("name"),
		Relationship: r.PostFormValue("relationship"),
		DateOfBirth:  r.PostFormValue("date_of_birth"),
	}
	if dep.Name == "" {
		http.Redirect(w, r, "/profile?error=Dependent+name+is+required", http.StatusFound)
		return
	}
	if _, err := s.api.AddDependent(r.Context(), sess.Token, dep); err != nil {
		if isAuthFailure(err, false) {
			s.expireSession(w, r)
			return
		}
		http.Redirect(w, r, "/profile?error="+url.QueryEscape(err.Error()), http.StatusFound)
		return
	}
	http.Redirect(w, r, "/profile?message=Dependent+added", http.StatusSeeOther)
}

// citiesFragment backs the country select's change handler with a JSON
// list the page script turns into options.
func (s *server) citiesFragment(w http.ResponseWriter, r *http.Request, sess session.Session) {
	countryID, err := strconv.Atoi(r.URL.Query().Get("country_id"))
	if err != nil {
		http.Error(w, "country_id is required", http.StatusBadRequest)
		return
	}
	cities, err := s.api.Cities(r.Context(), sess.Token, countryID)
	if err != nil {
		status := http.StatusBadGateway
		if isAuthFailure(err, false) {
			status = http.StatusUnauthorized
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(cities)
}
