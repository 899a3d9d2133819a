package webapp

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ldsaas/portal/internal/session"
)

// notificationsRoute backs the pages' five-second poll. GET returns the
// feed as JSON; POST with an id marks one read. Auth failures come back as
// 401 so the page script can send the visitor to login.
func (s *server) notificationsRoute(w http.ResponseWriter, r *http.Request, sess session.Session) {
	switch r.Method {
	case http.MethodGet:
		notifications, err := s.api.Notifications(r.Context(), sess.Token)
		if err != nil {
			status := http.StatusBadGateway
			if isAuthFailure(err, false) {
				status = http.StatusUnauthorized
				s.sessions.Clear(w)
			}
			http.Error(w, err.Error(), status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(notifications)
	case http.MethodPost:
		notificationID, err := strconv.Atoi(r.PostFormValue("id"))
		if err != nil {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}
		if err := s.api.MarkNotificationRead(r.Context(), sess.Token, notificationID); err != nil {
			status := http.StatusBadGateway
			if isAuthFailure(err, false) {
				status = http.StatusUnauthorized
			}
			http.Error(w, err.Error(), status)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
