package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// AuthError marks a 401 response. Callers clear the local session and send
// the user back to the login page when they see one.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "authentication required"
	}
	return e.Message
}

// StatusError is any other non-2xx response. Message is suitable for showing
// to the user directly.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string { return e.Message }

// classify turns a non-2xx status plus body into a typed error. The message
// is the service's "detail" field when present, otherwise the raw body
// truncated to 100 characters, otherwise a generic status line.
func classify(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	msg := messageFromBody(body)
	if msg == "" {
		msg = fmt.Sprintf("Request failed (%d)", status)
	}
	if status == 401 {
		return &AuthError{Message: msg}
	}
	return &StatusError{Status: status, Message: msg}
}

func messageFromBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return ""
	}
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(payload.Detail, &detail); err == nil {
			return detail
		}
		// Structured detail (validation errors) is passed through verbatim.
		return string(payload.Detail)
	}
	return "Error: " + truncate(text, 100)
}

// truncate keeps at most max bytes without splitting a UTF-8 rune.
func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
