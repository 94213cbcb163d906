// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render writes JSON API responses. Every error response uses the
// same envelope: {"error": {"kind": "...", "message": "..."}}.
package render

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Error kinds that originate in the HTTP layer rather than the store.
const (
	KindUnauthorized     = "unauthorized"
	KindRateLimited      = "rate_limited"
	KindUnavailable      = "unavailable"
	KindMethodNotAllowed = "method_not_allowed"
)

// ErrorBody is the payload inside the error envelope.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// JSON writes v as the response body with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("encode response", "error", err)
		Error(w, http.StatusInternalServerError, "internal", "Internal server error.")
		return
	}
	Raw(w, status, body)
}

// Raw writes an already encoded JSON body.
func Raw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		slog.Debug("write response", "error", err)
	}
}

// Error writes the error envelope.
func Error(w http.ResponseWriter, status int, kind, message string) {
	body, _ := json.Marshal(errorEnvelope{Error: ErrorBody{Kind: kind, Message: message}})
	Raw(w, status, body)
}

// NoContent answers 204 with no body.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
