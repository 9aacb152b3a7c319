// Tickersync - Live News Ticker Synchronization Engine
// Copyright 2026 Newslive contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslive/tickersync

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/newslive/tickersync/internal/logging"
)

// APIResponse is the response wrapper used by every JSON endpoint.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError carries a machine-readable code and a human-readable message.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(APIResponse{Success: status < 400, Data: data}); err != nil {
		logging.Error().Err(err).Msg("failed to encode API response")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := APIResponse{Error: &APIError{Code: code, Message: message}}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("failed to encode API error response")
	}
}
