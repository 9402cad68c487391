// Package respond writes JSON HTTP responses in a uniform envelope.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/wb-go/wbf/zlog"
)

type success struct {
	Result any `json:"result"`
}

type failure struct {
	Error string `json:"error"`
}

// JSON writes v as JSON with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to encode response")
	}
}

// OK writes a 200 response with v as the result.
func OK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, success{Result: v})
}

// Created writes a 201 response with v as the result.
func Created(w http.ResponseWriter, v any) {
	JSON(w, http.StatusCreated, success{Result: v})
}

// Fail writes an error response.
func Fail(w http.ResponseWriter, status int, err error) {
	JSON(w, status, failure{Error: err.Error()})
}
