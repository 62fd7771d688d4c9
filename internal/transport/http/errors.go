package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cimillas/ticketpool/internal/domain"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeInvalidID          = "invalid_id"
	codeInvalidCapacity    = "invalid_capacity"
	codeInvalidRate        = "invalid_rate"
	codeInvalidPrice       = "invalid_price"
	codeInvalidTimeout     = "invalid_timeout"
	codeInvalidRoster      = "invalid_roster"
	codeNoVendors          = "no_vendors"
	codeDuplicateWorker    = "duplicate_worker"
	codeRunNotFound        = "run_not_found"
	codeForbidden          = "forbidden"
	codeTooManyClients     = "too_many_clients"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

var domainErrors = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrInvalidCapacity, http.StatusBadRequest, codeInvalidCapacity},
	{domain.ErrInvalidRate, http.StatusBadRequest, codeInvalidRate},
	{domain.ErrInvalidPrice, http.StatusBadRequest, codeInvalidPrice},
	{domain.ErrInvalidTimeout, http.StatusBadRequest, codeInvalidTimeout},
	{domain.ErrNoVendors, http.StatusBadRequest, codeNoVendors},
	{domain.ErrDuplicateWorker, http.StatusBadRequest, codeDuplicateWorker},
	{domain.ErrInvalidID, http.StatusBadRequest, codeInvalidID},
	{domain.ErrRunNotFound, http.StatusNotFound, codeRunNotFound},
}

// writeDomainError maps service errors to a status and code. Anything
// unrecognised is reported as an internal error without its message.
func writeDomainError(w http.ResponseWriter, err error) {
	for _, de := range domainErrors {
		if errors.Is(err, de.err) {
			writeError(w, de.status, de.code, err.Error())
			return
		}
	}
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
