package handlers

import (
	"encoding/json"
	"errors"
	"geo-registration-service/internal/api/dto"
	"geo-registration-service/internal/domain"
	"geo-registration-service/internal/platform/obs"
	"io"
	"log"
	"math"
	"net/http"
	"strconv"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, dto.ErrorResponse{Error: msg})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allow string) {
	w.Header().Set("Allow", allow)
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

// errorStatus maps a service error onto an HTTP status, a stable error code
// and a client-facing message.
func errorStatus(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrAddressNotFound):
		return http.StatusUnprocessableEntity, "address_not_found", "address could not be found"
	case errors.Is(err, domain.ErrAddressOutOfRange):
		return http.StatusUnprocessableEntity, "address_out_of_range", "address is outside the registration area"
	case errors.Is(err, domain.ErrInvalidDateOfBirth):
		return http.StatusBadRequest, "invalid_date_of_birth", "date of birth is not a valid date"
	case errors.Is(err, domain.ErrMissingField):
		return http.StatusBadRequest, "missing_field", "all fields are required"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user_not_found", "user not found"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, "email_taken", "email is already registered"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusBadGateway, "upstream_unavailable", "could not verify address, try again later"
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated", "sign in required"
	case errors.Is(err, domain.ErrEmailMismatch):
		return http.StatusForbidden, "email_mismatch", "email must be the one you signed in with"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden", "forbidden"
	default:
		return http.StatusInternalServerError, "internal", "internal server error"
	}
}

func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("req_id=%s method=%s path=%s err=%v", obs.RequestID(r.Context()), r.Method, r.URL.Path, err)
	}

	res := dto.ErrorResponse{Error: msg, Code: code}

	var missing *domain.MissingFieldError
	if errors.As(err, &missing) {
		res.Fields = missing.Fields
	}

	var oor *domain.OutOfRangeError
	if errors.As(err, &oor) {
		d := math.Round(oor.DistanceKm*10) / 10
		m := oor.MaxKm
		res.DistanceKm = &d
		res.MaxDistanceKm = &m
	}

	writeJSON(w, r, status, res)
}

// decodeJSON reads exactly one JSON object with no unknown fields into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

// userID parses the {id} path segment; only positive integers are valid.
func userID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
