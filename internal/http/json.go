package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	domainauth "github.com/noe-create/medidhub-cpv-sub001/internal/domain/auth"
	apperrors "github.com/noe-create/medidhub-cpv-sub001/internal/errors"
	"github.com/noe-create/medidhub-cpv-sub001/internal/service"
)

// DecodeJSON decodes JSON from the request body into the destination and handles errors.
// Returns true if successful, false if there was an error (error response already written).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
	Field   string
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// WriteError writes a JSON error response using ErrorParams.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	WriteJSON(w, p.Code, errorBody{Error: p.ErrCode, Message: p.Err.Error(), Field: p.Field})
}

// WriteServiceError maps gate, login and AppError failures to a JSON error.
// Unclassified errors become a generic 500 so internals do not leak.
func WriteServiceError(w http.ResponseWriter, err error) {
	p := classifyError(err)
	if p.Code == http.StatusInternalServerError {
		p.Err = errors.New(http.StatusText(http.StatusInternalServerError))
	}
	WriteError(w, p)
}

func classifyError(err error) ErrorParams {
	switch {
	case errors.Is(err, domainauth.ErrNotAuthenticated):
		return ErrorParams{Code: http.StatusUnauthorized, ErrCode: "authentication_required", Err: err}
	case errors.Is(err, domainauth.ErrForbidden):
		return ErrorParams{Code: http.StatusForbidden, ErrCode: "insufficient_permissions", Err: domainauth.ErrForbidden}
	case errors.Is(err, service.ErrInvalidCredentials):
		return ErrorParams{Code: http.StatusUnauthorized, ErrCode: "invalid_credentials", Err: err}
	case errors.Is(err, service.ErrAccountDisabled), errors.Is(err, service.ErrUnknownIdentity):
		return ErrorParams{Code: http.StatusForbidden, ErrCode: "account_unavailable", Err: err}
	case errors.Is(err, service.ErrTooManyAttempts):
		return ErrorParams{Code: http.StatusTooManyRequests, ErrCode: "too_many_attempts", Err: err}
	}
	if code := apperrors.GetCode(err); code != "" {
		return ErrorParams{
			Code:    apperrors.HTTPStatus(err),
			ErrCode: string(code),
			Err:     err,
			Field:   apperrors.GetField(err),
		}
	}
	return ErrorParams{Code: http.StatusInternalServerError, ErrCode: "internal", Err: err}
}
