package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/atinyakov/JobTracker/internal/apperr"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	// Detail is a human-readable message.
	Detail string `json:"detail"`
	// Code is the stable machine-readable category.
	Code apperr.Code `json:"code"`
	// Field names the offending input field, when known.
	Field string `json:"field,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names instead of Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(code apperr.Code) int {
	switch code {
	case apperr.CodeDuplicateKey, apperr.CodeValidation:
		return http.StatusBadRequest
	case apperr.CodeInvalidCredentials, apperr.CodeInvalidToken:
		return http.StatusUnauthorized
	case apperr.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err onto its HTTP status and writes an ErrorResponse.
// Internal errors are logged and replaced by a generic message.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	code := apperr.CodeOf(err)
	status := statusFor(code)

	resp := ErrorResponse{Detail: apperr.MessageOf(err), Code: code}
	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		resp.Field = appErr.Field
	}

	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	if status == http.StatusInternalServerError && log != nil {
		log.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, resp)
}

// decodeJSON reads a JSON body into dst and validates it. Every failure is
// an apperr validation error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &apperr.AppError{Code: apperr.CodeValidation, Message: "invalid request body", Cause: err}
	}
	return validateStruct(dst)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &apperr.AppError{
			Code:    apperr.CodeValidation,
			Message: fmt.Sprintf("%s: failed %q validation", fe.Field(), fe.Tag()),
			Field:   fe.Field(),
			Cause:   err,
		}
	}
	return &apperr.AppError{Code: apperr.CodeValidation, Message: "invalid request", Cause: err}
}
