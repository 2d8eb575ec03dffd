package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/quickorder/internal/order"
	"github.com/vasiliy-maslov/quickorder/internal/storage"
	"github.com/vasiliy-maslov/quickorder/internal/storage/gateway"
)

// DataSourceHeader names the backend that served a response.
const DataSourceHeader = "X-Data-Source"

type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// respondWithError sends {"error": message}.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON marshals payload and writes it with code.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondWithResult writes the value and marks which backend served it.
func respondWithResult[T any](w http.ResponseWriter, code int, res gateway.Result[T]) {
	if res.Source != "" {
		w.Header().Set(DataSourceHeader, string(res.Source))
	}
	respondWithJSON(w, code, res.Value)
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, storage.ErrFatal):
		return http.StatusInternalServerError
	case errors.Is(err, storage.ErrValidation):
		return http.StatusBadRequest
	case storage.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, order.ErrCannotAdvance):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondWithServiceError logs err and answers with its mapped status.
// Validation errors are echoed to the client, anything else gets message.
func respondWithServiceError(w http.ResponseWriter, err error, message string) {
	code := mapErrorToStatusCode(err)

	var vErr *storage.ValidationError
	switch {
	case code == http.StatusBadRequest && errors.As(err, &vErr):
		log.Warn().Err(err).Msg(message)
		respondWithError(w, code, vErr.Error())
	case code == http.StatusNotFound:
		log.Warn().Err(err).Msg(message)
		respondWithError(w, code, "Not found")
	case code == http.StatusConflict:
		log.Warn().Err(err).Msg(message)
		respondWithError(w, code, err.Error())
	default:
		log.Error().Err(err).Msg(message)
		respondWithError(w, code, message)
	}
}

// decodeAndValidate reads a JSON body into dst and runs the struct
// validator. It writes the 400 response itself and reports false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		log.Warn().Err(err).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request payload: %v", err))
		return false
	}

	if err := v.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
				Error:   "Validation failed",
				Details: formatValidationErrors(validationErrors),
			})
		} else {
			log.Error().Err(err).Type("validation_error_type", err).Msg("Unexpected error type during validation")
			respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		}
		return false
	}
	return true
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

// formatValidationErrors keys each failure by its path below the request
// struct, e.g. "items[0].quantity".
func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}

		switch fe.Tag() {
		case "required":
			details[field] = "is required"
		case "min":
			details[field] = "must be at least " + fe.Param()
		case "oneof":
			details[field] = "must be one of: " + fe.Param()
		default:
			details[field] = "failed on " + fe.Tag()
		}
	}
	return details
}
