// Package handlers provides HTTP request handlers for the API endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hotel-pricing-engine/backend/internal/api/middleware"
	"github.com/hotel-pricing-engine/backend/internal/engine"
	"github.com/hotel-pricing-engine/backend/internal/storage/models"
)

var validate = newValidator()

// newValidator reports fields by their json names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// StayRequest is the check-in/check-out pair shared by most requests.
type StayRequest struct {
	CheckIn  string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut string `json:"check_out" validate:"required,datetime=2006-01-02"`
}

func (s StayRequest) dateRange() (models.DateRange, error) {
	return models.ParseDateRange(s.CheckIn, s.CheckOut)
}

func stayFromQuery(r *http.Request) StayRequest {
	q := r.URL.Query()
	return StayRequest{CheckIn: q.Get("check_in"), CheckOut: q.Get("check_out")}
}

// decodeAndValidate reads a JSON body into v and validates it. It writes the
// error response and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
		return false
	}
	return validStruct(w, v)
}

func validStruct(w http.ResponseWriter, v any) bool {
	err := validate.Struct(v)
	if err == nil {
		return true
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, err.Error())
		return false
	}

	details := make(map[string][]string)
	for _, fe := range fieldErrs {
		details[fe.Field()] = append(details[fe.Field()], fieldMessage(fe))
	}
	middleware.WriteErrorWithDetails(w, http.StatusBadRequest, middleware.ErrValidation, "Request validation failed", details)
	return false
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "required_without":
		return "is required when " + fe.Param() + " is empty"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// queryInt parses an optional integer parameter. Missing parameters return def.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func queryFloat(r *http.Request, name string) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func writeFieldError(w http.ResponseWriter, field, msg string) {
	middleware.WriteErrorWithDetails(w, http.StatusBadRequest, middleware.ErrValidation, "Request validation failed",
		map[string][]string{field: {msg}})
}

// writeEngineError maps engine errors onto the JSON error envelope.
func writeEngineError(w http.ResponseWriter, op string, err error) {
	if inputErr := engine.AsInputError(err); inputErr != nil {
		middleware.WriteErrorWithDetails(w, http.StatusBadRequest, middleware.ErrValidation, "Request validation failed", inputErr.Fields())
		return
	}

	switch {
	case errors.Is(err, engine.ErrInvalidInput):
		middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, err.Error())
	case errors.Is(err, engine.ErrRoomNotFound):
		middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Room not found")
	case errors.Is(err, engine.ErrServiceUnavailable), errors.Is(err, context.DeadlineExceeded):
		log.Printf("Failed to %s: %v", op, err)
		middleware.WriteError(w, http.StatusServiceUnavailable, middleware.ErrServiceUnavailable, "A data source is temporarily unavailable")
	default:
		log.Printf("Failed to %s: %v", op, err)
		middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to "+op)
	}
}
