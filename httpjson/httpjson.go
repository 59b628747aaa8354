// Package httpjson holds the JSON request/response helpers shared by every handler.
package httpjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"go.uber.org/zap"

	"github.com/user/cookbook-go/apperror"
	"github.com/user/cookbook-go/logging"
)

// DefaultMaxBody caps request bodies that do not ask for a different limit.
const DefaultMaxBody = 1 << 20

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the process-wide validator. Field names in errors use json tags.
// Besides the built-in tags it knows notblank (not empty after trimming spaces) and
// nefieldfold=Field (differs from Field ignoring case and surrounding spaces).
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("notblank", validators.NotBlank)
		_ = validate.RegisterValidation("nefieldfold", notEqualFieldFold)
	})
	return validate
}

func notEqualFieldFold(fl validator.FieldLevel) bool {
	other, kind, _, ok := fl.GetStructFieldOKAdvanced2(fl.Parent(), fl.Param())
	if !ok || kind != reflect.String || fl.Field().Kind() != reflect.String {
		return true
	}
	return !strings.EqualFold(strings.TrimSpace(fl.Field().String()), strings.TrimSpace(other.String()))
}

// Validate runs struct validation and converts failures into a ValidationError.
func Validate(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fieldPath(fe))
		}
		return apperror.NewValidationError("invalid request: "+strings.Join(fields, ", "), fields, err)
	}
	return apperror.NewBadRequestError("invalid request", err)
}

// fieldPath drops the top-level struct name: "CreateRecipeRequest.ingredients[0].name" -> "ingredients[0].name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// Decode reads a JSON body of at most DefaultMaxBody bytes into dst and validates it.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	return DecodeLimit(w, r, dst, DefaultMaxBody)
}

// DecodeLimit is Decode with a caller-chosen size limit.
func DecodeLimit(w http.ResponseWriter, r *http.Request, dst any, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperror.NewBadRequestError(fmt.Sprintf("request body exceeds %d bytes", maxBytes), err)
		case errors.Is(err, io.EOF):
			return apperror.NewBadRequestError("request body is empty", err)
		default:
			return apperror.NewBadRequestError("invalid request body: "+err.Error(), err)
		}
	}
	return Validate(dst)
}

// WriteJSON serializes data with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers are already out; nothing more can be reported to the client
		return
	}
}

// WriteError converts any error into the standard JSON error body.
// Errors that are not *apperror.AppError become 500s; 5xx responses are logged with their cause.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("an unexpected error occurred", err)
	}
	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error(r.Context(), "request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	WriteJSON(w, status, appErr.ToResponse())
}

// NoContent writes a 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
