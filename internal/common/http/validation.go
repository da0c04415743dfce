package http

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ValidateRequest runs struct tag validation and returns a field -> rule map
// for every violation, or nil when v is valid.
func ValidateRequest(v any) map[string]any {
	err := requestValidator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]any{"request": err.Error()}
	}

	details := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fe.Tag()
	}
	return details
}

// DecodeAndValidate decodes a JSON body into v and validates it, writing the
// error response itself. It reports whether the handler may proceed.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := DecodeJSON(r, v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			WriteErrorEnvelope(w, http.StatusRequestEntityTooLarge, CodeRequestTooLarge, "request body too large", nil, TraceIDFromContext(r.Context()))
			return false
		}
		WriteErrorEnvelope(w, http.StatusBadRequest, CodeInvalidJSON, "invalid json", nil, TraceIDFromContext(r.Context()))
		return false
	}

	if details := ValidateRequest(v); details != nil {
		WriteErrorEnvelope(w, http.StatusBadRequest, CodeValidationFailed, "please fill in all required fields", details, TraceIDFromContext(r.Context()))
		return false
	}
	return true
}
