package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/abgdnv/productapi/pkg/apperrors"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/form/v4"
	"github.com/go-playground/validator/v10"
)

// Location is the part of the request a schema applies to.
type Location int

const (
	Body Location = iota
	Query
	Params
)

func (l Location) String() string {
	switch l {
	case Body:
		return "body"
	case Query:
		return "query"
	case Params:
		return "params"
	default:
		return "unknown"
	}
}

const maxBodyBytes = 1 << 20

// SchemaValidator decodes request payloads into schema structs and validates them.
// Field names in violation messages are taken from the json or form tags.
type SchemaValidator struct {
	validate *validator.Validate
	decoder  *form.Decoder
	logger   *slog.Logger
}

// NewSchemaValidator creates a SchemaValidator.
func NewSchemaValidator(logger *slog.Logger) *SchemaValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	return &SchemaValidator{
		validate: v,
		decoder:  form.NewDecoder(),
		logger:   logger.With("component", "validator"),
	}
}

// Validate returns a middleware that decodes the given location into T and validates it.
// On failure the request is answered with a validation error and next is never called.
// On success the decoded value is available to next through Payload[T].
func Validate[T any](sv *SchemaValidator, loc Location) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var payload T
			if err := sv.decode(w, r, loc, &payload); err != nil {
				RespondError(w, r, sv.logger, err)
				return
			}
			if err := sv.Struct(payload); err != nil {
				RespondError(w, r, sv.logger, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withPayload(r.Context(), loc, payload)))
		})
	}
}

// Struct validates s and converts violations into a validation error.
func (sv *SchemaValidator) Struct(s any) error {
	err := sv.validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldErr := range validationErrors {
			details = append(details, violationMessage(fieldErr))
		}
		return apperrors.NewValidation("Validation failed", details...)
	}
	return fmt.Errorf("failed to validate payload: %w", err)
}

func (sv *SchemaValidator) decode(w http.ResponseWriter, r *http.Request, loc Location, dst any) error {
	switch loc {
	case Body:
		return decodeBody(w, r, dst)
	case Query:
		return sv.decodeValues(r.URL.Query(), loc, dst)
	case Params:
		return sv.decodeValues(routeParams(r), loc, dst)
	default:
		return fmt.Errorf("unsupported payload location %d", loc)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	if err == nil {
		if dec.Decode(&struct{}{}) != io.EOF {
			return apperrors.NewValidation("Invalid request body", "request body must contain a single JSON object")
		}
		return nil
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return apperrors.NewValidation("Invalid request body", "request body is required")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return apperrors.NewValidation("Invalid request body", "request body must be valid JSON")
	case errors.As(err, &typeErr):
		return apperrors.NewValidation("Invalid request body", fmt.Sprintf("%s must be of type %s", typeErr.Field, jsonTypeName(typeErr.Type)))
	case errors.As(err, &maxBytesErr):
		return apperrors.NewValidation("Invalid request body", fmt.Sprintf("request body must not exceed %d bytes", maxBytesErr.Limit))
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.TrimPrefix(err.Error(), "json: unknown field ")
		return apperrors.NewValidation("Invalid request body", fmt.Sprintf("%s is not allowed", field))
	default:
		return apperrors.NewValidation("Invalid request body", err.Error())
	}
}

func (sv *SchemaValidator) decodeValues(values url.Values, loc Location, dst any) error {
	var repeated []string
	for field, vals := range values {
		if len(vals) > 1 {
			repeated = append(repeated, fmt.Sprintf("%s must be provided only once", field))
		}
	}
	if len(repeated) > 0 {
		sort.Strings(repeated)
		return apperrors.NewValidation(fmt.Sprintf("Invalid request %s", loc), repeated...)
	}

	err := sv.decoder.Decode(dst, values)
	if err == nil {
		return nil
	}
	var decodeErrors form.DecodeErrors
	if errors.As(err, &decodeErrors) {
		details := make([]string, 0, len(decodeErrors))
		for field := range decodeErrors {
			details = append(details, fmt.Sprintf("%s has an invalid value", field))
		}
		sort.Strings(details)
		return apperrors.NewValidation(fmt.Sprintf("Invalid request %s", loc), details...)
	}
	return fmt.Errorf("failed to decode request %s: %w", loc, err)
}

// routeParams collects chi URL parameters into url.Values.
func routeParams(r *http.Request) url.Values {
	values := url.Values{}
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return values
	}
	for i, key := range rctx.URLParams.Keys {
		if key == "*" || i >= len(rctx.URLParams.Values) {
			continue
		}
		values.Set(key, rctx.URLParams.Values[i])
	}
	return values
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

func violationMessage(fe validator.FieldError) string {
	field := fe.Field()
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "url", "http_url", "uri":
		return fmt.Sprintf("%s must be a valid uri", field)
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a valid GUID", field)
	default:
		return fmt.Sprintf("%s failed on rule: %s", field, fe.Tag())
	}
}

func jsonTypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.String:
		return "string"
	default:
		return t.Kind().String()
	}
}
