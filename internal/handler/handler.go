// Package handler provides HTTP request handlers.
package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/cozysnippet/api/internal/middleware"
	"github.com/cozysnippet/api/internal/response"
	"github.com/cozysnippet/api/internal/service"
)

// NotFound handles unmatched routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	response.Fail(w, response.NotFound(response.CodeRouteNotFound, "The requested route was not found"))
}

// MethodNotAllowed handles known routes called with an unsupported method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	response.Fail(w, response.New(response.CodeMethodNotAllowed,
		fmt.Sprintf("Method %s is not allowed for this route", r.Method), nil))
}

// bodyValidator checks the fields that did decode when others have the
// wrong JSON type.
var bodyValidator = service.NewValidator()

// decodeJSON reads the request body into dst. An empty body leaves dst
// untouched. Fields of the wrong JSON type are reported as a
// *service.ValidationError together with every violation of the fields
// that did decode; anything else that is not a JSON object is
// INVALID_BODY_FORMAT.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		if middleware.IsBodyTooLarge(err) {
			return middleware.PayloadTooLarge()
		}
		return response.InvalidBody()
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return typeViolations(body, dst, typeErr)
		}
		return response.InvalidBody()
	}
	return nil
}

// typeViolations merges the type errors of every mistyped field of dst
// with the validate-tag violations of the rest. A mistyped field is left
// nil by the decoder, so its own tag violations are dropped.
func typeViolations(body []byte, dst any, first *json.UnmarshalTypeError) error {
	firstOnly := service.NewValidationError("Invalid input data", typeFieldError(first.Field, first.Type, first.Value))

	t := reflect.TypeOf(dst)
	if t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return firstOnly
	}
	t = t.Elem()

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return firstOnly
	}

	names := make([]string, 0, t.NumField())
	mistyped := make(map[string]service.FieldError)
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name := jsonFieldName(sf)
		if name == "" {
			continue
		}
		names = append(names, name)

		value, ok := lookupKey(raw, name)
		if !ok {
			continue
		}
		var typeErr *json.UnmarshalTypeError
		if err := json.Unmarshal(value, reflect.New(sf.Type).Interface()); errors.As(err, &typeErr) {
			mistyped[name] = typeFieldError(name, sf.Type, typeErr.Value)
		}
	}
	if len(mistyped) == 0 {
		return firstOnly
	}

	violations := make(map[string][]service.FieldError)
	if err := bodyValidator.Validate(dst, firstOnly.Message); err != nil {
		var verr *service.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		for _, f := range verr.Fields {
			violations[f.Field] = append(violations[f.Field], f)
		}
	}

	fields := make([]service.FieldError, 0, len(names))
	for _, name := range names {
		if fe, ok := mistyped[name]; ok {
			fields = append(fields, fe)
			continue
		}
		fields = append(fields, violations[name]...)
	}
	return service.NewValidationError(firstOnly.Message, fields...)
}

func typeFieldError(field string, t reflect.Type, received string) service.FieldError {
	return service.FieldError{
		Field:   field,
		Message: fmt.Sprintf("Expected %s, received %s", jsonTypeName(t), received),
	}
}

func jsonFieldName(sf reflect.StructField) string {
	if !sf.IsExported() {
		return ""
	}
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return sf.Name
	}
	return name
}

// lookupKey matches object keys the way encoding/json does: exact first,
// then case-insensitively.
func lookupKey(raw map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	if v, ok := raw[name]; ok {
		return v, true
	}
	for k, v := range raw {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

// jsonTypeName names the JSON type a Go type decodes from.
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
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}

// validationFailure converts a service validation error to its envelope form.
func validationFailure(verr *service.ValidationError) *response.Error {
	fields := make([]response.FieldError, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, response.FieldError{Field: f.Field, Message: f.Message})
	}
	return response.Validation(verr.Message, fields)
}
