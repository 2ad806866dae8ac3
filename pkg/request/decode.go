// Package request decodes and validates JSON request bodies.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes caps every decoded body.
const MaxBodyBytes = 1 << 20

var (
	ErrEmptyBody = errors.New("empty request body")

	validate = validator.New()
)

// DecodeJSON reads exactly one JSON object into v, rejecting unknown fields, and
// then runs the struct's `validate` tags.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return fmt.Errorf("invalid json: %w", err)
	}
	if dec.More() {
		return errors.New("invalid json: body must contain a single object")
	}

	if err := validate.Struct(v); err != nil {
		return describe(err)
	}
	return nil
}

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("invalid request: %s", strings.Join(msgs, "; "))
}
