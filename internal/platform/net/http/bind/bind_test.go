package bind

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "zeitgeist/internal/platform/errors"
)

type qualifyBody struct {
	ID      string   `json:"id" validate:"required"`
	Signals []string `json:"signals" validate:"min=1"`
}

func TestParseJSONHappyPath(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/v1/qualify",
		strings.NewReader(`{"id":"m1","signals":["s1","s2"]}`))
	got, err := ParseJSON[qualifyBody](r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "m1" || len(got.Signals) != 2 {
		t.Fatalf("decode wrong: %+v", got)
	}
}

func TestParseJSONValidationFailure(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/v1/qualify",
		strings.NewReader(`{"id":"","signals":[]}`))
	_, err := ParseJSON[qualifyBody](r)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("wrong code: %v", err)
	}
}

func TestParseJSONRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/v1/qualify",
		strings.NewReader(`{"id":"m1","signals":["s"],"bogus":true}`))
	_, err := ParseJSON[qualifyBody](r)
	if err == nil {
		t.Fatalf("unknown fields must be rejected")
	}
	if !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("wrong code: %v", err)
	}
}

func TestParseJSONEmptyBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/v1/qualify", strings.NewReader(""))
	_, err := ParseJSON[qualifyBody](r)
	if err == nil {
		t.Fatalf("empty POST body must error")
	}
	if !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("wrong code: %v", err)
	}
}
