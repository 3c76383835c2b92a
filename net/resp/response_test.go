package resp

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	return body
}

func TestSuccessWithData(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, map[string]any{"id": "abc123"})

	if rec.Code != 200 {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["id"] != "abc123" {
		t.Errorf("id = %v, want abc123", body["id"])
	}
}

func TestSuccessWithMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, "done")

	body := decodeBody(t, rec)
	if body["message"] != "done" {
		t.Errorf("message = %v, want done", body["message"])
	}
}

func TestWithStatusCode(t *testing.T) {
	rec := httptest.NewRecorder()
	WithStatusCode(rec, 201, map[string]any{"id": "abc123"})

	if rec.Code != 201 {
		t.Errorf("status = %d, want 201", rec.Code)
	}
}

func TestFail(t *testing.T) {
	tests := []struct {
		name       string
		exception  *Exception
		wantStatus int
		wantMsg    string
	}{
		{"not found", NotFound("todo not found"), 404, "todo not found"},
		{"unauthorized", UnAuthorized("missing authorization header"), 401, "missing authorization header"},
		{"conflict", Conflict("already archived"), 409, "already archived"},
		{"unprocessable", UnprocessableEntity("validation failed"), 422, "validation failed"},
		{"internal", InternalServer(""), 500, "internal server error"},
		{"nil exception", nil, 400, "invalid request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Fail(rec, tt.exception)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			body := decodeBody(t, rec)
			if body["message"] != tt.wantMsg {
				t.Errorf("message = %v, want %v", body["message"], tt.wantMsg)
			}
		})
	}
}

func TestFailWithFieldErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, UnprocessableEntity("validation failed", map[string]string{"title": "required"}))

	body := decodeBody(t, rec)
	errs, ok := body["errors"].(map[string]any)
	if !ok {
		t.Fatalf("errors field missing or wrong type: %v", body["errors"])
	}
	if errs["title"] != "required" {
		t.Errorf("errors.title = %v, want required", errs["title"])
	}
}

func TestContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, "ok")

	if got := rec.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
}
