package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("GET", "/test", nil)
	handler(c)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return resp
}

func TestSuccess(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Success(c, "Fetched", map[string]string{"name": "test"})
	})

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	resp := parseResponse(t, w)
	if resp["status"] != StatusSuccess {
		t.Errorf("expected status %q, got %v", StatusSuccess, resp["status"])
	}
	if resp["message"] != "Fetched" {
		t.Errorf("expected message 'Fetched', got %v", resp["message"])
	}
	if _, ok := resp["data"]; !ok {
		t.Error("expected data field")
	}
}

func TestSuccess_NilDataOmitted(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Success(c, "Investment added", nil)
	})

	resp := parseResponse(t, w)
	if _, ok := resp["data"]; ok {
		t.Error("data should be omitted when nil")
	}
}

func TestCreated(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Created(c, "Created", map[string]int{"id": 1})
	})

	if w.Code != http.StatusCreated {
		t.Errorf("expected status %d, got %d", http.StatusCreated, w.Code)
	}
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	r := gin.New()
	r.DELETE("/x", NoContent)
	req, _ := http.NewRequest("DELETE", "/x", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", w.Body.String())
	}
}

func TestConvenienceHelpers(t *testing.T) {
	tests := []struct {
		name   string
		fn     func(*gin.Context, string)
		status int
	}{
		{"bad request", BadRequest, http.StatusBadRequest},
		{"unauthorized", Unauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden, http.StatusForbidden},
		{"not found", NotFound, http.StatusNotFound},
		{"too many", TooManyRequests, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(func(c *gin.Context) { tt.fn(c, "msg") })
			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}
			resp := parseResponse(t, w)
			if resp["status"] != StatusError {
				t.Errorf("expected error envelope, got %v", resp["status"])
			}
			if resp["message"] != "msg" {
				t.Errorf("expected message 'msg', got %v", resp["message"])
			}
		})
	}
}

func TestError_WithAppError(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Error(c, NewNotFound("Startup not found"))
	})

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
	resp := parseResponse(t, w)
	if resp["message"] != "Startup not found" {
		t.Errorf("expected message 'Startup not found', got %v", resp["message"])
	}
}

func TestError_WithWrappedAppError(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Error(c, fmt.Errorf("context: %w", NewBadRequest("Connection is not active")))
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestError_WithGenericErrorHidesCause(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Error(c, errors.New("dial tcp 10.0.0.3:5432: connection refused"))
	})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
	resp := parseResponse(t, w)
	if resp["message"] != "Internal server error" {
		t.Errorf("expected generic message, got %v", resp["message"])
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(NewNotFound("x")) {
		t.Error("expected NotFound to be detected")
	}
	if IsNotFound(NewBadRequest("x")) {
		t.Error("BadRequest is not NotFound")
	}
	if IsNotFound(errors.New("x")) {
		t.Error("plain error is not NotFound")
	}
}

func TestAppError_ErrorInterface(t *testing.T) {
	err := NewBadGateway("Accounting service unavailable")
	if err.Error() != "Accounting service unavailable" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if err.HTTPStatus != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", err.HTTPStatus)
	}
}
