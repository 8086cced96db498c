package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/veracity-backend/internal/platform/apierr"
)

func TestRespondAppErrorMapsTypedErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", apierr.Validation("confidence out of range"), http.StatusBadRequest, "validation_error"},
		{"permission", apierr.Permission("daily limit reached"), http.StatusForbidden, "permission_error"},
		{"immutability", apierr.Immutability("level-0 target"), http.StatusConflict, "immutability_error"},
		{"state", apierr.State("voting closed"), http.StatusConflict, "state_error"},
		{"not found", apierr.NotFound("no such challenge"), http.StatusNotFound, "not_found"},
		{"wrapped", fmt.Errorf("outer: %w", apierr.NotFound("inner")), http.StatusNotFound, "not_found"},
		{"untyped", fmt.Errorf("db down"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			RespondAppError(c, tt.err)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var envelope ErrorEnvelope
			if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
				t.Fatalf("unmarshal body: %v", err)
			}
			if envelope.Error.Code != tt.wantCode {
				t.Fatalf("code = %q, want %q", envelope.Error.Code, tt.wantCode)
			}
			if envelope.Error.Message == "" {
				t.Fatal("message should not be empty")
			}
		})
	}
}

func TestTargetFromParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/t/:kind/:id", func(c *gin.Context) {
		ref, ok := targetFromParams(c)
		if !ok {
			return
		}
		RespondOK(c, gin.H{"key": ref.Key()})
	})

	send := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(w, req)
		return w
	}

	if w := send("/t/node/0a570f1e-9f0f-4f9e-8f59-3f7a3c2a1b00"); w.Code != http.StatusOK {
		t.Fatalf("valid target rejected: %d %s", w.Code, w.Body.String())
	}
	if w := send("/t/vertex/0a570f1e-9f0f-4f9e-8f59-3f7a3c2a1b00"); w.Code != http.StatusBadRequest {
		t.Fatalf("bad kind should 400, got %d", w.Code)
	}
	if w := send("/t/node/not-a-uuid"); w.Code != http.StatusBadRequest {
		t.Fatalf("bad uuid should 400, got %d", w.Code)
	}
}
