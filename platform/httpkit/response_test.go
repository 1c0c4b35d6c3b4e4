package httpkit

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/apperr"
)

func handle(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	if !HandleError(c, err) {
		t.Fatalf("HandleError(%v) = false, want handled", err)
	}
	return w
}

func TestHandleErrorTypedKindMapsStatusAndMessage(t *testing.T) {
	w := handle(t, apperr.New(apperr.KindUnavailable, "Service temporarily unavailable"))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
	if !strings.Contains(w.Body.String(), "Service temporarily unavailable") {
		t.Fatalf("body = %q, want the typed message", w.Body.String())
	}
}

func TestHandleErrorWrappedTypedErrorStillMapped(t *testing.T) {
	inner := apperr.Wrap(apperr.KindNotFound, "Not found", errors.New("no rows"))
	w := handle(t, fmt.Errorf("handler: %w", inner))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// Untyped errors must never leak their text to the client.
func TestHandleErrorUntypedIsOpaque500(t *testing.T) {
	w := handle(t, errors.New("dial tcp 10.0.0.5:5432: connect: connection refused"))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	body := w.Body.String()
	if strings.Contains(body, "refused") || strings.Contains(body, "5432") {
		t.Fatalf("body leaks internal detail: %q", body)
	}
	if !strings.Contains(body, msgInternalError) {
		t.Fatalf("body = %q, want the canned message", body)
	}
}

func TestHandleErrorNilNotHandled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	if HandleError(c, nil) {
		t.Fatal("nil error must not be handled")
	}
}
