package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/erinpaul2002/careops-backend/services/idempotency"
)

func newIdempotentRouter(executions *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/public/bookings",
		TenantMiddleware(),
		IdempotencyMiddleware(idempotency.NewMemoryLedger()),
		func(c *gin.Context) {
			*executions++
			c.JSON(http.StatusCreated, gin.H{"id": "b1"})
		})
	return r
}

func doPost(r *gin.Engine, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/public/bookings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(TenantHeader, "t1")
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotencyMiddlewareReplay(t *testing.T) {
	executions := 0
	r := newIdempotentRouter(&executions)

	first := doPost(r, "k1", `{"service_id":"svc1"}`)
	if first.Code != http.StatusCreated {
		t.Fatalf("first request: %d %s", first.Code, first.Body.String())
	}

	// Identical retry replays the snapshot without re-executing the handler.
	second := doPost(r, "k1", `{"service_id":"svc1"}`)
	if second.Code != http.StatusCreated {
		t.Fatalf("replay: %d", second.Code)
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("replay body differs: %q vs %q", second.Body.String(), first.Body.String())
	}
	if executions != 1 {
		t.Fatalf("handler ran %d times", executions)
	}
}

func TestIdempotencyMiddlewareKeyReuseConflict(t *testing.T) {
	executions := 0
	r := newIdempotentRouter(&executions)

	doPost(r, "k1", `{"service_id":"svc1"}`)
	reused := doPost(r, "k1", `{"service_id":"svc2"}`)
	if reused.Code != http.StatusConflict {
		t.Fatalf("key reuse: %d", reused.Code)
	}
	if executions != 1 {
		t.Fatalf("handler ran %d times", executions)
	}
}

func TestIdempotencyMiddlewareRequiresKey(t *testing.T) {
	executions := 0
	r := newIdempotentRouter(&executions)
	w := doPost(r, "", `{"service_id":"svc1"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing key: %d", w.Code)
	}
	if executions != 0 {
		t.Fatal("handler ran without a key")
	}
}

func TestIdempotencyMiddlewareSeparatesResources(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var handled []string
	r := gin.New()
	r.POST("/api/public/forms/:id/submit",
		TenantMiddleware(),
		IdempotencyMiddleware(idempotency.NewMemoryLedger()),
		func(c *gin.Context) {
			handled = append(handled, c.Param("id"))
			c.JSON(http.StatusOK, gin.H{"form": c.Param("id")})
		})

	submit := func(formID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/public/forms/"+formID+"/submit",
			strings.NewReader(`{"fields":{"q1":"yes"}}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(TenantHeader, "t1")
		req.Header.Set(IdempotencyHeader, "k1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	// The same key and body against two different forms are two distinct
	// mutations; neither may replay the other.
	first := submit("AAA")
	second := submit("BBB")
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("codes: %d %d", first.Code, second.Code)
	}
	if len(handled) != 2 || handled[0] != "AAA" || handled[1] != "BBB" {
		t.Fatalf("handled: %v", handled)
	}
	if !strings.Contains(second.Body.String(), "BBB") {
		t.Fatalf("second response replayed: %s", second.Body.String())
	}

	// Retrying one of them still replays.
	retry := submit("AAA")
	if len(handled) != 2 {
		t.Fatalf("retry re-executed: %v", handled)
	}
	if retry.Body.String() != first.Body.String() {
		t.Fatalf("retry body differs: %q vs %q", retry.Body.String(), first.Body.String())
	}
}

func TestIdempotencyMiddlewareDistinctKeys(t *testing.T) {
	executions := 0
	r := newIdempotentRouter(&executions)
	doPost(r, "k1", `{"service_id":"svc1"}`)
	doPost(r, "k2", `{"service_id":"svc1"}`)
	if executions != 2 {
		t.Fatalf("handler ran %d times", executions)
	}
}

func TestTenantMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", TenantMiddleware(), func(c *gin.Context) {
		c.String(http.StatusOK, TenantID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing tenant: %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(TenantHeader, "t1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "t1" {
		t.Fatalf("got %d %q", w.Code, w.Body.String())
	}
}
