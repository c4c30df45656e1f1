package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTestTracer installs an in-memory tracer provider and returns the
// span recorder.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
	})

	return sr
}

func spanAttribute(span sdktrace.ReadOnlySpan, key string) (string, bool) {
	for _, attr := range span.Attributes() {
		if string(attr.Key) == key {
			return attr.Value.AsString(), true
		}
	}
	return "", false
}

func findSpan(spans []sdktrace.ReadOnlySpan, name string) sdktrace.ReadOnlySpan {
	for _, span := range spans {
		if span.Name() == name {
			return span
		}
	}
	return nil
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false, ServiceName: "test-service"})...)
	router.GET("/bills", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/bills", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTracingWithConfig_Enabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "test-service"})...)
	router.GET("/bills", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/bills", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	spans := sr.Ended()
	require.GreaterOrEqual(t, len(spans), 1)
	require.NotNil(t, findSpan(spans, "GET /bills"), "HTTP span not found")
}

func TestTracingWithConfig_EnrichesSpan(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(RequestIDKey, "req-12345")
		c.Set(JWTUserIDKey, "user-42")
		c.Set(JWTRoleKey, "MANAGER")
		c.Next()
	})
	router.Use(TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "test-service"})...)
	router.GET("/bills", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/bills", nil)
	router.ServeHTTP(w, req)

	span := findSpan(sr.Ended(), "GET /bills")
	require.NotNil(t, span)

	requestID, ok := spanAttribute(span, "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-12345", requestID)

	userID, ok := spanAttribute(span, "user_id")
	require.True(t, ok)
	assert.Equal(t, "user-42", userID)

	role, ok := spanAttribute(span, "role")
	require.True(t, ok)
	assert.Equal(t, "MANAGER", role)
}

// Auth runs after the tracing pair in the production chain, so identity
// attributes must still land on the span.
func TestTracingWithConfig_EnrichesFromDownstreamAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "test-service"})...)
	router.Use(func(c *gin.Context) {
		c.Set(JWTUserIDKey, "user-7")
		c.Set(JWTRoleKey, "TENANT")
		c.Next()
	})
	router.GET("/bills", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/bills", nil)
	router.ServeHTTP(w, req)

	span := findSpan(sr.Ended(), "GET /bills")
	require.NotNil(t, span)

	userID, ok := spanAttribute(span, "user_id")
	require.True(t, ok)
	assert.Equal(t, "user-7", userID)

	role, ok := spanAttribute(span, "role")
	require.True(t, ok)
	assert.Equal(t, "TENANT", role)
}

func TestTracedRequestID_HeaderFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("X-Request-ID", "header-id")

	assert.Equal(t, "header-id", tracedRequestID(c))
}

func TestTracedRequestID_LongHeaderTruncated(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("X-Request-ID", strings.Repeat("x", MaxRequestIDLength+50))

	got := tracedRequestID(c)
	assert.Len(t, got, MaxRequestIDLength)
}

func TestDefaultTracingConfig(t *testing.T) {
	cfg := DefaultTracingConfig()
	assert.Equal(t, "tenancy-billing", cfg.ServiceName)
	assert.True(t, cfg.Enabled)
}
