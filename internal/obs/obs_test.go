package obs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

func TestMiddleware_RecordsServerSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("request_id", "req-1"); c.Next() })
	r.Use(Middleware(tp, "request_id"))
	r.GET("/birthdays/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/birthdays/7", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	spans := sr.Ended()
	if len(spans) != 2 {
		t.Fatalf("ended spans = %d", len(spans))
	}
	if spans[0].Name() != "GET /birthdays/:id" {
		t.Fatalf("span name = %q", spans[0].Name())
	}
	var sawRoute, sawReqID bool
	for _, kv := range spans[0].Attributes() {
		if kv.Key == semconv.HTTPRouteKey && kv.Value.AsString() == "/birthdays/:id" {
			sawRoute = true
		}
		if kv.Key == "request.id" && kv.Value.AsString() == "req-1" {
			sawReqID = true
		}
	}
	if !sawRoute || !sawReqID {
		t.Fatalf("attributes = %v", spans[0].Attributes())
	}
	if spans[0].Status().Code == codes.Error {
		t.Fatalf("2xx span marked as error")
	}
	if spans[1].Status().Code != codes.Error {
		t.Fatalf("5xx span status = %v", spans[1].Status())
	}
}

func TestInitTracer_NoEndpointIsNoop(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), TracerConfig{ServiceName: "svc"})
	if err != nil {
		t.Fatalf("InitTracer: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestNewResource(t *testing.T) {
	res := NewResource(TracerConfig{ServiceName: "svc", Version: "1.2.3", Environment: "test"})
	v, ok := res.Set().Value(semconv.ServiceNameKey)
	if !ok || v.AsString() != "svc" {
		t.Fatalf("service.name = %v", v)
	}
}
