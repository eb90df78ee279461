package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cdr.dev/slog/v3"
	"github.com/labstack/echo/v4"

	"authz-service/pkg/rbac"
	"authz-service/pkg/rbac/presets"
)

type discardRecorder struct{}

func (discardRecorder) ObserveDecision(string, bool, error) {}

func benchHandler() *AuthorizeHandler {
	engine := rbac.MustNewEngine(presets.DangerousGoods())
	resolver := &mapResolver{roles: map[string]rbac.Role{"u": rbac.RoleOperator}}
	return NewAuthorizeHandler(engine, resolver, discardRecorder{}, 0, slog.Make())
}

// BenchmarkCanHandler measures a single permission check end to end,
// including strict JSON binding.
func BenchmarkCanHandler(b *testing.B) {
	h := benchHandler()
	e := echo.New()
	const body = `{"subject":{"id":"u"},"permission":"shipments.create"}`

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/authorize/can", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		_ = h.Can(e.NewContext(req, httptest.NewRecorder()))
	}
}

// BenchmarkAllPermissionsHandlerParallel measures concurrent set queries
func BenchmarkAllPermissionsHandlerParallel(b *testing.B) {
	h := benchHandler()
	e := echo.New()
	const body = `{"subject":{"id":"u","role":"manager"},"permissions":["shipments.view.all","fleet.manage","users.view","reports.generate"]}`

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			req := httptest.NewRequest(http.MethodPost, "/v1/authorize/all-permissions", strings.NewReader(body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			_ = h.HasAllPermissions(e.NewContext(req, httptest.NewRecorder()))
		}
	})
}
