package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cdr.dev/slog/v3/sloggers/slogtest"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authz-service/pkg/rbac"
	"authz-service/pkg/rbac/echoadapter"
)

const testSecret = "k3J9xQ2mV7pL4wR8tY1zN6bH0cF5gD2s"

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)

	token, err := svc.Generate("user-1", rbac.RoleDriver)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "driver", claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTVerifyRejects(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)
	valid, err := svc.Generate("user-1", rbac.RoleAdmin)
	require.NoError(t, err)

	expired, err := NewJWTService(testSecret, -time.Minute).Generate("user-1", rbac.RoleAdmin)
	require.NoError(t, err)

	otherKey, err := NewJWTService("a-completely-different-signing-key", time.Hour).Generate("user-1", rbac.RoleAdmin)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := svc.Generate("", rbac.RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong key", otherKey},
		{"alg none", unsigned},
		{"tampered", valid[:len(valid)-2] + "xx"},
		{"garbage", "not-a-token"},
		{"no subject", noSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Verify(tt.token); err == nil {
				t.Errorf("Verify(%s) succeeded, expected error", tt.name)
			}
		})
	}
}

func TestServiceKeys(t *testing.T) {
	salt := "0123456789abcdef"
	keys, err := NewServiceKeys([]string{HashServiceKey("svc-dispatch", []byte(salt))}, salt)
	require.NoError(t, err)
	require.True(t, keys.Enabled())

	assert.True(t, keys.Verify("svc-dispatch"))
	assert.True(t, keys.Verify("svc-dispatch"), "second verify uses the remembered digest")
	assert.False(t, keys.Verify("svc-billing"))
	assert.False(t, keys.Verify(""))

	_, err = NewServiceKeys([]string{"zz"}, salt)
	assert.Error(t, err)

	empty, err := NewServiceKeys(nil, "")
	require.NoError(t, err)
	assert.False(t, empty.Enabled())
	assert.False(t, empty.Verify("anything"))
}

type lookupFunc func(ctx context.Context, id string) (rbac.Role, error)

func (f lookupFunc) RoleFor(ctx context.Context, id string) (rbac.Role, error) { return f(ctx, id) }

func TestResolvers(t *testing.T) {
	ctx := context.Background()

	static := StaticResolver{"u1": rbac.RoleManager}
	s, err := static.Resolve(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleManager, s.Role)
	s, err = static.Resolve(ctx, "u2")
	require.NoError(t, err)
	assert.False(t, s.HasAssignedRole())

	lookup := NewLookupResolver(lookupFunc(func(_ context.Context, id string) (rbac.Role, error) {
		if id == "broken" {
			return rbac.RoleNone, errors.New("db down")
		}
		return rbac.RoleOperator, nil
	}))
	s, err = lookup.Resolve(ctx, "u3")
	require.NoError(t, err)
	assert.Equal(t, rbac.Subject{ID: "u3", Role: rbac.RoleOperator}, s)
	_, err = lookup.Resolve(ctx, "broken")
	assert.ErrorContains(t, err, "resolve role of broken")
}

func TestClaimsResolverPrefersRoleClaim(t *testing.T) {
	ctx := context.Background()
	r := NewClaimsResolver(StaticResolver{"u1": rbac.RoleViewer})

	withRole := &Claims{Role: "admin", RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}}
	s, err := r.FromClaims(ctx, withRole)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleAdmin, s.Role)

	withoutRole := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}}
	s, err = r.FromClaims(ctx, withoutRole)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleViewer, s.Role)

	s, err = NewClaimsResolver(nil).FromClaims(ctx, withoutRole)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleNone, s.Role)
}

func newTestMiddleware(t *testing.T, keys *ServiceKeys) (*Middleware, *JWTService) {
	t.Helper()
	jwtSvc := NewJWTService(testSecret, time.Hour)
	if keys == nil {
		keys = &ServiceKeys{}
	}
	log := slogtest.Make(t, &slogtest.Options{IgnoreErrors: true})
	return NewMiddleware(jwtSvc, NewClaimsResolver(nil), keys, log), jwtSvc
}

func serve(mw echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, rbac.Subject) {
	e := echo.New()
	var seen rbac.Subject
	e.GET("/", func(c echo.Context) error {
		seen, _ = echoadapter.SubjectFrom(c)
		return c.NoContent(http.StatusNoContent)
	}, mw)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen
}

func TestRequireJWT(t *testing.T) {
	mw, jwtSvc := newTestMiddleware(t, nil)
	token, err := jwtSvc.Generate("user-7", rbac.RoleOperator)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + token, http.StatusNoContent},
		{"lowercase scheme", "bearer " + token, http.StatusNoContent},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(headerAuthorization, tt.header)
			}
			rec, subject := serve(mw.RequireJWT(), req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusNoContent {
				assert.Equal(t, rbac.Subject{ID: "user-7", Role: rbac.RoleOperator}, subject)
			}
		})
	}
}

func TestRequireServiceKey(t *testing.T) {
	salt := "0123456789abcdef"
	keys, err := NewServiceKeys([]string{HashServiceKey("svc-dispatch", []byte(salt))}, salt)
	require.NoError(t, err)
	mw, _ := newTestMiddleware(t, keys)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec, _ := serve(mw.RequireServiceKey(), req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), msgMissingServiceKey))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(headerServiceKey, "svc-other")
	rec, _ = serve(mw.RequireServiceKey(), req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(headerServiceKey, "svc-dispatch")
	rec, _ = serve(mw.RequireServiceKey(), req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireServiceKeyDisabled(t *testing.T) {
	mw, _ := newTestMiddleware(t, nil)
	rec, _ := serve(mw.RequireServiceKey(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
