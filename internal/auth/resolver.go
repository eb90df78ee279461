package auth

import (
	"context"
	"fmt"

	"authz-service/pkg/rbac"
)

// SubjectResolver turns an authenticated identity into a subject. It only
// ever supplies the role; permissions come from the grant table.
type SubjectResolver interface {
	Resolve(ctx context.Context, identity string) (rbac.Subject, error)
}

// RoleLookup is implemented by stores that hold role assignments.
type RoleLookup interface {
	RoleFor(ctx context.Context, subjectID string) (rbac.Role, error)
}

// LookupResolver asks a RoleLookup for the role.
type LookupResolver struct {
	lookup RoleLookup
}

func NewLookupResolver(lookup RoleLookup) *LookupResolver {
	return &LookupResolver{lookup: lookup}
}

func (r *LookupResolver) Resolve(ctx context.Context, identity string) (rbac.Subject, error) {
	role, err := r.lookup.RoleFor(ctx, identity)
	if err != nil {
		return rbac.Subject{}, fmt.Errorf(msgResolveRoleFmt, identity, err)
	}
	return rbac.Subject{ID: identity, Role: role}, nil
}

// StaticResolver maps identities to roles from a fixed table. Identities
// not in the table have no role.
type StaticResolver map[string]rbac.Role

func (r StaticResolver) Resolve(_ context.Context, identity string) (rbac.Subject, error) {
	return rbac.Subject{ID: identity, Role: r[identity]}, nil
}

// NoRoleResolver resolves every identity to a subject without a role.
type NoRoleResolver struct{}

func (NoRoleResolver) Resolve(_ context.Context, identity string) (rbac.Subject, error) {
	return rbac.Anonymous(identity), nil
}

// ClaimsResolver builds subjects from verified token claims. A role claim is
// used as is; without one the fallback resolver decides.
type ClaimsResolver struct {
	fallback SubjectResolver
}

func NewClaimsResolver(fallback SubjectResolver) *ClaimsResolver {
	if fallback == nil {
		fallback = NoRoleResolver{}
	}
	return &ClaimsResolver{fallback: fallback}
}

func (r *ClaimsResolver) FromClaims(ctx context.Context, claims *Claims) (rbac.Subject, error) {
	if claims.Role != "" {
		return rbac.Subject{ID: claims.Subject, Role: rbac.Role(claims.Role)}, nil
	}
	return r.fallback.Resolve(ctx, claims.Subject)
}

// Resolve resolves a bare identity, for callers that name a subject without
// a role.
func (r *ClaimsResolver) Resolve(ctx context.Context, identity string) (rbac.Subject, error) {
	return r.fallback.Resolve(ctx, identity)
}
