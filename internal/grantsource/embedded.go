package grantsource

import (
	"context"

	"authz-service/pkg/rbac"
	"authz-service/pkg/rbac/presets"
)

// Embedded serves one of the compiled-in presets.
type Embedded struct {
	preset string
}

func NewEmbedded(preset string) *Embedded {
	if preset == "" {
		preset = presets.Default
	}
	return &Embedded{preset: preset}
}

func (e *Embedded) Name() string {
	return "embedded:" + e.preset
}

func (e *Embedded) Load(ctx context.Context) (*rbac.GrantTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := presets.Lookup(e.preset)
	if err != nil {
		return nil, err
	}
	return rbac.Compile(p.Config())
}
