package presets

import (
	"fmt"

	"authz-service/pkg/rbac"
)

// Preset is a named grant table constructor.
type Preset struct {
	Name   string
	Config func() rbac.Config
}

// Default is the preset the service serves when no other source is
// configured.
const Default = "dangerous-goods"

// All returns every registered preset. Add new presets here so they are
// automatically included in validation.
func All() []Preset {
	return []Preset{
		{Name: Default, Config: DangerousGoods},
	}
}

// Lookup returns the preset registered under name.
func Lookup(name string) (Preset, error) {
	for _, p := range All() {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: unknown preset %q", rbac.ErrConfiguration, name)
}
