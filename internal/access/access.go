// Package access maps staff roles to the dashboard modules they may open.
package access

import (
	_ "embed"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed roles.yaml
var defaultMatrix []byte

// KnownModules lists every dashboard module a role can be granted.
var KnownModules = []string{"despacho", "gestion_usuarios", "calibracion", "clientes", "perfil"}

// Matrix is the role to modules table.
type Matrix struct {
	DefaultRole string              `yaml:"default_role"`
	Roles       map[string][]string `yaml:"roles"`
}

// Parse decodes a role matrix document.
func Parse(data []byte) (*Matrix, error) {
	var m Matrix
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse role matrix: %w", err)
	}
	if m.DefaultRole == "" {
		return nil, fmt.Errorf("parse role matrix: default_role is required")
	}
	if m.Roles == nil {
		m.Roles = map[string][]string{}
	}
	return &m, nil
}

// Validate checks the default role is defined and every module is known.
func (m *Matrix) Validate() error {
	if _, ok := m.Roles[m.DefaultRole]; !ok {
		return fmt.Errorf("default role %q has no entry", m.DefaultRole)
	}
	for role, mods := range m.Roles {
		for _, mod := range mods {
			if !slices.Contains(KnownModules, mod) {
				return fmt.Errorf("role %q: unknown module %q", role, mod)
			}
		}
	}
	return nil
}

// Default returns the embedded matrix.
func Default() *Matrix {
	m, err := Parse(defaultMatrix)
	if err == nil {
		err = m.Validate()
	}
	if err != nil {
		panic(err)
	}
	return m
}

// Modules returns the modules visible to role. Unknown roles get the
// default role's modules.
func (m *Matrix) Modules(role string) []string {
	mods, ok := m.Roles[role]
	if !ok {
		mods = m.Roles[m.DefaultRole]
	}
	return slices.Clone(mods)
}

// Allowed reports whether role may open module.
func (m *Matrix) Allowed(role, module string) bool {
	return slices.Contains(m.Modules(role), module)
}

// Known reports whether role appears in the matrix.
func (m *Matrix) Known(role string) bool {
	_, ok := m.Roles[role]
	return ok
}
