package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Modules(t *testing.T) {
	m := Default()

	assert.Equal(t, []string{"despacho", "perfil"}, m.Modules("operario"))
	assert.Equal(t, []string{"despacho", "calibracion", "perfil"}, m.Modules("tecnico"))
	assert.ElementsMatch(t,
		[]string{"despacho", "gestion_usuarios", "calibracion", "clientes", "perfil"},
		m.Modules("administracion"))
	assert.NotContains(t, m.Modules("coordinacion"), "clientes")
}

func TestDefault_UnknownRoleFallsBack(t *testing.T) {
	m := Default()
	assert.Empty(t, m.Modules("root"))
	assert.False(t, m.Allowed("root", "despacho"))
	assert.False(t, m.Known("root"))
	assert.True(t, m.Known("invitado"))
}

func TestAllowed(t *testing.T) {
	m := Default()

	assert.True(t, m.Allowed("operario", "despacho"))
	assert.False(t, m.Allowed("operario", "calibracion"))
	assert.True(t, m.Allowed("administracion", "clientes"))
	assert.False(t, m.Allowed("invitado", "perfil"))
}

func TestModules_ReturnsCopy(t *testing.T) {
	m := Default()
	mods := m.Modules("operario")
	mods[0] = "changed"
	assert.Equal(t, "despacho", m.Modules("operario")[0])
}

func TestParse(t *testing.T) {
	m, err := Parse([]byte("default_role: guest\nroles:\n  admin: [a, b]\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, m.Modules("admin"))
	assert.Empty(t, m.Modules("other"))

	_, err = Parse([]byte("roles: {}\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("roles: [\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Default().Validate())

	m, err := Parse([]byte("default_role: invitado\nroles:\n  operario: [despacho]\n"))
	require.NoError(t, err)
	assert.ErrorContains(t, m.Validate(), "default role")

	m, err = Parse([]byte("default_role: invitado\nroles:\n  invitado: []\n  operario: [despachos]\n"))
	require.NoError(t, err)
	assert.ErrorContains(t, m.Validate(), `unknown module "despachos"`)
}
