package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadSeedFile(t *testing.T) {
	p := writeSeed(t, `
documents:
  users/admin1:
    email: boss@haulzy.com
    isAdmin: true
  pickups/p1:
    address: 1 Elm
    scheduledAt: 2024-05-01T09:00:00Z
    items: [i1]
  pickups/p1/items/i1:
    name: Blender
    quantity: 2
`)
	m := NewMemoryStore()
	n, err := LoadSeedFile(m, p)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	admin, err := m.Get(t.Context(), Doc(Users, "admin1"))
	require.NoError(t, err)
	assert.Equal(t, true, admin.Data["isAdmin"])

	pickup, err := m.Get(t.Context(), Doc(Pickups, "p1"))
	require.NoError(t, err)
	assert.IsType(t, time.Time{}, pickup.Data["scheduledAt"])
	assert.Equal(t, []any{"i1"}, pickup.Data["items"])

	items, err := m.List(t.Context(), Doc(Pickups, "p1", "items"))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Blender", items[0].Data["name"])
}

func TestLoadSeedFile_Errors(t *testing.T) {
	m := NewMemoryStore()

	_, err := LoadSeedFile(m, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadSeedFile(m, writeSeed(t, "documents: [oops"))
	assert.Error(t, err)

	_, err = LoadSeedFile(m, writeSeed(t, "documents:\n  users:\n    email: x\n"))
	assert.ErrorContains(t, err, "not a document path")
}
