package registry

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlane-io/starlane/internal/identity"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.db")
	db, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })
	return db
}

func TestSQLite_LocateMissingReturnsErrNotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Locate(context.Background(), identity.MustParsePoint("space:app"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_RegisterThenLocateRoundTrips(t *testing.T) {
	db := openTestDB(t)
	p := identity.MustParsePoint("space:app")

	require.NoError(t, db.Register(context.Background(), p, "app", "Ready", map[string]string{"tier": "edge"}))

	rec, err := db.Locate(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "app", rec.Kind)
	assert.Equal(t, "Ready", rec.Status)
	assert.Equal(t, "edge", rec.Properties["tier"])
	assert.False(t, rec.Location.Remote)
}

func TestSQLite_AssignSetsRemoteRoute(t *testing.T) {
	db := openTestDB(t)
	p := identity.MustParsePoint("space:app")
	require.NoError(t, db.Register(context.Background(), p, "app", "Ready", nil))

	require.NoError(t, db.Assign(context.Background(), p, identity.StarKey("star-1")))

	rec, err := db.Locate(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, rec.Location.Remote)
	assert.Equal(t, identity.StarKey("star-1"), rec.Location.Star)
	assert.Equal(t, "app", rec.Kind, "assign must not clobber a prior register")
}

func TestSQLite_AssignWithoutPriorRegisterCreatesRow(t *testing.T) {
	db := openTestDB(t)
	p := identity.MustParsePoint("space:standalone")

	require.NoError(t, db.Assign(context.Background(), p, identity.StarKey("star-2")))

	rec, err := db.Locate(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, identity.StarKey("star-2"), rec.Location.Star)
}

func TestSQLite_RegisterIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	p := identity.MustParsePoint("space:app")

	require.NoError(t, db.Register(context.Background(), p, "app", "Pending", map[string]string{"a": "1"}))
	require.NoError(t, db.Register(context.Background(), p, "app", "Ready", map[string]string{"a": "2"}))

	rec, err := db.Locate(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "Ready", rec.Status)
	assert.Equal(t, "2", rec.Properties["a"])
}

func TestSQLite_GetPropertiesDelegatesToLocate(t *testing.T) {
	db := openTestDB(t)
	p := identity.MustParsePoint("space:app")
	require.NoError(t, db.Register(context.Background(), p, "app", "Ready", map[string]string{"k": "v"}))

	props, err := db.GetProperties(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "v", props["k"])
}
