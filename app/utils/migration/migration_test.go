package migration

import (
	"io"
	"log/slog"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMigrator_LoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/002_add_email_index.up.sql":   {Data: []byte("CREATE INDEX idx_users_email ON users(email);")},
		"migrations/002_add_email_index.down.sql": {Data: []byte("DROP INDEX idx_users_email;")},
		"migrations/001_create_accounts.up.sql":   {Data: []byte("CREATE TABLE accounts (account_id UUID PRIMARY KEY);")},
		"migrations/001_create_accounts.down.sql": {Data: []byte("DROP TABLE accounts;")},
		"migrations/README.md":                    {Data: []byte("ignored")},
	}

	m := NewMigrator(nil, testLogger(), fsys)

	migrations, err := m.LoadMigrations()

	require.NoError(t, err)
	require.Len(t, migrations, 2)

	// Sorted by version regardless of walk order
	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "create_accounts", migrations[0].Name)
	assert.Equal(t, "CREATE TABLE accounts (account_id UUID PRIMARY KEY);", migrations[0].UpSQL)
	assert.Equal(t, "DROP TABLE accounts;", migrations[0].DownSQL)
	assert.Equal(t, 2, migrations[1].Version)
	assert.Equal(t, "add_email_index", migrations[1].Name)

	assert.NotEmpty(t, migrations[0].Checksum)
	assert.NotEqual(t, migrations[0].Checksum, migrations[1].Checksum)
}

func TestMigrator_LoadMigrations_MissingDownFile(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/001_create_accounts.up.sql": {Data: []byte("CREATE TABLE accounts (account_id UUID PRIMARY KEY);")},
	}

	m := NewMigrator(nil, testLogger(), fsys)

	_, err := m.LoadMigrations()

	assert.Error(t, err)
}

func TestMigrator_LoadMigrations_SkipsMalformedNames(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/create_accounts.up.sql":   {Data: []byte("CREATE TABLE accounts (account_id UUID PRIMARY KEY);")},
		"migrations/create_accounts.down.sql": {Data: []byte("DROP TABLE accounts;")},
		"migrations/vNext_thing.up.sql":       {Data: []byte("SELECT 1;")},
		"migrations/vNext_thing.down.sql":     {Data: []byte("SELECT 1;")},
	}

	m := NewMigrator(nil, testLogger(), fsys)

	migrations, err := m.LoadMigrations()

	require.NoError(t, err)
	assert.Empty(t, migrations)
}

func TestChecksum(t *testing.T) {
	assert.Equal(t, checksum("CREATE TABLE t (a INT);"), checksum("CREATE TABLE t (a INT);"))
	assert.NotEqual(t, checksum("CREATE TABLE t (a INT);"), checksum("CREATE TABLE t (b INT);"))
	assert.Len(t, checksum("anything"), 64)
}
