package main

import (
	"bytes"
	"context"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/attendance/internal/app"
	"github.com/Skotchmaster/attendance/internal/config"
	"github.com/Skotchmaster/attendance/internal/logging"
	"github.com/Skotchmaster/attendance/pkg/db"
)

// fileOpener uses a file-backed sqlite database so state survives between
// commands, each of which opens and closes the app.
func fileOpener(t *testing.T) opener {
	cfg := &config.Config{
		DBDriver:         db.DriverSQLite,
		DatabaseURL:      filepath.Join(t.TempDir(), "attendance.db"),
		PublicURL:        "http://localhost:8080",
		PBKDF2Iterations: 1000,
	}
	return func(ctx context.Context) (*app.App, error) {
		return app.Open(ctx, cfg, logging.Discard(), nil)
	}
}

func run(t *testing.T, open opener, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand(open, &out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI(t *testing.T) {
	open := fileOpener(t)

	out, err := run(t, open, "seed-admin", "--email", "admin@x.com", "--password", "AdminPass1")
	require.NoError(t, err)
	assert.Contains(t, out, "admin admin@x.com created")

	out, err = run(t, open, "seed-admin", "--email", "admin@x.com", "--password", "AdminPass1")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	out, err = run(t, open, "api-key", "create", "--name", "crm", "--owner", "admin@x.com")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`key: pa_[A-Za-z0-9_-]{43}`), out)

	out, err = run(t, open, "api-key", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "crm")
	assert.Contains(t, out, "true")

	out, err = run(t, open, "set-password", "--login", "admin@x.com", "--password", "NewAdminPass1")
	require.NoError(t, err)
	assert.Contains(t, out, "password updated")

	_, err = run(t, open, "set-password", "--login", "ghost@x.com", "--password", "NewAdminPass1")
	assert.Error(t, err)

	_, err = run(t, open, "api-key", "create", "--name", "crm", "--owner", "ghost@x.com")
	assert.Error(t, err)

	_, err = run(t, open, "seed-admin")
	assert.Error(t, err, "--email is required")
}
