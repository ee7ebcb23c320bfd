package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add invoices table", "add_invoices_table"},
		{"Add-Invoices-Table", "add_invoices_table"},
		{"ADD_INVOICES_TABLE", "add_invoices_table"},
		{"add__feed__deliveries", "add_feed_deliveries"},
		{"Add Rules 123", "add_rules_123"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	tmpDir := t.TempDir()

	mf, err := CreateMigration(tmpDir, "add invoices table", "Create invoices table")
	require.NoError(t, err)
	require.NotNil(t, mf)

	// Version format is YYYYMMDDHHMMSS
	assert.Len(t, mf.Version, 14)
	assert.True(t, strings.HasSuffix(mf.UpPath, ".up.sql"))
	assert.True(t, strings.HasSuffix(mf.DownPath, ".down.sql"))

	upBase := strings.TrimSuffix(filepath.Base(mf.UpPath), ".up.sql")
	downBase := strings.TrimSuffix(filepath.Base(mf.DownPath), ".down.sql")
	assert.Equal(t, upBase, downBase)

	upContent, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(upContent), "add invoices table")

	_, err = os.Stat(mf.DownPath)
	assert.NoError(t, err)
}

func TestListMigrations(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := CreateMigration(tmpDir, "first", "")
	require.NoError(t, err)

	migrations, err := ListMigrations(tmpDir)
	require.NoError(t, err)
	assert.Len(t, migrations, 1)
	assert.Contains(t, migrations[0], "first")
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	migrations, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))

	require.NoError(t, err)
	assert.Empty(t, migrations)
}
