package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/posledger/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add bills table", "add_bills_table"},
		{"Add-Bills-Table", "add_bills_table"},
		{"add__bill__items", "add_bill_items"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading and trailing_", "leading_and_trailing"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "add delivery slots", "Delivery slot table")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_delivery_slots.up.sql"), first.UpPath)

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Migration: add_delivery_slots\n")
	assert.Contains(t, string(up), "-- Description: Delivery slot table")

	down, err := os.ReadFile(first.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(Rollback)")

	second, err := CreateMigration(dir, "index bills by customer", "")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)

	_, err = CreateMigration(dir, "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	t.Run("orders by version", func(t *testing.T) {
		fsys := fstest.MapFS{
			"000010_b.up.sql":   {},
			"000010_b.down.sql": {},
			"000002_a.up.sql":   {},
			"000002_a.down.sql": {},
			"README.md":         {},
		}
		list, err := ListMigrations(fsys)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, uint(2), list[0].Version)
		assert.Equal(t, "b", list[1].Name)
	})

	t.Run("missing down file", func(t *testing.T) {
		_, err := ListMigrations(fstest.MapFS{"000001_a.up.sql": {}})
		assert.ErrorContains(t, err, "no down file")
	})

	t.Run("missing directory", func(t *testing.T) {
		list, err := ListMigrations(os.DirFS(filepath.Join(t.TempDir(), "absent")))
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("embedded schema is complete", func(t *testing.T) {
		list, err := ListMigrations(migrations.FS)
		require.NoError(t, err)
		require.NotEmpty(t, list)
		assert.Equal(t, uint(1), list[0].Version)
	})
}
