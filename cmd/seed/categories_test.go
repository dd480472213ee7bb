package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadCategories(t *testing.T) {
	path := writeFile(t, "categories:\n  - Breakfast\n  - \"  Dinner \"\n  - breakfast\n  - \"\"\n")

	names, err := loadCategories(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Breakfast", "Dinner"}, names)
}

func TestLoadCategoriesErrors(t *testing.T) {
	_, err := loadCategories(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = loadCategories(writeFile(t, "categories: [unterminated"))
	assert.Error(t, err)

	_, err = loadCategories(writeFile(t, "categories: []\n"))
	assert.ErrorContains(t, err, "lists no categories")
}

func TestBundledCategories(t *testing.T) {
	names, err := loadCategories(filepath.Join("..", "..", "seed", "categories.yaml"))
	require.NoError(t, err)
	assert.Contains(t, names, "Breakfast")
}
