package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/vetter/internal/catalog"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("VETTER_ENV", "")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	err := cmd.Execute()
	return out.String(), err
}

func TestCatalogShow(t *testing.T) {
	out, err := run(t, "", "catalog", "show")
	require.NoError(t, err)

	var info struct {
		Version string `json:"version"`
		Hash    string `json:"hash"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, catalog.Default().Version, info.Version)
	assert.Equal(t, catalog.Default().Hash(), info.Hash)
}

func TestCatalogCheck(t *testing.T) {
	out, err := run(t, "", "catalog", "check", "../../internal/catalog/catalog.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "ok  version="+catalog.Default().Version)
}

func TestCatalogCheckInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: \"\"\n"), 0o644))

	_, err := run(t, "", "catalog", "check", path)
	assert.Error(t, err)
}

func TestOutcomesListEmpty(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "",
		"outcomes", "list",
		"--db", filepath.Join(dir, "outcomes.db"),
		"--config", filepath.Join(dir, "config.toml"),
	)
	require.NoError(t, err)
	assert.Contains(t, out, "No outcomes recorded.")
}

func TestReadSubmission(t *testing.T) {
	sub, err := readSubmission(strings.NewReader(`{
		"category": "Food",
		"subCategory": ["snacks"],
		"productName": "Rice Crackers"
	}`), nil)
	require.NoError(t, err)
	assert.Equal(t, "Food", sub.Category)
	assert.Equal(t, "Rice Crackers", sub.ProductName)

	_, err = readSubmission(strings.NewReader("{"), []string{"-"})
	assert.Error(t, err)
}

func TestPrompt(t *testing.T) {
	var out bytes.Buffer
	answers, err := prompt(
		strings.NewReader("  no added sugar \nbaked\n"),
		&out,
		[]string{"Is sugar added?", "Is it fried?"},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"no added sugar", "baked"}, answers)
	assert.Contains(t, out.String(), "Q2: Is it fried?")

	_, err = prompt(strings.NewReader("one\n"), &out, []string{"a", "b"})
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Crème f...", truncate("Crème fraîche bio", 10))
}
