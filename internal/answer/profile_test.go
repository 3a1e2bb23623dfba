// ABOUTME: Tests for profile loading and profile sources
// ABOUTME: Covers YAML parsing, validation and re-reading on fetch

package answer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadProfileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	writeProfile(t, path, `
name: Ada
headline: a compiler engineer
facts:
  - Wrote the first program
links:
  - title: site
    url: https://ada.dev
`)

	p, err := LoadProfileFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.Name)
	assert.Equal(t, "a compiler engineer", p.Headline)
	assert.Equal(t, []string{"Wrote the first program"}, p.Facts)
	assert.Equal(t, []Link{{Title: "site", URL: "https://ada.dev"}}, p.Links)
}

func TestLoadProfileFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadProfileFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	writeProfile(t, bad, "name: [unterminated")
	_, err = LoadProfileFile(bad)
	assert.Error(t, err)

	nameless := filepath.Join(dir, "nameless.yaml")
	writeProfile(t, nameless, "headline: nobody")
	_, err = LoadProfileFile(nameless)
	assert.Error(t, err)
}

func TestFileProfileSource_RereadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	writeProfile(t, path, "name: Ada\n")
	src := FileProfileSource{Path: path}

	p, err := src.FetchProfile(context.Background())
	require.NoError(t, err)
	assert.Empty(t, p.Headline)

	writeProfile(t, path, "name: Ada\nheadline: updated\n")
	p, err = src.FetchProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "updated", p.Headline)
}

func TestStaticProfileSource(t *testing.T) {
	p, err := StaticProfileSource{}.FetchProfile(context.Background())
	require.NoError(t, err)
	assert.Nil(t, p)

	orig := &Profile{Name: "Ada"}
	p, err = StaticProfileSource{Profile: orig}.FetchProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, orig, p)
	assert.NotSame(t, orig, p)
}
