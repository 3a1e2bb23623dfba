// ABOUTME: Subject profile type and the sources that (re)load it
// ABOUTME: FileProfileSource reads a YAML file so edits are picked up on refresh

package answer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile describes the person questions are asked about (or the viewer asking them).
type Profile struct {
	Name     string   `yaml:"name" json:"name"`
	Headline string   `yaml:"headline,omitempty" json:"headline,omitempty"`
	About    string   `yaml:"about,omitempty" json:"about,omitempty"`
	Prompt   string   `yaml:"prompt,omitempty" json:"prompt,omitempty"`
	Facts    []string `yaml:"facts,omitempty" json:"facts,omitempty"`
	Links    []Link   `yaml:"links,omitempty" json:"links,omitempty"`
}

// Link is a labelled URL attached to a profile.
type Link struct {
	Title string `yaml:"title" json:"title"`
	URL   string `yaml:"url" json:"url"`
}

// Validate checks the fields every profile needs.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("profile name is required")
	}
	return nil
}

// ProfileSource fetches the current subject profile. A nil profile with a nil
// error means the source had nothing new to offer.
type ProfileSource interface {
	FetchProfile(ctx context.Context) (*Profile, error)
}

// LoadProfileFile parses a YAML profile file.
func LoadProfileFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("validating profile: %w", err)
	}
	return &p, nil
}

// FileProfileSource re-reads a YAML profile file on every fetch.
type FileProfileSource struct {
	Path string
}

// FetchProfile implements ProfileSource.
func (s FileProfileSource) FetchProfile(ctx context.Context) (*Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadProfileFile(s.Path)
}

// StaticProfileSource always returns a copy of Profile, or nothing if Profile is nil.
type StaticProfileSource struct {
	Profile *Profile
}

// FetchProfile implements ProfileSource.
func (s StaticProfileSource) FetchProfile(ctx context.Context) (*Profile, error) {
	if s.Profile == nil {
		return nil, nil
	}
	p := *s.Profile
	return &p, nil
}
