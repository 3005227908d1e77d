package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/proneo/platform/internal/domain"
	"github.com/proneo/platform/internal/feed"
	"gopkg.in/yaml.v3"
)

const defaultProfilePath = "avisos.yaml"

// profile is the YAML file that stands in for the signed-in mobile session.
type profile struct {
	Role      domain.Role               `yaml:"role"`
	Category  domain.Category           `yaml:"category"`
	Snapshot  string                    `yaml:"snapshot"`
	StateFile string                    `yaml:"state_file"`
	Timezone  string                    `yaml:"timezone"`
	Settings  map[domain.AlertKind]bool `yaml:"settings"`
}

func defaultProfile() profile {
	return profile{
		Role:      domain.RoleAdmin,
		Category:  domain.CategoryAll,
		StateFile: "avisos-state.json",
		Timezone:  "Europe/Madrid",
	}
}

// loadProfile reads path over the defaults. A missing file is only an error
// when the path was given explicitly.
func loadProfile(path string, explicit bool) (profile, error) {
	p := defaultProfile()
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		return p, nil
	default:
		return profile{}, fmt.Errorf("read profile: %w", err)
	}

	if err := yaml.Unmarshal(raw, &p); err != nil {
		return profile{}, fmt.Errorf("decode profile %s: %w", path, err)
	}
	if err := p.validate(); err != nil {
		return profile{}, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

func (p profile) validate() error {
	if !p.Role.Valid() {
		return fmt.Errorf("unknown role: %s", p.Role)
	}
	if err := domain.ValidateCategoryFilter(p.Category); err != nil {
		return err
	}
	if p.StateFile == "" {
		return errors.New("state_file is required")
	}
	for k := range p.Settings {
		if !k.Valid() {
			return fmt.Errorf("unknown alert kind in settings: %s", k)
		}
	}
	if _, err := time.LoadLocation(p.Timezone); err != nil {
		return fmt.Errorf("load timezone %q: %w", p.Timezone, err)
	}
	return nil
}

// overlay applies the profile's toggles on top of stored ones. Mandatory
// kinds stay on.
func (p profile) overlay(t feed.Toggles) feed.Toggles {
	for k, enabled := range p.Settings {
		if !k.Mandatory() {
			t[k] = enabled
		}
	}
	return t
}
