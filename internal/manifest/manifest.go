// Package manifest reads stem-set manifests: a YAML file naming the set
// and listing each stem with the URL to fetch it from.
package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Manifest struct {
	Name  string `yaml:"name"`
	Stems []Stem `yaml:"stems"`
}

type Stem struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Load parses and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	if len(m.Stems) == 0 {
		return nil, fmt.Errorf("manifest %s: no stems", path)
	}
	seen := make(map[string]struct{}, len(m.Stems))
	for i, s := range m.Stems {
		if s.Name == "" {
			return nil, fmt.Errorf("manifest %s: stem %d has no name", path, i)
		}
		if s.URL == "" {
			return nil, fmt.Errorf("manifest %s: stem %q has no url", path, s.Name)
		}
		if _, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("manifest %s: duplicate stem %q", path, s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	return &m, nil
}
