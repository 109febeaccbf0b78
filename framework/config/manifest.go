package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest declares container aliases and tags in YAML, the way Laravel's
// config/app.php declares class aliases:
//
//	aliases:
//	  configuration: config
//	  logger: log
//	tags:
//	  reports: [report.cpu, report.memory]
type Manifest struct {
	Aliases map[string]string   `yaml:"aliases"`
	Tags    map[string][]string `yaml:"tags"`
}

// LoadManifest reads the manifest at path. A missing file yields an empty
// manifest; an unreadable or malformed one is an error.
func LoadManifest(path string) (*Manifest, error) {
	m := &Manifest{}
	if path == "" {
		return m, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read manifest %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("config: parse manifest %s: %w", path, err)
	}
	return m, nil
}
