// Package metadeploy pushes framework metadata files to configured object
// storage targets, applying variable substitution to template files.
package metadeploy

import (
	"fmt"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

type Config struct {
	Vars    map[string]string `yaml:"vars"`
	Modules []Module          `yaml:"modules"`
	Targets map[string]Target `yaml:"targets"`
}

// Module is one deployment unit. Modules run sequentially in declared
// order.
type Module struct {
	Name   string     `yaml:"name"`
	Target string     `yaml:"target"`
	Files  []FileSpec `yaml:"files"`
	Prune  bool       `yaml:"prune"`
}

// FileSpec selects files by glob pattern. Template files are parsed and run
// through variable substitution before upload.
type FileSpec struct {
	Source   string `yaml:"source"`
	Dest     string `yaml:"dest"`
	Template bool   `yaml:"template"`
}

// Target is an object storage destination.
type Target struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
}

// LoadConfig parses and validates a deployment configuration. Validation
// failures are fatal for the whole run.
func LoadConfig(data []byte) (*Config, error) {
	var c Config

	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "parsing deployment config")
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *Config) Validate() error {
	if len(c.Modules) == 0 {
		return fmt.Errorf("no deployment modules configured")
	}

	if len(c.Targets) == 0 {
		return fmt.Errorf("no deployment targets configured")
	}

	for _, m := range c.Modules {
		if m.Name == "" {
			return fmt.Errorf("deployment module missing name")
		}

		t, ok := c.Targets[m.Target]
		if !ok {
			return fmt.Errorf("module %s references unknown target: %s", m.Name, m.Target)
		}

		if t.Bucket == "" {
			return fmt.Errorf("target %s missing bucket", m.Target)
		}

		for _, f := range m.Files {
			if f.Source == "" {
				return fmt.Errorf("module %s: file spec missing source", m.Name)
			}

			if _, err := glob.Compile(f.Source); err != nil {
				return errors.Wrapf(err, "module %s: invalid source pattern %q", m.Name, f.Source)
			}
		}
	}

	return nil
}
