package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrConfigExists is returned by WriteFile when the target exists and force
// is not set.
var ErrConfigExists = errors.New("config file already exists")

const configFileMode = 0o644

const header = "# boundarylint configuration.\n# Environment variables override keys with the BOUNDARYLINT_ prefix,\n" +
	"# e.g. BOUNDARYLINT_LOG_LEVEL=debug.\n"

// Marshal renders cfg as a commented YAML document.
func Marshal(cfg *Config) ([]byte, error) {
	body, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	return append([]byte(header), body...), nil
}

// WriteFile writes cfg to path, refusing to overwrite unless force is set.
func WriteFile(path string, cfg *Config, force bool) error {
	if !force {
		_, statErr := os.Stat(path)
		if statErr == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}

		if !errors.Is(statErr, fs.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", path, statErr)
		}
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	err = os.WriteFile(path, data, configFileMode)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}
