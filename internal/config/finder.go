package config

import (
	"os"
	"path/filepath"
)

// Extensions are the config file formats viper is asked to read, in lookup order
var Extensions = []string{"yml", "yaml", "json", "toml"}

// FindLocalConfig finds local config file by walking up directories
func FindLocalConfig(dir string) string {
	for {
		for _, ext := range Extensions {
			path := filepath.Join(dir, ".swrun."+ext)

			if _, err := os.Stat(path); err == nil {
				return path
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}

		dir = parent
	}

	return ""
}
