// Package iofs prepares the filesystem layout driftwatch relies on:
// config and log directories in the user's home, and report, baseline
// and stub directories inside the scanned project.
package iofs

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/driftwatch/driftwatch/pkg/config"
)

//go:embed config.yaml
var ConfigYAML string

func EnsureDirs(homeDir string) error {
	dirs := []string{
		config.ConfigDir(homeDir),
		config.LogDir(homeDir),
	}
	for _, v := range dirs {
		if err := touchDir(v); err != nil {
			return err
		}
	}
	return nil
}

// EnsureProjectDirs creates the report directory and the baseline's
// parent directory inside the project.
func EnsureProjectDirs(cfg *config.Config) error {
	dirs := []string{
		cfg.ReportPath(),
		filepath.Dir(cfg.BaselineFile()),
	}
	for _, v := range dirs {
		if err := touchDir(v); err != nil {
			return err
		}
	}
	return nil
}

func touchDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return CreateDirError(dir, err)
	}

	return nil
}

func EnsureConfigFile(homeDir string) error {
	configPath := config.ConfigFilePath(homeDir)

	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	if err := os.WriteFile(configPath, []byte(ConfigYAML), 0644); err != nil {
		return CopyFileError(configPath, err)
	}

	return nil
}
