package config

import (
	"path/filepath"
)

// AppName is used in generating file system paths.
var AppName = "driftwatch"

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/driftwatch by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/driftwatch/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/driftwatch/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}

// BaselineFile resolves the baseline file inside the project.
func (c *Config) BaselineFile() string {
	return filepath.Join(c.ProjectDir, c.Drift.BaselinePath)
}

// ReportPath resolves the drift report directory inside the project.
func (c *Config) ReportPath() string {
	return filepath.Join(c.ProjectDir, c.Drift.ReportDir)
}

// StubPath resolves the route stub directory inside the project.
func (c *Config) StubPath() string {
	return filepath.Join(c.ProjectDir, c.Routes.StubDir)
}
