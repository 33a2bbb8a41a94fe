// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/verte-zerg/iccgen/internal/model"
	"github.com/verte-zerg/iccgen/internal/platform"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	// Job holds default job field values keyed by field name. Values are
	// type-checked when applied to a job.
	Job   map[string]any `toml:"job"`
	Tools ToolsConfig    `toml:"tools"`
	Paths PathsConfig    `toml:"paths"`
	Log   LogConfig      `toml:"log"`
}

// ToolsConfig overrides external executable names or paths.
type ToolsConfig struct {
	Targen    *string `toml:"targen"`
	Printtarg *string `toml:"printtarg"`
	Chartread *string `toml:"chartread"`
	Colprof   *string `toml:"colprof"`
	Profcheck *string `toml:"profcheck"`
	Cctiff    *string `toml:"cctiff"`
	Viewer    *string `toml:"viewer"`
}

// PathsConfig overrides filesystem locations.
type PathsConfig struct {
	CacheRoot        *string `toml:"cache_root"`
	InstallDir       *string `toml:"install_dir"`
	ProfilesDir      *string `toml:"profiles_dir"`
	ReferenceProfile *string `toml:"reference_profile"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level  *string `toml:"level"`
	Format *string `toml:"format"`
	Output *string `toml:"output"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

var validate = validator.New()

// ResolveTools merges tool overrides over the stock binary names and the
// platform chart viewer.
func ResolveTools(tc ToolsConfig, o platform.OS) (model.Tools, error) {
	tools := model.DefaultTools()
	tools.Viewer = o.ChartViewer()
	override := func(target *string, value *string) {
		if value != nil {
			*target = *value
		}
	}
	override(&tools.Targen, tc.Targen)
	override(&tools.Printtarg, tc.Printtarg)
	override(&tools.Chartread, tc.Chartread)
	override(&tools.Colprof, tc.Colprof)
	override(&tools.Profcheck, tc.Profcheck)
	override(&tools.Cctiff, tc.Cctiff)
	override(&tools.Viewer, tc.Viewer)
	if err := validate.Struct(tools); err != nil {
		return model.Tools{}, fmt.Errorf("invalid [tools] config: %w", err)
	}
	return tools, nil
}

// StringOr returns *value, or fallback when value is nil or empty.
func StringOr(value *string, fallback string) string {
	if value == nil || *value == "" {
		return fallback
	}
	return *value
}
