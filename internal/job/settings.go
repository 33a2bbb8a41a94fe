package job

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/verte-zerg/iccgen/internal/model"
	"github.com/verte-zerg/iccgen/internal/paper"
)

// ErrSettingsNotFound is returned when loading a settings file that does not exist.
var ErrSettingsNotFound = errors.New("file does not exist")

var validate = validator.New()

// Snapshot returns the persisted subset of the job.
func (j *Job) Snapshot() model.Settings {
	return model.Settings{
		InkBrand:     j.inkBrand,
		PaperBrand:   j.paperBrand,
		PaperFinish:  j.paperFinish,
		PaperModel:   j.paperModel,
		PaperSize:    j.paperSize.Name(),
		PrinterBrand: j.printerBrand,
		PrinterModel: j.printerModel,
		ProfileDate:  j.profileDate,
		ProfileTime:  j.profileTime,
	}
}

// DefaultSettingsPath returns <profile path>/<profile name>.json.
func (j *Job) DefaultSettingsPath() string {
	return filepath.Join(j.ProfilePath(), j.ProfileName()+".json")
}

// SaveSettings writes the settings snapshot as JSON and returns the path
// written. An empty path selects DefaultSettingsPath.
func (j *Job) SaveSettings(path string) (string, error) {
	if path == "" {
		path = j.DefaultSettingsPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create settings directory: %w", err)
	}
	data, err := json.Marshal(j.Snapshot())
	if err != nil {
		return "", fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write settings: %w", err)
	}
	return path, nil
}

// LoadSettings overwrites the snapshot fields from a settings file. A paper
// size name missing from the library leaves the paper size unset, so later
// patch count lookups fail.
func (j *Job) LoadSettings(path string) error {
	if path == "" {
		return fmt.Errorf("settings path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrSettingsNotFound, path)
		}
		return fmt.Errorf("failed to read settings: %w", err)
	}
	var s model.Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to decode settings %s: %w", path, err)
	}
	return j.ApplySettings(s)
}

// ApplySettings overwrites the snapshot fields of the job.
func (j *Job) ApplySettings(s model.Settings) error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	j.inkBrand = s.InkBrand
	j.paperBrand = s.PaperBrand
	j.paperFinish = s.PaperFinish
	j.paperModel = s.PaperModel
	j.paperSize, _ = paper.Lookup(s.PaperSize)
	j.printerBrand = s.PrinterBrand
	j.printerModel = s.PrinterModel
	j.profileDate = s.ProfileDate
	j.profileTime = s.ProfileTime
	return nil
}
