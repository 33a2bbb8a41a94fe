package job

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Fixed templates for the job scratch directory and artifact base name.
const (
	ProfilePathTemplate = "{cache_root}/ICCGenerator/{printer_brand}_{printer_model}/{profile_date}"
	ProfileNameTemplate = "{printer_brand}_{printer_model}_{paper_brand}_{paper_model}_" +
		"{paper_finish}_{paper_size}_{ink_brand}_{profile_date}_{profile_time}"
)

func (j *Job) replacer() *strings.Replacer {
	return strings.NewReplacer(
		"{cache_root}", j.cacheRoot,
		"{printer_brand}", j.printerBrand,
		"{printer_model}", j.printerModel,
		"{paper_brand}", j.paperBrand,
		"{paper_model}", j.paperModel,
		"{paper_finish}", j.paperFinish,
		"{paper_size}", j.paperSize.Name(),
		"{ink_brand}", j.inkBrand,
		"{profile_date}", j.profileDate,
		"{profile_time}", j.profileTime,
	)
}

// RenderProfileName renders the name template from the current fields,
// ignoring any override.
func (j *Job) RenderProfileName() string {
	return j.replacer().Replace(ProfileNameTemplate)
}

// ProfileName returns the override set with SetProfileName, or the rendered
// name when no override is set.
func (j *Job) ProfileName() string {
	if j.profileName != "" {
		return j.profileName
	}
	return j.RenderProfileName()
}

// ProfilePath returns the rendered scratch directory with "~" and
// environment references expanded.
func (j *Job) ProfilePath() string {
	return filepath.Clean(ExpandPath(j.replacer().Replace(ProfilePathTemplate)))
}

// ProfileAbsolutePath returns ProfilePath as an absolute path.
func (j *Job) ProfileAbsolutePath() (string, error) {
	p, err := filepath.Abs(j.ProfilePath())
	if err != nil {
		return "", fmt.Errorf("failed to resolve profile path: %w", err)
	}
	return p, nil
}

// ProfileAbsoluteFullPath returns the absolute artifact base path, the
// profile directory joined with the profile name and no extension.
func (j *Job) ProfileAbsoluteFullPath() (string, error) {
	dir, err := j.ProfileAbsolutePath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, j.ProfileName()), nil
}

// TIFFiles returns the raster chart paths computed by UpdateTIFFiles.
func (j *Job) TIFFiles() []string {
	return append([]string(nil), j.tifFiles...)
}

// UpdateTIFFiles recomputes the raster chart paths: a single unsuffixed file
// for one page, otherwise one _NN suffixed file per page.
func (j *Job) UpdateTIFFiles() error {
	base, err := j.ProfileAbsoluteFullPath()
	if err != nil {
		return err
	}
	files := make([]string, 0, j.numberOfPages)
	if j.numberOfPages == 1 {
		files = append(files, base+".tif")
	} else {
		for i := 1; i <= j.numberOfPages; i++ {
			files = append(files, fmt.Sprintf("%s_%02d.tif", base, i))
		}
	}
	j.tifFiles = files
	return nil
}

// ExpandPath expands environment references and a leading "~".
func ExpandPath(p string) string {
	p = os.ExpandEnv(p)
	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			return p
		}
		return filepath.Join(home, p[1:])
	}
	return p
}
