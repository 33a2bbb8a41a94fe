package workflow

import (
	"os"

	"golang.org/x/image/tiff"
)

// ChartInfo describes a rasterized chart on disk.
type ChartInfo struct {
	Path   string
	Width  int
	Height int
	Err    error
}

// InspectCharts reads the TIFF header of every path.
func InspectCharts(paths []string) []ChartInfo {
	infos := make([]ChartInfo, 0, len(paths))
	for _, p := range paths {
		infos = append(infos, inspectChart(p))
	}
	return infos
}

func inspectChart(path string) ChartInfo {
	info := ChartInfo{Path: path}
	f, err := os.Open(path)
	if err != nil {
		info.Err = err
		return info
	}
	defer f.Close()
	cfg, err := tiff.DecodeConfig(f)
	if err != nil {
		info.Err = err
		return info
	}
	info.Width, info.Height = cfg.Width, cfg.Height
	return info
}
