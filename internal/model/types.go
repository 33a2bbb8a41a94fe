// Package model defines shared data structures.
package model

import "time"

// Settings is the persisted subset of a profiling job.
type Settings struct {
	InkBrand     string `json:"ink_brand" validate:"required"`
	PaperBrand   string `json:"paper_brand" validate:"required"`
	PaperFinish  string `json:"paper_finish" validate:"required"`
	PaperModel   string `json:"paper_model" validate:"required"`
	PaperSize    string `json:"paper_size" validate:"required"`
	PrinterBrand string `json:"printer_brand" validate:"required"`
	PrinterModel string `json:"printer_model" validate:"required"`
	ProfileDate  string `json:"profile_date" validate:"required,len=8,numeric"`
	ProfileTime  string `json:"profile_time" validate:"required,len=4,numeric"`
}

// Tools names the external executables used by the workflow.
type Tools struct {
	Targen    string `validate:"required"`
	Printtarg string `validate:"required"`
	Chartread string `validate:"required"`
	Colprof   string `validate:"required"`
	Profcheck string `validate:"required"`
	Cctiff    string `validate:"required"`
	// Viewer opens rasterized charts for printing. Empty disables printing.
	Viewer string
}

// DefaultTools returns the stock ArgyllCMS binary names.
func DefaultTools() Tools {
	return Tools{
		Targen:    "targen",
		Printtarg: "printtarg",
		Chartread: "chartread",
		Colprof:   "colprof",
		Profcheck: "profcheck",
		Cctiff:    "cctiff",
	}
}

// JobParams holds the job fields that the settings snapshot does not carry.
type JobParams struct {
	NumberOfPages           int
	HighDensity             bool
	GrayPatchCount          int
	CopyrightInfo           string
	PreconditionProfilePath string
}

// JobRecord is a registered profiling job.
type JobRecord struct {
	ID           string
	ProfileName  string
	SettingsPath string
	CreatedAt    time.Time
	Params       JobParams
}

// StepRecord captures one executed workflow step.
type StepRecord struct {
	JobID     string
	Step      string
	StartedAt time.Time
	EndedAt   time.Time
	Err       string
}

// OK reports whether the step finished without error.
func (s StepRecord) OK() bool {
	return s.Err == ""
}

// JobSummary aggregates a job with its latest step for reporting.
type JobSummary struct {
	Job       JobRecord
	StepCount int
	LastStep  *StepRecord
}
