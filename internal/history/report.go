// Package history builds the job history report.
package history

import (
	"context"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/iccgen/internal/model"
	"github.com/verte-zerg/iccgen/internal/paper"
	"github.com/verte-zerg/iccgen/internal/store"
)

// Headers are the report column titles.
var Headers = []string{"Profile", "Created", "Pages", "Density", "Steps", "Last step", "Status"}

// RightAlign marks the numeric report columns.
var RightAlign = map[int]bool{2: true, 4: true}

// Report contains precomputed data for history rendering.
type Report struct {
	Jobs []model.JobSummary
	Now  time.Time
}

// BuildReport loads the newest jobs, at most limit when positive.
func BuildReport(ctx context.Context, st *store.Store, limit int) (Report, error) {
	jobs, err := st.ListJobSummaries(ctx, limit)
	if err != nil {
		return Report{}, err
	}
	return Report{Jobs: jobs, Now: time.Now()}, nil
}

// Rows renders one table row per job.
func (r Report) Rows() [][]string {
	rows := make([][]string, 0, len(r.Jobs))
	for _, j := range r.Jobs {
		rows = append(rows, r.row(j))
	}
	return rows
}

func (r Report) row(s model.JobSummary) []string {
	last, status := "-", "-"
	if s.LastStep != nil {
		last = s.LastStep.Step
		status = "ok"
		if !s.LastStep.OK() {
			status = "failed"
		}
	}
	return []string{
		s.Job.ProfileName,
		humanize.RelTime(s.Job.CreatedAt, r.Now, "ago", "from now"),
		strconv.Itoa(s.Job.Params.NumberOfPages),
		densityLabel(s.Job.Params.HighDensity),
		strconv.Itoa(s.StepCount),
		last,
		status,
	}
}

func densityLabel(high bool) string {
	if paper.DensityFor(high) == paper.HighDensity {
		return "high"
	}
	return "normal"
}
