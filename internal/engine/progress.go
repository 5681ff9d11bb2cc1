package engine

import (
	"log/slog"

	"github.com/AngelCh415/studio-metrics/internal/telemetry"
)

type Progress struct {
	Percent int    `json:"percentage"`
	Step    string `json:"step_description"`
}

// ProgressReporter receives coarse progress at each pipeline stage boundary.
type ProgressReporter interface {
	Report(Progress)
}

type ProgressFunc func(Progress)

func (f ProgressFunc) Report(p Progress) { f(p) }

// Discard drops progress updates.
var Discard ProgressReporter = ProgressFunc(func(Progress) {})

// LogProgress logs each update and mirrors it on the progress gauge.
func LogProgress(log *slog.Logger) ProgressReporter {
	return ProgressFunc(func(p Progress) {
		telemetry.PipelineProgress.Set(float64(p.Percent))
		log.Info("pipeline progress", slog.Int("percent", p.Percent), slog.String("step", p.Step))
	})
}

// Tee fans progress out to several reporters.
func Tee(rs ...ProgressReporter) ProgressReporter {
	return ProgressFunc(func(p Progress) {
		for _, r := range rs {
			if r != nil {
				r.Report(p)
			}
		}
	})
}
