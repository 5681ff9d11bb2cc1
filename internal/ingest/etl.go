package ingest

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/AngelCh415/studio-metrics/internal/config"
	"github.com/AngelCh415/studio-metrics/internal/engine"
	"github.com/AngelCh415/studio-metrics/internal/models"
	"github.com/AngelCh415/studio-metrics/internal/store"
	"github.com/AngelCh415/studio-metrics/internal/telemetry"
)

var ErrSinkNotConfigured = errors.New("sink not configured")

// ETL runs bundles through the engine and keeps the results.
type ETL struct {
	c   HTTPClient
	st  store.Store
	eng *engine.Engine
	log *slog.Logger
	cfg config.Config
	now func() time.Time
}

func NewETL(c HTTPClient, st store.Store, eng *engine.Engine, log *slog.Logger, cfg config.Config) *ETL {
	return &ETL{c: c, st: st, eng: eng, log: log, cfg: cfg, now: time.Now}
}

// Run computes the metrics for b, or returns the stored run for an identical
// earlier upload. cached reports which one happened.
func (e *ETL) Run(ctx context.Context, b *Bundle, progress engine.ProgressReporter) (run *store.Run, cached bool, err error) {
	if b.Digest != "" {
		prev, err := e.st.ByDigest(ctx, b.Digest)
		if err == nil {
			e.log.Info("identical upload, reusing run", slog.String("run", prev.ID))
			telemetry.PipelineRuns.WithLabelValues("cached").Inc()
			return prev, true, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, false, err
		}
	}

	start := e.now()
	res, err := e.eng.Run(ctx, b.Input, engine.Tee(engine.LogProgress(e.log), progress))
	if err != nil {
		return nil, false, err
	}
	elapsed := e.now().Sub(start)

	run = &store.Run{
		ID:        store.NewRunID(),
		Digest:    b.Digest,
		CreatedAt: start.UTC(),
		ElapsedMS: elapsed.Milliseconds(),
		Files:     map[string]string{},
		Result:    res,
	}
	for role, name := range b.Names {
		run.Files[string(role)] = name
	}
	if err := e.st.Save(ctx, run); err != nil {
		telemetry.PipelineRuns.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("save run: %w", err)
	}
	e.log.Info("run complete",
		slog.String("run", run.ID),
		slog.Int("groups", len(res.Groups)),
		slog.Int("unlinked", res.Summary.UnlinkedClients),
		slog.Int("failed_groups", res.Summary.FailedGroups),
		slog.Int64("elapsed_ms", run.ElapsedMS))
	return run, false, nil
}

// RunRemote fetches the exports from the configured URLs and runs them.
func (e *ETL) RunRemote(ctx context.Context, progress engine.ProgressReporter) (*store.Run, bool, error) {
	b, err := NewFetcher(e.c, e.log, e.cfg).Fetch(ctx)
	if err != nil {
		return nil, false, err
	}
	return e.Run(ctx, b, progress)
}

type publishPayload struct {
	RunID   string               `json:"run_id"`
	Summary models.Summary       `json:"summary"`
	Groups  []models.GroupResult `json:"groups"`
}

// Publish posts a run's results to the sink, signed with HMAC-SHA256 of the
// body in X-Signature. It returns the number of rows sent.
func (e *ETL) Publish(ctx context.Context, runID string) (int, error) {
	if e.cfg.SinkURL == "" || e.cfg.SinkSecret == "" {
		return 0, ErrSinkNotConfigured
	}
	run, err := e.st.Get(ctx, runID)
	if err != nil {
		return 0, err
	}
	if len(run.Result.Groups) == 0 {
		return 0, nil
	}
	b, err := json.Marshal(publishPayload{RunID: run.ID, Summary: run.Result.Summary, Groups: run.Result.Groups})
	if err != nil {
		return 0, fmt.Errorf("encode run %s: %w", run.ID, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.SinkURL, bytes.NewReader(b))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", Sign(b, e.cfg.SinkSecret))
	resp, err := e.c.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, &statusError{code: resp.StatusCode}
	}
	e.log.Info("published run", slog.String("run", run.ID), slog.Int("rows", len(run.Result.Groups)))
	return len(run.Result.Groups), nil
}

func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
