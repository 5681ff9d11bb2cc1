package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/AngelCh415/studio-metrics/internal/models"
)

var ErrNotFound = errors.New("run not found")

// Run is one stored pipeline execution.
type Run struct {
	ID        string            `json:"id"`
	Digest    string            `json:"digest"`
	CreatedAt time.Time         `json:"created_at"`
	ElapsedMS int64             `json:"elapsed_ms"`
	Files     map[string]string `json:"files,omitempty"`
	Result    *models.Result    `json:"result"`
}

type RunInfo struct {
	ID        string         `json:"id"`
	Digest    string         `json:"digest"`
	CreatedAt time.Time      `json:"created_at"`
	ElapsedMS int64          `json:"elapsed_ms"`
	Summary   models.Summary `json:"summary"`
}

func (r *Run) Info() RunInfo {
	info := RunInfo{ID: r.ID, Digest: r.Digest, CreatedAt: r.CreatedAt, ElapsedMS: r.ElapsedMS}
	if r.Result != nil {
		info.Summary = r.Result.Summary
	}
	return info
}

// Store caches run results for the host application.
type Store interface {
	Save(ctx context.Context, r *Run) error
	Get(ctx context.Context, id string) (*Run, error)
	// ByDigest finds an earlier run over identical input.
	ByDigest(ctx context.Context, digest string) (*Run, error)
	// List returns runs newest first.
	List(ctx context.Context) ([]RunInfo, error)
}

func NewRunID() string { return uuid.NewString() }
