package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AngelCh415/studio-metrics/internal/config"
	"github.com/AngelCh415/studio-metrics/internal/utils"
)

// Fetcher downloads the three exports from the URLs in config.
type Fetcher struct {
	c     HTTPClient
	log   *slog.Logger
	cfg   config.Config
	bo    utils.Backoff
	limit int64
}

func NewFetcher(c HTTPClient, log *slog.Logger, cfg config.Config) *Fetcher {
	limit := cfg.MaxUploadBytes
	if limit <= 0 {
		limit = 32 << 20
	}
	return &Fetcher{c: c, log: log, cfg: cfg, bo: DefaultBackoff(), limit: limit}
}

// WithBackoff replaces the retry policy.
func (f *Fetcher) WithBackoff(bo utils.Backoff) *Fetcher {
	f.bo = bo
	return f
}

// Fetch downloads and assembles the exports. A missing sales URL is allowed.
func (f *Fetcher) Fetch(ctx context.Context) (*Bundle, error) {
	sources := []struct {
		name string
		url  string
	}{
		{"new_visitors.csv", f.cfg.NewVisitorsURL},
		{"bookings.csv", f.cfg.BookingsURL},
		{"payments.csv", f.cfg.SalesURL},
	}
	var files []File
	for _, s := range sources {
		if s.url == "" {
			continue
		}
		data, err := GetWithRetry(ctx, f.c, s.url, f.limit, f.bo)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", s.name, err)
		}
		f.log.Info("fetched export", slog.String("file", s.name), slog.Int("bytes", len(data)))
		files = append(files, File{Name: s.name, Data: data})
	}
	return Assemble(files)
}
