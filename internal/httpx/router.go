package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AngelCh415/studio-metrics/internal/config"
	"github.com/AngelCh415/studio-metrics/internal/export"
	"github.com/AngelCh415/studio-metrics/internal/ingest"
	"github.com/AngelCh415/studio-metrics/internal/metrics"
	"github.com/AngelCh415/studio-metrics/internal/store"
	"github.com/AngelCh415/studio-metrics/internal/utils"
)

type runResponse struct {
	store.RunInfo
	Cached bool              `json:"cached"`
	Files  map[string]string `json:"files,omitempty"`
}

func NewRouter(log *slog.Logger, cfg config.Config, etl *ingest.ETL, mSvc *metrics.Service) http.Handler {
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
	}))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := mSvc.Runs(r.Context()); err != nil {
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
		w.Write([]byte("ready"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	mux.Route("/runs", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			runs, err := mSvc.Runs(r.Context())
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, runs)
		})

		r.With(utils.RateLimit(cfg.UploadPerMin)).Post("/", func(w http.ResponseWriter, r *http.Request) {
			files, err := readUpload(w, r, cfg.MaxUploadBytes)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			b, err := ingest.Assemble(files)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			run, cached, err := etl.Run(r.Context(), b, nil)
			if err != nil {
				writeError(w, err)
				return
			}
			writeRun(w, run, cached)
		})

		r.With(utils.RateLimit(cfg.UploadPerMin)).Post("/remote", func(w http.ResponseWriter, r *http.Request) {
			run, cached, err := etl.RunRemote(r.Context(), nil)
			if err != nil {
				if errors.Is(err, ingest.ErrMissingRole) {
					http.Error(w, err.Error(), http.StatusBadRequest)
					return
				}
				http.Error(w, err.Error(), http.StatusBadGateway)
				return
			}
			writeRun(w, run, cached)
		})

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				run, err := mSvc.Run(r.Context(), chi.URLParam(r, "id"))
				if err != nil {
					writeError(w, err)
					return
				}
				writeJSON(w, run)
			})

			r.Get("/groups", func(w http.ResponseWriter, r *http.Request) {
				page, err := mSvc.QueryGroups(r.Context(), chi.URLParam(r, "id"), r.URL.Query())
				if err != nil {
					writeError(w, err)
					return
				}
				writeJSON(w, page)
			})

			r.Get("/audit/{list}", func(w http.ResponseWriter, r *http.Request) {
				recs, err := mSvc.Audit(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "list"), r.URL.Query())
				if err != nil {
					writeError(w, err)
					return
				}
				writeJSON(w, recs)
			})

			r.Get("/export.xlsx", func(w http.ResponseWriter, r *http.Request) {
				run, err := mSvc.Run(r.Context(), chi.URLParam(r, "id"))
				if err != nil {
					writeError(w, err)
					return
				}
				name := export.TimestampedFilename("", "studio_metrics", run.CreatedAt, "xlsx")
				w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
				w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
				if err := export.WriteWorkbook(w, run.Result); err != nil {
					log.Error("xlsx export", slog.String("run", run.ID), slog.String("err", err.Error()))
				}
			})

			r.Post("/publish", func(w http.ResponseWriter, r *http.Request) {
				n, err := etl.Publish(r.Context(), chi.URLParam(r, "id"))
				if err != nil {
					writeError(w, err)
					return
				}
				writeJSON(w, map[string]any{"published": n})
			})
		})
	})

	return mux
}

// readUpload collects every file part of a multipart upload.
func readUpload(w http.ResponseWriter, r *http.Request, limit int64) ([]ingest.File, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	var files []ingest.File
	for _, hdrs := range r.MultipartForm.File {
		for _, h := range hdrs {
			f, err := h.Open()
			if err != nil {
				return nil, fmt.Errorf("open %s: %w", h.Filename, err)
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", h.Filename, err)
			}
			files = append(files, ingest.File{Name: h.Filename, Data: data})
		}
	}
	if len(files) == 0 {
		return nil, errors.New("no files in upload")
	}
	return files, nil
}

func writeRun(w http.ResponseWriter, run *store.Run, cached bool) {
	if !cached {
		w.Header().Set("Location", "/runs/"+run.ID)
	}
	code := http.StatusCreated
	if cached {
		code = http.StatusOK
	}
	writeJSONStatus(w, code, runResponse{RunInfo: run.Info(), Cached: cached, Files: run.Files})
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ingest.ErrSinkNotConfigured):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, context.DeadlineExceeded):
		http.Error(w, err.Error(), http.StatusGatewayTimeout)
	case errors.Is(err, context.Canceled):
		http.Error(w, err.Error(), 499)
	case errors.Is(err, metrics.ErrBadQuery):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v any) { writeJSONStatus(w, http.StatusOK, v) }

func writeJSONStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
