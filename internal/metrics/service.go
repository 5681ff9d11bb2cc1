package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/AngelCh415/studio-metrics/internal/models"
	"github.com/AngelCh415/studio-metrics/internal/store"
)

var ErrBadQuery = errors.New("bad query")

// Service answers filtered queries over stored runs.
type Service struct{ st store.Store }

func NewService(st store.Store) *Service { return &Service{st: st} }
func norm(s string) string               { return strings.ToLower(strings.TrimSpace(s)) }

func csvSet(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, p := range strings.Split(s, ",") {
		p = norm(p)
		if p != "" {
			out[p] = struct{}{}
		}
	}
	return out
}

func inSet(set map[string]struct{}, v string) bool {
	if len(set) == 0 {
		return true
	}
	_, ok := set[norm(v)]
	return ok
}

func (s *Service) Run(ctx context.Context, runID string) (*store.Run, error) {
	return s.st.Get(ctx, runID)
}

func (s *Service) Runs(ctx context.Context) ([]store.RunInfo, error) { return s.st.List(ctx) }

type GroupPage struct {
	Total  int                  `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
	Rows   []models.GroupResult `json:"rows"`
}

// QueryGroups filters a run's results by teacher, location and period
// (comma separated, case-insensitive) and pages them. "studio=only" keeps the
// location rollups, "studio=exclude" drops them. Result order is kept.
func (s *Service) QueryGroups(ctx context.Context, runID string, v url.Values) (GroupPage, error) {
	run, err := s.st.Get(ctx, runID)
	if err != nil {
		return GroupPage{}, err
	}
	teachers := csvSet(v.Get("teacher"))
	locations := csvSet(v.Get("location"))
	periods := csvSet(v.Get("period"))
	studio := norm(v.Get("studio"))
	switch studio {
	case "", "only", "exclude":
	default:
		return GroupPage{}, fmt.Errorf("%w: studio must be only or exclude, got %q", ErrBadQuery, v.Get("studio"))
	}
	limit := atoiDef(v.Get("limit"), 100)
	offset := atoiDef(v.Get("offset"), 0)

	var rows []models.GroupResult
	for _, g := range run.Result.Groups {
		if (studio == "only" && !g.IsStudio()) || (studio == "exclude" && g.IsStudio()) {
			continue
		}
		if !inSet(teachers, g.TeacherName) || !inSet(locations, g.Location) {
			continue
		}
		// rollups span every period
		if !g.IsStudio() && !inSet(periods, g.Period) {
			continue
		}
		rows = append(rows, g)
	}

	limit, offset = clampLimitOffset(limit, offset, len(rows))
	return GroupPage{Total: len(rows), Limit: limit, Offset: offset, Rows: paginate(rows, limit, offset)}, nil
}

// Audit returns one named audit list of a run.
func (s *Service) Audit(ctx context.Context, runID, list string, v url.Values) ([]models.AuditRecord, error) {
	run, err := s.st.Get(ctx, runID)
	if err != nil {
		return nil, err
	}
	recs, ok := run.Result.Audit.List(list)
	if !ok {
		return nil, fmt.Errorf("%w: unknown audit list %q", ErrBadQuery, list)
	}
	limit, offset := clampLimitOffset(atoiDef(v.Get("limit"), 0), atoiDef(v.Get("offset"), 0), len(recs))
	return paginate(recs, limit, offset), nil
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}
func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = n
	}
	if limit > 1000 {
		limit = 1000
	} // tope sano
	if offset > n {
		offset = n
	}
	return limit, offset
}
