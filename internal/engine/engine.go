package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AngelCh415/studio-metrics/internal/models"
	"github.com/AngelCh415/studio-metrics/internal/normalize"
	"github.com/AngelCh415/studio-metrics/internal/pattern"
	"github.com/AngelCh415/studio-metrics/internal/telemetry"
)

// Input holds the three raw exports. Sales may be empty.
type Input struct {
	NewVisitors []models.Row
	Bookings    []models.Row
	Sales       []models.Row
}

// Rules is the classification table the engine applies. *pattern.Ruleset
// implements it.
type Rules interface {
	Excluded(membershipUsed, firstVisit string) (reason string, excluded bool)
	Classify(membershipUsed, firstVisit string) pattern.Bucket
	QualifyingPurchase(category, item string) bool
}

type Engine struct {
	rules Rules
	log   *slog.Logger
}

func New(rules Rules, log *slog.Logger) *Engine {
	if rules == nil {
		rules = pattern.MustDefault()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{rules: rules, log: log}
}

type bookingTally struct {
	total, noShows, lateCancels int
}

// run carries state between stages of one pipeline run.
type run struct {
	visitors []models.NewVisitor
	bookings []models.Booking
	sales    []models.Sale
	clients  []models.EnrichedClient

	dims    dimensions
	members map[groupKey][]models.EnrichedClient

	bookingsByEmail map[string][]models.Booking
	salesByEmail    map[string][]models.Sale
	tallies         map[groupKey]bookingTally

	res *models.Result
}

// Run executes Clean, Link, Enumerate, per-group Compute and Aggregate in
// order, reporting progress before each stage. Data problems never fail a
// run; only cancellation of ctx between stages does.
func (e *Engine) Run(ctx context.Context, in Input, progress ProgressReporter) (*models.Result, error) {
	if progress == nil {
		progress = Discard
	}
	start := time.Now()
	r := &run{res: &models.Result{}}

	stages := []struct {
		pct  int
		step string
		fn   func(*run)
	}{
		{10, "Cleaning data", func(r *run) { e.clean(r, in) }},
		{30, "Linking first visits to teachers", e.link},
		{50, "Enumerating teacher, location and period groups", e.enumerate},
		{70, "Computing group metrics", e.compute},
		{90, "Aggregating studio totals", e.aggregate},
	}
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			telemetry.PipelineRuns.WithLabelValues("cancelled").Inc()
			return nil, fmt.Errorf("pipeline cancelled before %q: %w", s.step, err)
		}
		progress.Report(Progress{Percent: s.pct, Step: s.step})
		s.fn(r)
	}
	progress.Report(Progress{Percent: 100, Step: "Done"})

	telemetry.PipelineRuns.WithLabelValues("ok").Inc()
	telemetry.PipelineDuration.Observe(time.Since(start).Seconds())
	sum := r.res.Summary
	e.log.Info("pipeline complete",
		slog.Int("new_visitors", sum.NewVisitorRows),
		slog.Int("bookings", sum.BookingRows),
		slog.Int("sales", sum.SaleRows),
		slog.Int("groups", sum.TeacherGroups),
		slog.Int("studios", sum.Studios),
		slog.Int("excluded", sum.ExcludedClients),
		slog.Int("unlinked", sum.UnlinkedClients),
		slog.Duration("elapsed", time.Since(start)))
	return r.res, nil
}

func (e *Engine) clean(r *run, in Input) {
	n := normalize.New(e.log)
	r.visitors = n.NewVisitors(in.NewVisitors)
	r.bookings = n.Bookings(in.Bookings)
	r.sales = n.Sales(in.Sales)

	r.res.Summary.NewVisitorRows = len(r.visitors)
	r.res.Summary.BookingRows = len(r.bookings)
	r.res.Summary.SaleRows = len(r.sales)
}

// link tags visitors with teachers. Visitors that cannot be placed in a
// teacher x location x period group go to the unlinked audit list instead.
func (e *Engine) link(r *run) {
	linked := LinkVisits(r.visitors, r.bookings)
	r.clients = make([]models.EnrichedClient, 0, len(linked))
	for _, c := range linked {
		period := normalize.Period(c.FirstVisitAt)
		var reason string
		switch {
		case c.Teacher == models.UnknownTeacher:
			reason = "No booking matched first visit"
		case period == "":
			reason = fmt.Sprintf("First visit date %q not parseable", c.FirstVisitAt)
			r.res.Summary.UndatedClients++
		case c.FirstVisitLocation == "":
			reason = "First visit location missing"
		default:
			r.clients = append(r.clients, c)
			continue
		}
		r.res.Audit.Unlinked = append(r.res.Audit.Unlinked, auditRecord(c, period, reason))
	}
	r.res.Summary.LinkedClients = len(r.clients)
	r.res.Summary.UnlinkedClients = len(r.res.Audit.Unlinked)
	telemetry.ClientsUnlinked.Add(float64(r.res.Summary.UnlinkedClients))
}

func (e *Engine) enumerate(r *run) {
	r.dims = enumerate(r.clients, r.bookings)
	r.members = partition(r.clients)

	r.bookingsByEmail = make(map[string][]models.Booking)
	r.tallies = make(map[groupKey]bookingTally)
	for _, b := range r.bookings {
		r.bookingsByEmail[b.CustomerEmail] = append(r.bookingsByEmail[b.CustomerEmail], b)

		k := groupKey{Teacher: b.Teacher, Location: b.Location, Period: normalize.Period(b.ClassDate)}
		t := r.tallies[k]
		t.total++
		if b.NoShow == "YES" {
			t.noShows++
		}
		if b.LateCancelled == "YES" {
			t.lateCancels++
		}
		r.tallies[k] = t
	}
	r.salesByEmail = indexSales(r.sales)

	r.res.Teachers = r.dims.teachers
	r.res.Locations = r.dims.locations
	r.res.Periods = r.dims.periods
}

func (e *Engine) compute(r *run) {
	for _, t := range r.dims.teachers {
		for _, l := range r.dims.locations {
			for _, p := range r.dims.periods {
				k := groupKey{Teacher: t, Location: l, Period: p}
				clients := r.members[k]
				if len(clients) == 0 {
					continue
				}
				g, audit, ok := e.computeGroup(k, clients, r)
				mergeAudit(&r.res.Audit, audit)
				r.res.Summary.ExcludedClients += len(audit.Excluded)
				if !ok {
					continue
				}
				r.res.Groups = append(r.res.Groups, g)
				r.res.Summary.TeacherGroups++
				telemetry.GroupsComputed.Inc()
			}
		}
	}
}

// computeGroup builds one group's result. A panic on a malformed record only
// loses that group; its partial audit entries are dropped with it.
func (e *Engine) computeGroup(k groupKey, clients []models.EnrichedClient, r *run) (g models.GroupResult, audit models.Audit, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			e.log.Warn("group computation failed",
				slog.String("teacher", k.Teacher),
				slog.String("location", k.Location),
				slog.String("period", k.Period),
				slog.Any("panic", rec))
			telemetry.GroupFailures.Inc()
			r.res.Summary.FailedGroups++
			g, audit, ok = models.GroupResult{}, models.Audit{}, false
		}
	}()

	c, ok := classify(k, clients, e.rules, &audit)
	if n := len(audit.Excluded); n > 0 {
		telemetry.ClientsExcluded.Add(float64(n))
	}
	if !ok {
		return g, audit, false
	}
	ret := evaluateRetention(c, r.bookingsByEmail)
	conv := evaluateConversion(c, r.salesByEmail, e.rules)
	tally := r.tallies[k]

	g = models.GroupResult{
		TeacherName:       k.Teacher,
		Location:          k.Location,
		Period:            k.Period,
		NewClients:        c.size(),
		Trials:            c.trials,
		Referrals:         c.referrals,
		Hosted:            c.hosted,
		InfluencerSignups: c.influence,
		Others:            c.others,
		RetainedClients:   ret.retained,
		ConvertedClients:  conv.converted,
		TotalRevenue:      conv.revenue,

		NewClientDetails:       newClientDetails(c),
		RetainedClientDetails:  ret.details,
		ConvertedClientDetails: conv.details,
		RevenueByWeek:          conv.byWeek,
		ClientsBySource:        sourceSeries(c.trials, c.referrals, c.hosted, c.influence, c.others),

		FirstTimeBuyers:     conv.firstTimeBuyers,
		TrialConverted:      conv.trial,
		ReferralConverted:   conv.referral,
		InfluencerConverted: conv.influencer,
		Bookings:            tally.total,
		NoShows:             tally.noShows,
		LateCancellations:   tally.lateCancels,
	}
	deriveRates(&g)

	audit.Retained = ret.records
	audit.Converted = conv.records
	return g, audit, true
}

func newClientDetails(c cohort) []models.ClientDetail {
	out := make([]models.ClientDetail, 0, c.size())
	for _, m := range c.members {
		d := models.ClientDetail{
			Email:          m.Email,
			Name:           m.Name(),
			Date:           m.FirstVisitAt,
			MembershipType: m.MembershipUsed,
		}
		out = append(out, d)
	}
	return out
}

func mergeAudit(dst *models.Audit, src models.Audit) {
	dst.Included = append(dst.Included, src.Included...)
	dst.Excluded = append(dst.Excluded, src.Excluded...)
	dst.NewClients = append(dst.NewClients, src.NewClients...)
	dst.Converted = append(dst.Converted, src.Converted...)
	dst.Retained = append(dst.Retained, src.Retained...)
}

func (e *Engine) aggregate(r *run) {
	studios := Aggregate(r.res.Groups)
	r.res.Groups = append(r.res.Groups, studios...)
	r.res.Summary.Studios = len(studios)
}
