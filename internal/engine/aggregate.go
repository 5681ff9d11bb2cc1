package engine

import (
	"sort"

	"github.com/AngelCh415/studio-metrics/internal/models"
)

// rate is numerator/denominator*100, or 0 for an empty denominator. It is not
// clamped: contrived inputs above 100% are preserved.
func rate(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den) * 100
}

func safeDiv(a float64, b int) float64 {
	if b <= 0 {
		return 0
	}
	return a / float64(b)
}

// deriveRates fills the count-derived rates of g. Booking rates come from
// g's own booking subset and are skipped for studio rollups.
func deriveRates(g *models.GroupResult) {
	g.RetentionRate = rate(g.RetainedClients, g.NewClients)
	g.ConversionRate = rate(g.ConvertedClients, g.NewClients)
	g.FirstTimeBuyerRate = rate(g.FirstTimeBuyers, g.NewClients)
	g.InfluencerConversionRate = rate(g.InfluencerConverted, g.InfluencerSignups)
	g.ReferralConversionRate = rate(g.ReferralConverted, g.Referrals)
	g.TrialToMembershipConversion = rate(g.TrialConverted, g.Trials)
	g.AverageRevenuePerClient = safeDiv(g.TotalRevenue, g.ConvertedClients)
	if !g.IsStudio() {
		g.NoShowRate = rate(g.NoShows, g.Bookings)
		g.LateCancellationRate = rate(g.LateCancellations, g.Bookings)
	}
}

func sourceSeries(trials, referrals, hosted, influencer, others int) []models.SourceCount {
	counts := []int{trials, referrals, hosted, influencer, others}
	out := make([]models.SourceCount, len(models.Sources))
	for i, s := range models.Sources {
		out[i] = models.SourceCount{Source: s, Count: counts[i]}
	}
	return out
}

// studioFold accumulates per-location rollups in fold order.
type studioFold struct {
	order []string
	byLoc map[string]*models.GroupResult
}

func newStudioFold() *studioFold {
	return &studioFold{byLoc: make(map[string]*models.GroupResult)}
}

func (f *studioFold) add(g models.GroupResult) {
	s, ok := f.byLoc[g.Location]
	if !ok {
		s = &models.GroupResult{
			TeacherName:     models.StudioTeacher,
			Location:        g.Location,
			ClientsBySource: sourceSeries(0, 0, 0, 0, 0),
		}
		f.byLoc[g.Location] = s
		f.order = append(f.order, g.Location)
	}

	s.NewClients += g.NewClients
	s.Trials += g.Trials
	s.Referrals += g.Referrals
	s.Hosted += g.Hosted
	s.InfluencerSignups += g.InfluencerSignups
	s.Others += g.Others
	s.RetainedClients += g.RetainedClients
	s.ConvertedClients += g.ConvertedClients
	s.TotalRevenue += g.TotalRevenue
	s.FirstTimeBuyers += g.FirstTimeBuyers
	s.TrialConverted += g.TrialConverted
	s.ReferralConverted += g.ReferralConverted
	s.InfluencerConverted += g.InfluencerConverted
	s.Bookings += g.Bookings
	s.NoShows += g.NoShows
	s.LateCancellations += g.LateCancellations

	s.NewClientDetails = append(s.NewClientDetails, g.NewClientDetails...)
	s.RetainedClientDetails = append(s.RetainedClientDetails, g.RetainedClientDetails...)
	s.ConvertedClientDetails = append(s.ConvertedClientDetails, g.ConvertedClientDetails...)

	for _, w := range g.RevenueByWeek {
		matched := false
		for i := range s.RevenueByWeek {
			if s.RevenueByWeek[i].WeekStart == w.WeekStart {
				s.RevenueByWeek[i].Revenue += w.Revenue
				matched = true
				break
			}
		}
		if !matched {
			s.RevenueByWeek = append(s.RevenueByWeek, w)
		}
	}
	for i := range s.ClientsBySource {
		if i < len(g.ClientsBySource) {
			s.ClientsBySource[i].Count += g.ClientsBySource[i].Count
		}
	}
}

// results finalizes the rollups in first-seen location order.
func (f *studioFold) results() []models.GroupResult {
	out := make([]models.GroupResult, 0, len(f.order))
	for _, loc := range f.order {
		s := *f.byLoc[loc]
		sort.SliceStable(s.RevenueByWeek, func(i, j int) bool { return s.RevenueByWeek[i].WeekStart < s.RevenueByWeek[j].WeekStart })
		deriveRates(&s)
		out = append(out, s)
	}
	return out
}

// Aggregate folds teacher-level results into one studio rollup per location.
// Rates are recomputed from summed counts, never averaged.
func Aggregate(groups []models.GroupResult) []models.GroupResult {
	f := newStudioFold()
	for _, g := range groups {
		if g.IsStudio() {
			continue
		}
		f.add(g)
	}
	return f.results()
}
