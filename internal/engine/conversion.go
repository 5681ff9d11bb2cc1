package engine

import (
	"fmt"
	"sort"

	"github.com/AngelCh415/studio-metrics/internal/models"
	"github.com/AngelCh415/studio-metrics/internal/normalize"
	"github.com/AngelCh415/studio-metrics/internal/pattern"
)

type conversion struct {
	converted       int
	revenue         float64
	details         []models.ClientDetail
	records         []models.AuditRecord
	byWeek          []models.WeeklyRevenue
	firstTimeBuyers int
	trial           int
	referral        int
	influencer      int
}

// indexSales keys every sale under each distinct payer email it carries.
func indexSales(sales []models.Sale) map[string][]models.Sale {
	out := make(map[string][]models.Sale)
	for _, s := range sales {
		if s.PayingCustomerEmail != "" {
			out[s.PayingCustomerEmail] = append(out[s.PayingCustomerEmail], s)
		}
		if s.CustomerEmail != "" && s.CustomerEmail != s.PayingCustomerEmail {
			out[s.CustomerEmail] = append(out[s.CustomerEmail], s)
		}
	}
	return out
}

func paid(s models.Sale) bool { return s.SaleValue > 0 && s.Refunded != "YES" }

// qualifies reports a sale that converts a client whose first visit was firstVisit.
func qualifies(s models.Sale, firstVisit string, rs Rules) bool {
	return paid(s) && normalize.After(s.Date, firstVisit) && rs.QualifyingPurchase(s.Category, s.Item)
}

// onOrAfter reports a sale dated on or after the first visit.
func onOrAfter(s models.Sale, firstVisit string) bool {
	if _, ok := normalize.ParseISO(s.Date); !ok {
		return false
	}
	if _, ok := normalize.ParseISO(firstVisit); !ok {
		return false
	}
	return !normalize.After(firstVisit, s.Date)
}

func evaluateConversion(c cohort, salesByEmail map[string][]models.Sale, rs Rules) conversion {
	var cv conversion
	weeks := map[string]float64{}
	seen := make(map[string]struct{}, c.size())
	for _, m := range c.members {
		if _, dup := seen[m.Email]; dup || m.Email == "" {
			continue
		}
		seen[m.Email] = struct{}{}

		var qualifying []models.Sale
		bought := false
		for _, s := range salesByEmail[m.Email] {
			if paid(s) && onOrAfter(s, m.FirstVisitAt) {
				bought = true
			}
			if qualifies(s, m.FirstVisitAt, rs) {
				qualifying = append(qualifying, s)
			}
		}
		if bought {
			cv.firstTimeBuyers++
		}
		if len(qualifying) == 0 {
			continue
		}

		sort.SliceStable(qualifying, func(i, j int) bool { return qualifying[i].Date < qualifying[j].Date })
		first := qualifying[0]
		value := 0.0
		for _, s := range qualifying {
			value += s.SaleValue
			weeks[normalize.WeekStart(s.Date)] += s.SaleValue
		}

		cv.converted++
		cv.revenue += value
		switch m.Bucket {
		case pattern.Trial:
			cv.trial++
		case pattern.Referral:
			cv.referral++
		case pattern.Influencer:
			cv.influencer++
		}
		v := value
		cv.details = append(cv.details, models.ClientDetail{
			Email:          m.Email,
			Name:           m.Name(),
			Date:           first.Date,
			Value:          &v,
			MembershipType: first.Item,
		})
		cv.records = append(cv.records, auditRecord(m.EnrichedClient, c.key.Period,
			fmt.Sprintf("Purchased %s on %s, %d qualifying sale(s) totalling %.2f", first.Item, first.Date, len(qualifying), value)))
	}

	cv.byWeek = make([]models.WeeklyRevenue, 0, len(weeks))
	for w, rev := range weeks {
		cv.byWeek = append(cv.byWeek, models.WeeklyRevenue{WeekStart: w, Revenue: rev})
	}
	sort.Slice(cv.byWeek, func(i, j int) bool { return cv.byWeek[i].WeekStart < cv.byWeek[j].WeekStart })
	return cv
}
