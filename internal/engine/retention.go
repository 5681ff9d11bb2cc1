package engine

import (
	"fmt"

	"github.com/AngelCh415/studio-metrics/internal/models"
	"github.com/AngelCh415/studio-metrics/internal/normalize"
)

type retention struct {
	retained int
	details  []models.ClientDetail
	records  []models.AuditRecord
}

// attended reports a booking that was neither cancelled, late cancelled nor missed.
func attended(b models.Booking) bool {
	return b.Cancelled == "NO" && b.LateCancelled == "NO" && b.NoShow == "NO"
}

// evaluateRetention counts unique clients with at least one attended booking
// dated strictly after their first visit.
func evaluateRetention(c cohort, bookingsByEmail map[string][]models.Booking) retention {
	var r retention
	seen := make(map[string]struct{}, c.size())
	for _, m := range c.members {
		if _, dup := seen[m.Email]; dup || m.Email == "" {
			continue
		}
		seen[m.Email] = struct{}{}

		visits := 0
		earliest := ""
		for _, b := range bookingsByEmail[m.Email] {
			if !attended(b) || !normalize.After(b.ClassDate, m.FirstVisitAt) {
				continue
			}
			visits++
			if earliest == "" || b.ClassDate < earliest {
				earliest = b.ClassDate
			}
		}
		if visits == 0 {
			continue
		}

		r.retained++
		n := visits
		r.details = append(r.details, models.ClientDetail{
			Email:      m.Email,
			Name:       m.Name(),
			Date:       earliest,
			VisitCount: &n,
		})
		r.records = append(r.records, auditRecord(m.EnrichedClient, c.key.Period,
			fmt.Sprintf("Returned %d time(s) after first visit, first on %s", visits, earliest)))
	}
	return r
}
