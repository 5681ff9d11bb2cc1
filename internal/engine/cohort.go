package engine

import (
	"sort"

	"github.com/AngelCh415/studio-metrics/internal/models"
	"github.com/AngelCh415/studio-metrics/internal/normalize"
	"github.com/AngelCh415/studio-metrics/internal/pattern"
)

type groupKey struct {
	Teacher  string
	Location string
	Period   string
}

// dimensions are the sorted axes groups are enumerated over.
type dimensions struct {
	teachers  []string
	locations []string
	periods   []string // newest first
}

func enumerate(clients []models.EnrichedClient, bookings []models.Booking) dimensions {
	teachers := map[string]struct{}{}
	for _, b := range bookings {
		if b.Teacher != "" && b.Teacher != models.UnknownTeacher {
			teachers[b.Teacher] = struct{}{}
		}
	}
	locations := map[string]struct{}{}
	periods := map[string]struct{}{}
	for _, c := range clients {
		if c.FirstVisitLocation != "" {
			locations[c.FirstVisitLocation] = struct{}{}
		}
		if p := normalize.Period(c.FirstVisitAt); p != "" {
			periods[p] = struct{}{}
		}
	}

	d := dimensions{
		teachers:  sortedKeys(teachers),
		locations: sortedKeys(locations),
		periods:   sortedKeys(periods),
	}
	sort.SliceStable(d.periods, func(i, j int) bool {
		pi, _ := normalize.ParsePeriod(d.periods[i])
		pj, _ := normalize.ParsePeriod(d.periods[j])
		return pi.After(pj)
	})
	return d
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// partition groups clients by teacher, location and period, keeping input order.
func partition(clients []models.EnrichedClient) map[groupKey][]models.EnrichedClient {
	out := make(map[groupKey][]models.EnrichedClient)
	for _, c := range clients {
		k := groupKey{Teacher: c.Teacher, Location: c.FirstVisitLocation, Period: normalize.Period(c.FirstVisitAt)}
		out[k] = append(out[k], c)
	}
	return out
}

type cohortMember struct {
	models.EnrichedClient
	Bucket pattern.Bucket
}

// cohort is a group's new clients after exclusion, with bucket counts.
type cohort struct {
	key       groupKey
	members   []cohortMember
	trials    int
	referrals int
	hosted    int
	influence int
	others    int
}

func (c *cohort) size() int { return len(c.members) }

// classify drops excluded clients, recording why, and buckets the rest.
// ok is false when nobody is left.
func classify(key groupKey, clients []models.EnrichedClient, rs Rules, audit *models.Audit) (cohort, bool) {
	c := cohort{key: key}
	for _, cl := range clients {
		if reason, excluded := rs.Excluded(cl.MembershipUsed, cl.FirstVisit); excluded {
			audit.Excluded = append(audit.Excluded, auditRecord(cl, key.Period, reason))
			continue
		}
		b := rs.Classify(cl.MembershipUsed, cl.FirstVisit)
		c.members = append(c.members, cohortMember{EnrichedClient: cl, Bucket: b})
		switch b {
		case pattern.Trial:
			c.trials++
		case pattern.Referral:
			c.referrals++
		case pattern.Hosted:
			c.hosted++
		case pattern.Influencer:
			c.influence++
		}
	}
	if len(c.members) == 0 {
		return c, false
	}
	c.others = c.size() - (c.trials + c.referrals + c.hosted + c.influence)

	for _, m := range c.members {
		rec := auditRecord(m.EnrichedClient, key.Period, "First time visitor")
		audit.Included = append(audit.Included, rec)
		audit.NewClients = append(audit.NewClients, rec)
	}
	return c, true
}

func auditRecord(c models.EnrichedClient, period, reason string) models.AuditRecord {
	return models.AuditRecord{NewVisitor: c.NewVisitor, Teacher: c.Teacher, Period: period, Reason: reason}
}
