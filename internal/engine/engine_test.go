package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/studio-metrics/internal/models"
	"github.com/AngelCh415/studio-metrics/internal/pattern"
)

func visitor(email, firstVisit, date, location, membership string) models.Row {
	return models.Row{
		"First name":           "Client",
		"Last name":            email,
		"Email":                email,
		"Membership used":      membership,
		"First visit at":       date,
		"First visit":          firstVisit,
		"First visit location": location,
	}
}

func booking(email, class, date, location, teacher string) models.Row {
	return models.Row{
		"Customer email": email,
		"Class name":     class,
		"Class date":     date,
		"Location":       location,
		"Teacher":        teacher,
		"Cancelled":      "NO",
		"Late cancelled": "NO",
		"No show":        "NO",
	}
}

func sale(email, date, category, item, value string) models.Row {
	return models.Row{
		"Customer email": email,
		"Date":           date,
		"Category":       category,
		"Item":           item,
		"Sale value":     value,
		"Refunded":       "NO",
	}
}

func exampleInput() Input {
	return Input{
		NewVisitors: []models.Row{
			visitor("a@x.com", "Trial Class", "2024-01-05", "Downtown", "Studio Open Barre Class"),
		},
		Bookings: []models.Row{
			booking("a@x.com", "Trial Class", "2024-01-05", "Downtown", "Jane"),
			booking("a@x.com", "Barre 60", "2024-01-12", "Downtown", "Jane"),
		},
		Sales: []models.Row{
			sale("a@x.com", "2024-01-20", "membership", "Monthly Unlimited", "150"),
		},
	}
}

func runEngine(t *testing.T, in Input) *models.Result {
	t.Helper()
	res, err := New(nil, nil).Run(context.Background(), in, nil)
	require.NoError(t, err)
	return res
}

func findGroup(res *models.Result, teacher, location, period string) (models.GroupResult, bool) {
	for _, g := range res.Groups {
		if g.TeacherName == teacher && g.Location == location && g.Period == period {
			return g, true
		}
	}
	return models.GroupResult{}, false
}

func TestExampleScenario(t *testing.T) {
	res := runEngine(t, exampleInput())

	g, ok := findGroup(res, "Jane", "Downtown", "Jan 24")
	require.True(t, ok)
	assert.Equal(t, 1, g.NewClients)
	assert.Equal(t, 1, g.Trials)
	assert.Equal(t, 0, g.Others)
	assert.Equal(t, 1, g.RetainedClients)
	assert.Equal(t, 100.0, g.RetentionRate)
	assert.Equal(t, 1, g.ConvertedClients)
	assert.Equal(t, 100.0, g.ConversionRate)
	assert.Equal(t, 150.0, g.TotalRevenue)
	assert.Equal(t, 150.0, g.AverageRevenuePerClient)
	assert.Equal(t, 100.0, g.TrialToMembershipConversion)
	assert.Equal(t, 100.0, g.FirstTimeBuyerRate)
	assert.Equal(t, []models.WeeklyRevenue{{WeekStart: "2024-01-15", Revenue: 150}}, g.RevenueByWeek)
	assert.Equal(t, 1, g.ClientsBySource[0].Count)
	assert.Equal(t, "Trials", g.ClientsBySource[0].Source)

	require.Len(t, g.RetainedClientDetails, 1)
	assert.Equal(t, "2024-01-12", g.RetainedClientDetails[0].Date)
	assert.Equal(t, 1, *g.RetainedClientDetails[0].VisitCount)

	require.Len(t, g.ConvertedClientDetails, 1)
	assert.Equal(t, "2024-01-20", g.ConvertedClientDetails[0].Date)
	assert.Equal(t, "Monthly Unlimited", g.ConvertedClientDetails[0].MembershipType)
	assert.Equal(t, 150.0, *g.ConvertedClientDetails[0].Value)

	assert.Equal(t, []string{"Jane"}, res.Teachers)
	assert.Equal(t, []string{"Downtown"}, res.Locations)
	assert.Equal(t, []string{"Jan 24"}, res.Periods)

	require.Len(t, res.Audit.NewClients, 1)
	assert.Equal(t, "First time visitor", res.Audit.NewClients[0].Reason)
	assert.Len(t, res.Audit.Included, 1)
	assert.Len(t, res.Audit.Retained, 1)
	assert.Len(t, res.Audit.Converted, 1)

	studio, ok := findGroup(res, models.StudioTeacher, "Downtown", "")
	require.True(t, ok)
	assert.Equal(t, 1, studio.NewClients)
	assert.Equal(t, 150.0, studio.TotalRevenue)
	assert.Equal(t, 100.0, studio.RetentionRate)
}

func TestExclusionScenario(t *testing.T) {
	in := exampleInput()
	in.NewVisitors = append(in.NewVisitors,
		visitor("s@x.com", "Trial Class", "2024-01-05", "Downtown", "Staff Complimentary"))
	in.Bookings = append(in.Bookings,
		booking("s@x.com", "Trial Class", "2024-01-05", "Downtown", "Jane"))

	res := runEngine(t, in)

	require.Len(t, res.Audit.Excluded, 1)
	ex := res.Audit.Excluded[0]
	assert.Equal(t, "s@x.com", ex.Email)
	assert.Contains(t, ex.Reason, "staff")
	assert.Equal(t, 1, res.Summary.ExcludedClients)

	for _, g := range res.Groups {
		assert.Equal(t, 1, g.NewClients, "%s/%s", g.TeacherName, g.Location)
		for _, d := range g.NewClientDetails {
			assert.NotEqual(t, "s@x.com", d.Email)
		}
	}
}

func TestGroupSkippedWhenEveryoneExcluded(t *testing.T) {
	res := runEngine(t, Input{
		NewVisitors: []models.Row{visitor("f@x.com", "Friends Barre", "2024-02-01", "Uptown", "Single Class")},
		Bookings:    []models.Row{booking("f@x.com", "Friends Barre", "2024-02-01", "Uptown", "Kim")},
	})
	assert.Empty(t, res.Groups)
	require.Len(t, res.Audit.Excluded, 1)
	assert.Contains(t, res.Audit.Excluded[0].Reason, "First visit")
}

func TestConversionDateGuard(t *testing.T) {
	in := exampleInput()
	in.Sales = []models.Row{
		sale("a@x.com", "2024-01-05", "membership", "Monthly Unlimited", "150"),
		sale("a@x.com", "2024-01-04", "membership", "Monthly Unlimited", "150"),
	}
	res := runEngine(t, in)

	g, ok := findGroup(res, "Jane", "Downtown", "Jan 24")
	require.True(t, ok)
	assert.Equal(t, 0, g.ConvertedClients)
	assert.Equal(t, 0.0, g.ConversionRate)
	assert.Equal(t, 0.0, g.TotalRevenue)
	assert.Equal(t, 0.0, g.AverageRevenuePerClient)
	// same-day purchase still counts as buying
	assert.Equal(t, 1, g.FirstTimeBuyers)
}

func TestConversionFilters(t *testing.T) {
	in := exampleInput()
	refunded := sale("a@x.com", "2024-01-21", "membership", "Monthly Unlimited", "150")
	refunded["Refunded"] = "YES"
	viaPayer := sale("", "2024-02-02", "class pack", "10 Pack", "$200.00")
	viaPayer["Paying customer email"] = "a@x.com"
	in.Sales = []models.Row{
		refunded,
		sale("a@x.com", "2024-01-21", "Product", "Grip Socks", "15"),
		sale("a@x.com", "2024-01-22", "Money-Credit", "Gift Card", "50"),
		sale("a@x.com", "2024-01-23", "intro", "Newcomers 2 For 1", "40"),
		sale("a@x.com", "2024-01-24", "membership", "Free Week", "0"),
		sale("a@x.com", "2024-01-25", "membership", "Monthly Unlimited", "150"),
		viaPayer,
	}
	res := runEngine(t, in)

	g, ok := findGroup(res, "Jane", "Downtown", "Jan 24")
	require.True(t, ok)
	assert.Equal(t, 1, g.ConvertedClients)
	assert.Equal(t, 350.0, g.TotalRevenue)
	assert.Equal(t, 350.0, g.AverageRevenuePerClient)
	assert.Equal(t, "Monthly Unlimited", g.ConvertedClientDetails[0].MembershipType)
	assert.Equal(t, "2024-01-25", g.ConvertedClientDetails[0].Date)
	assert.Equal(t, []models.WeeklyRevenue{
		{WeekStart: "2024-01-22", Revenue: 150},
		{WeekStart: "2024-01-29", Revenue: 200},
	}, g.RevenueByWeek)
}

func TestNoSalesDegradesToZero(t *testing.T) {
	in := exampleInput()
	in.Sales = nil
	res := runEngine(t, in)

	for _, g := range res.Groups {
		assert.Equal(t, 0, g.ConvertedClients)
		assert.Equal(t, 0.0, g.ConversionRate)
		assert.Equal(t, 0.0, g.TotalRevenue)
		assert.Empty(t, g.RevenueByWeek)
		assert.Equal(t, 1, g.RetainedClients)
	}
}

func TestRetentionRules(t *testing.T) {
	cancelled := booking("a@x.com", "Barre 60", "2024-01-10", "Downtown", "Jane")
	cancelled["Cancelled"] = "YES"
	noShow := booking("a@x.com", "Barre 60", "2024-01-11", "Downtown", "Jane")
	noShow["No show"] = "YES"
	late := booking("a@x.com", "Barre 60", "2024-01-12", "Downtown", "Jane")
	late["Late cancelled"] = "YES"
	missingFlags := booking("a@x.com", "Barre 60", "2024-01-13", "Downtown", "Jane")
	delete(missingFlags, "No show")

	in := exampleInput()
	in.Bookings = []models.Row{
		booking("a@x.com", "Trial Class", "2024-01-05", "Downtown", "Jane"),
		booking("a@x.com", "Barre 45", "2024-01-05", "Downtown", "Jane"), // same day
		cancelled, noShow, late, missingFlags,
	}
	res := runEngine(t, in)

	g, ok := findGroup(res, "Jane", "Downtown", "Jan 24")
	require.True(t, ok)
	assert.Equal(t, 0, g.RetainedClients)
	assert.Equal(t, 0.0, g.RetentionRate)
	assert.Equal(t, 6, g.Bookings)
	assert.InDelta(t, 100.0/6, g.NoShowRate, 1e-9)
	assert.InDelta(t, 100.0/6, g.LateCancellationRate, 1e-9)
}

func TestRetentionCountsVisitsAndEarliest(t *testing.T) {
	in := exampleInput()
	in.Bookings = append(in.Bookings,
		booking("a@x.com", "Barre 60", "2024-01-08", "Uptown", "Kim"),
		booking("a@x.com", "Barre 60", "2024-02-20", "Downtown", "Jane"))
	res := runEngine(t, in)

	g, ok := findGroup(res, "Jane", "Downtown", "Jan 24")
	require.True(t, ok)
	assert.Equal(t, 1, g.RetainedClients)
	require.Len(t, g.RetainedClientDetails, 1)
	assert.Equal(t, 3, *g.RetainedClientDetails[0].VisitCount)
	assert.Equal(t, "2024-01-08", g.RetainedClientDetails[0].Date)
}

func TestRetentionMonotonicity(t *testing.T) {
	base := Input{
		NewVisitors: []models.Row{
			visitor("a@x.com", "Barre", "2024-01-05", "Downtown", "Single Class"),
			visitor("b@x.com", "Barre", "2024-01-06", "Downtown", "Single Class"),
			visitor("c@x.com", "Barre", "2024-02-06", "Uptown", "Single Class"),
		},
		Bookings: []models.Row{
			booking("a@x.com", "Barre", "2024-01-05", "Downtown", "Jane"),
			booking("b@x.com", "Barre", "2024-01-06", "Downtown", "Jane"),
			booking("c@x.com", "Barre", "2024-02-06", "Uptown", "Kim"),
			booking("a@x.com", "Barre", "2024-01-09", "Downtown", "Jane"),
		},
	}
	before := runEngine(t, base)

	more := base
	more.Bookings = append(append([]models.Row{}, base.Bookings...),
		booking("b@x.com", "Barre", "2024-01-30", "Uptown", "Kim"))
	after := runEngine(t, more)

	gb, _ := findGroup(before, "Jane", "Downtown", "Jan 24")
	ga, _ := findGroup(after, "Jane", "Downtown", "Jan 24")
	assert.Equal(t, gb.RetainedClients+1, ga.RetainedClients)

	ob, _ := findGroup(before, "Kim", "Uptown", "Feb 24")
	oa, _ := findGroup(after, "Kim", "Uptown", "Feb 24")
	assert.Equal(t, ob.RetainedClients, oa.RetainedClients)
	assert.Equal(t, ob.NewClients, oa.NewClients)
	assert.Equal(t, ob.ConvertedClients, oa.ConvertedClients)
}

func TestUnknownTeacherIsAuditedNotAggregated(t *testing.T) {
	in := exampleInput()
	in.NewVisitors = append(in.NewVisitors,
		visitor("u@x.com", "Trial Class", "2024-01-05", "Downtown", "Studio Open Barre Class"))
	res := runEngine(t, in)

	assert.Equal(t, 1, res.Summary.UnlinkedClients)
	assert.Equal(t, 1, res.Summary.LinkedClients)
	require.Len(t, res.Audit.Unlinked, 1)
	assert.Equal(t, models.UnknownTeacher, res.Audit.Unlinked[0].Teacher)
	assert.NotContains(t, res.Teachers, models.UnknownTeacher)

	studio, ok := findGroup(res, models.StudioTeacher, "Downtown", "")
	require.True(t, ok)
	assert.Equal(t, 1, studio.NewClients)
}

func TestUnplaceableVisitorsAreAudited(t *testing.T) {
	in := exampleInput()
	in.NewVisitors = append(in.NewVisitors,
		visitor("blank@x.com", "Trial Class", "2024-01-05", "Downtown", ""),
		visitor("vague@x.com", "Trial Class", "sometime last week", "Downtown", ""),
		visitor("nowhere@x.com", "Trial Class", "2024-01-05", "", ""))
	in.Bookings = append(in.Bookings,
		booking("blank@x.com", "Trial Class", "2024-01-05", "Downtown", ""),
		booking("vague@x.com", "Trial Class", "sometime last week", "Downtown", "Jane"),
		booking("nowhere@x.com", "Trial Class", "2024-01-05", "", "Jane"))

	res := runEngine(t, in)

	assert.Equal(t, 4, res.Summary.NewVisitorRows)
	assert.Equal(t, 1, res.Summary.LinkedClients)
	assert.Equal(t, 3, res.Summary.UnlinkedClients)
	assert.Equal(t, 1, res.Summary.UndatedClients)

	reasons := map[string]string{}
	for _, rec := range res.Audit.Unlinked {
		reasons[rec.Email] = rec.Reason
	}
	assert.Equal(t, "No booking matched first visit", reasons["blank@x.com"])
	assert.Contains(t, reasons["vague@x.com"], "not parseable")
	assert.Equal(t, "First visit location missing", reasons["nowhere@x.com"])

	assert.Equal(t, []string{"Jane"}, res.Teachers)
	assert.Equal(t, []string{"Downtown"}, res.Locations)
	g, ok := findGroup(res, "Jane", "Downtown", "Jan 24")
	require.True(t, ok)
	assert.Equal(t, 1, g.NewClients)
}

// failingRules panics on one membership value, standing in for a malformed record.
type failingRules struct {
	Rules
	trigger string
}

func (f failingRules) Excluded(membershipUsed, firstVisit string) (string, bool) {
	if membershipUsed == f.trigger {
		panic("malformed record")
	}
	return f.Rules.Excluded(membershipUsed, firstVisit)
}

func TestFailedGroupDoesNotAffectSiblings(t *testing.T) {
	baseline := runEngine(t, exampleInput())
	want, ok := findGroup(baseline, "Jane", "Downtown", "Jan 24")
	require.True(t, ok)

	in := exampleInput()
	in.NewVisitors = append(in.NewVisitors,
		visitor("s@x.com", "Barre", "2024-01-08", "Uptown", "Staff Complimentary"),
		visitor("m@x.com", "Barre", "2024-01-08", "Uptown", "Corrupt"))
	in.Bookings = append(in.Bookings,
		booking("s@x.com", "Barre", "2024-01-08", "Uptown", "Kim"),
		booking("m@x.com", "Barre", "2024-01-08", "Uptown", "Kim"))

	rules := failingRules{Rules: pattern.MustDefault(), trigger: "Corrupt"}
	res, err := New(rules, nil).Run(context.Background(), in, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Summary.FailedGroups)
	assert.Equal(t, 1, res.Summary.TeacherGroups)
	_, ok = findGroup(res, "Kim", "Uptown", "Jan 24")
	assert.False(t, ok)

	got, ok := findGroup(res, "Jane", "Downtown", "Jan 24")
	require.True(t, ok)
	assert.Equal(t, want, got)

	// the staff exclusion was recorded before the failure and goes with the group
	assert.Empty(t, res.Audit.Excluded)
	assert.Equal(t, 0, res.Summary.ExcludedClients)
	for _, rec := range res.Audit.Included {
		assert.Equal(t, "a@x.com", rec.Email)
	}

	_, ok = findGroup(res, models.StudioTeacher, "Uptown", "")
	assert.False(t, ok)
	assert.Equal(t, 1, res.Summary.Studios)
}

func TestBlankEmailCountsAsNewClientOnly(t *testing.T) {
	res := runEngine(t, Input{
		NewVisitors: []models.Row{visitor("", "Barre", "2024-01-05", "Downtown", "")},
		Bookings: []models.Row{
			booking("", "Barre", "2024-01-05", "Downtown", "Jane"),
			booking("", "Barre", "2024-01-12", "Downtown", "Jane"),
		},
		Sales: []models.Row{sale("", "2024-01-20", "membership", "Monthly Unlimited", "150")},
	})

	g, ok := findGroup(res, "Jane", "Downtown", "Jan 24")
	require.True(t, ok)
	assert.Equal(t, 1, g.NewClients)
	assert.Equal(t, 0, g.RetainedClients)
	assert.Equal(t, 0, g.ConvertedClients)
	assert.Empty(t, res.Audit.Retained)
	assert.Empty(t, res.Audit.Converted)
}

func TestPeriodsNewestFirstAndOrdering(t *testing.T) {
	res := runEngine(t, Input{
		NewVisitors: []models.Row{
			visitor("a@x.com", "Barre", "2023-12-05", "Downtown", ""),
			visitor("b@x.com", "Barre", "2024-02-05", "Downtown", ""),
			visitor("c@x.com", "Barre", "2024-01-05", "Uptown", ""),
		},
		Bookings: []models.Row{
			booking("a@x.com", "Barre", "2023-12-05", "Downtown", "Zoe"),
			booking("b@x.com", "Barre", "2024-02-05", "Downtown", "Amy"),
			booking("c@x.com", "Barre", "2024-01-05", "Uptown", "Amy"),
		},
	})

	assert.Equal(t, []string{"Feb 24", "Jan 24", "Dec 23"}, res.Periods)
	assert.Equal(t, []string{"Amy", "Zoe"}, res.Teachers)

	var order []string
	for _, g := range res.Groups {
		order = append(order, g.TeacherName+"/"+g.Location+"/"+g.Period)
	}
	assert.Equal(t, []string{
		"Amy/Downtown/Feb 24",
		"Amy/Uptown/Jan 24",
		"Zoe/Downtown/Dec 23",
		"All Teachers/Downtown/",
		"All Teachers/Uptown/",
	}, order)
}

func TestRunIsIdempotent(t *testing.T) {
	in := randomInput(42, 80)
	first, err := json.Marshal(runEngine(t, in))
	require.NoError(t, err)
	second, err := json.Marshal(runEngine(t, in))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestInvariantsOnRandomData(t *testing.T) {
	for _, seed := range []int64{1, 7, 99} {
		t.Run(fmt.Sprint(seed), func(t *testing.T) {
			res := runEngine(t, randomInput(seed, 120))

			perLocation := map[string]int{}
			revenue := map[string]float64{}
			for _, g := range res.Groups {
				assert.Equal(t, g.NewClients, g.Trials+g.Referrals+g.Hosted+g.InfluencerSignups+g.Others)
				assert.GreaterOrEqual(t, g.Others, 0)
				assert.InDelta(t, rate(g.RetainedClients, g.NewClients), g.RetentionRate, 1e-9)
				assert.InDelta(t, rate(g.ConvertedClients, g.NewClients), g.ConversionRate, 1e-9)
				if g.ConvertedClients == 0 {
					assert.Equal(t, 0.0, g.AverageRevenuePerClient)
				}
				if g.IsStudio() {
					continue
				}
				perLocation[g.Location] += g.NewClients
				revenue[g.Location] += g.TotalRevenue
			}
			placed := 0
			for _, n := range perLocation {
				placed += n
			}
			sum := res.Summary
			assert.Equal(t, sum.NewVisitorRows, placed+sum.ExcludedClients+sum.UnlinkedClients)
			assert.Equal(t, sum.NewVisitorRows, sum.LinkedClients+sum.UnlinkedClients)

			for _, g := range res.Groups {
				if !g.IsStudio() {
					continue
				}
				assert.Equal(t, perLocation[g.Location], g.NewClients)
				assert.InDelta(t, revenue[g.Location], g.TotalRevenue, 1e-6)
				assert.Equal(t, 0.0, g.NoShowRate)
			}
		})
	}
}

func TestRateIsNotClamped(t *testing.T) {
	assert.Equal(t, 150.0, rate(3, 2))
	assert.Equal(t, 0.0, rate(3, 0))
	assert.Equal(t, 50.0, rate(1, 2))
}

func TestProgressStages(t *testing.T) {
	var got []int
	_, err := New(nil, nil).Run(context.Background(), exampleInput(), ProgressFunc(func(p Progress) {
		got = append(got, p.Percent)
		assert.NotEmpty(t, p.Step)
	}))
	require.NoError(t, err)
	assert.Equal(t, []int{10, 30, 50, 70, 90, 100}, got)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := New(nil, nil).Run(ctx, exampleInput(), ProgressFunc(func(Progress) {
		calls++
		if calls == 2 {
			cancel()
		}
	}))
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls)
}

// randomInput builds a messy but well-typed data set from a fixed seed.
func randomInput(seed int64, n int) Input {
	f := gofakeit.New(seed)
	teachers := []string{"Jane", "Kim", "Lou"}
	locations := []string{"Downtown", "Uptown"}
	memberships := []string{
		"Studio Open Barre Class", "Newcomers 2 For 1", "Studio Complimentary Referral Class",
		"Influencer Link", "Single Class", "Staff Complimentary", "",
	}
	classes := []string{"Barre 60", "Hosted Bridal Shower", "Outdoor Barre", "Family Class", "Stretch"}
	categories := []string{"membership", "class pack", "product", "money-credit"}
	items := []string{"Monthly Unlimited", "10 Pack", "Newcomers 2 for 1", "Socks"}
	flags := []string{"NO", "NO", "NO", "YES"}

	var in Input
	for i := 0; i < n; i++ {
		email := fmt.Sprintf("%s%d@example.com", f.Username(), i)
		day := fmt.Sprintf("2024-%02d-%02d", f.Number(1, 4), f.Number(1, 28))
		class := f.RandomString(classes)
		loc := f.RandomString(locations)

		in.NewVisitors = append(in.NewVisitors, visitor(email, class, day, loc, f.RandomString(memberships)))
		if f.Number(0, 9) > 0 {
			in.Bookings = append(in.Bookings, booking(email, class, day, loc, f.RandomString(teachers)))
		}
		for j := f.Number(0, 3); j > 0; j-- {
			b := booking(email, "Barre 60", fmt.Sprintf("2024-%02d-%02d", f.Number(1, 5), f.Number(1, 28)), loc, f.RandomString(teachers))
			b["Cancelled"] = f.RandomString(flags)
			b["No show"] = f.RandomString(flags)
			in.Bookings = append(in.Bookings, b)
		}
		for j := f.Number(0, 2); j > 0; j-- {
			s := sale(email, fmt.Sprintf("2024-%02d-%02d", f.Number(1, 5), f.Number(1, 28)),
				f.RandomString(categories), f.RandomString(items), fmt.Sprintf("$%.2f", f.Price(0, 300)))
			s["Refunded"] = f.RandomString(flags)
			in.Sales = append(in.Sales, s)
		}
	}
	return in
}
