package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AngelCh415/studio-metrics/internal/models"
)

func TestDate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2024-01-05", "2024-01-05"},
		{"2025-03-01, 10:15 AM", "2025-03-01"},
		{"  2025-03-01 10:15:00 ", "2025-03-01"},
		{"03/07/2024", "2024-03-07"},
		{"3/7/2024", "2024-03-07"},
		{"Jan 5, 2024, 6:30 PM", "2024-01-05"},
		{"2024-01-05T09:00:00Z", "2024-01-05"},
		{"not a date", "not a date"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Date(tt.in))
		})
	}
}

func TestMoney(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"150", 150},
		{"$1,234.50", 1234.5},
		{"-12.00", -12},
		{"USD 20", 20},
		{"", 0},
		{"n/a", 0},
		{"-", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Money(tt.in))
		})
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	in := "  Studio   Open\tBarre  Class "
	once := Clean(in)
	assert.Equal(t, "Studio Open Barre Class", once)
	assert.Equal(t, once, Clean(once))
}

func TestAfter(t *testing.T) {
	assert.True(t, After("2024-01-06", "2024-01-05"))
	assert.False(t, After("2024-01-05", "2024-01-05"))
	assert.False(t, After("2024-01-04", "2024-01-05"))
	assert.False(t, After("garbage", "2024-01-05"))
	assert.False(t, After("2024-01-06", ""))
}

func TestPeriodAndWeekStart(t *testing.T) {
	assert.Equal(t, "Jan 24", Period("2024-01-05"))
	assert.Equal(t, "", Period("soon"))

	p, ok := ParsePeriod("Jan 24")
	assert.True(t, ok)
	assert.Equal(t, 2024, p.Year())

	// 2024-01-05 is a Friday; 2024-01-01 the Monday before.
	assert.Equal(t, "2024-01-01", WeekStart("2024-01-05"))
	assert.Equal(t, "2024-01-01", WeekStart("2024-01-01"))
	assert.Equal(t, "2024-01-01", WeekStart("2024-01-07"))
	assert.Equal(t, "", WeekStart("x"))
}

func TestFirstPresent(t *testing.T) {
	row := models.Row{
		"Paying Customer Email": "",
		" Customer  Email ":     "b@x.com",
		"Teacher":               "Jane",
	}
	assert.Equal(t, "b@x.com", FirstPresent(row, "paying customer email", "customer email"))
	assert.Equal(t, "Jane", FirstPresent(row, "Teacher"))
	assert.Equal(t, "Jane", FirstPresent(row, "instructor", "teacher"))
	assert.Equal(t, "", FirstPresent(row, "missing"))
	assert.Equal(t, "", FirstPresent(nil, "teacher"))
}

func TestNormalizerRows(t *testing.T) {
	n := New(nil)

	visitors := n.NewVisitors([]models.Row{{
		"First name":           "Ana",
		"Last name":            "Diaz",
		"Email":                " a@x.com ",
		"Membership used":      " Studio  Open Barre Class",
		"First visit at":       "2024-01-05, 10:15 AM",
		"First visit":          "Trial   Class",
		"First visit location": "Downtown",
	}})
	assert.Equal(t, models.NewVisitor{
		FirstName:          "Ana",
		LastName:           "Diaz",
		Email:              "a@x.com",
		MembershipUsed:     "Studio Open Barre Class",
		FirstVisitAt:       "2024-01-05",
		FirstVisit:         "Trial Class",
		FirstVisitLocation: "Downtown",
	}, visitors[0])
	assert.Equal(t, "Ana Diaz", visitors[0].Name())

	bookings := n.Bookings([]models.Row{{
		"Class date":     "01/12/2024",
		"Teacher":        "Jane",
		"Customer email": "a@x.com",
		"Sale value":     "$25.00",
		"Cancelled":      "no",
		"Late cancelled": "NO ",
		"No show":        "YES",
	}})
	assert.Equal(t, "2024-01-12", bookings[0].ClassDate)
	assert.Equal(t, 25.0, bookings[0].SaleValue)
	assert.Equal(t, "NO", bookings[0].Cancelled)
	assert.Equal(t, "NO", bookings[0].LateCancelled)
	assert.Equal(t, "YES", bookings[0].NoShow)

	sales := n.Sales([]models.Row{{
		"Date":                  "2024-01-20",
		"Sale value":            "150",
		"Customer email":        "a@x.com",
		"Paying customer email": "",
		"Item":                  "Monthly Unlimited",
	}})
	assert.Equal(t, "a@x.com", sales[0].CustomerEmail)
	assert.Equal(t, "", sales[0].PayingCustomerEmail)
	assert.Equal(t, "2024-01-20", sales[0].Date)
}
