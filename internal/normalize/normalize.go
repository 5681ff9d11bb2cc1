package normalize

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/AngelCh415/studio-metrics/internal/models"
)

const isoDate = "2006-01-02"

var dateLayouts = []string{
	isoDate,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04",
	"1/2/2006 3:04 PM",
	"1/2/2006 3:04:05 PM",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02-Jan-2006",
}

// Date converts a date-like value to YYYY-MM-DD. A trailing comma separated
// time is dropped. Unparseable input is returned unchanged.
func Date(raw string) string {
	if t, ok := parseDate(raw); ok {
		return t.Format(isoDate)
	}
	return raw
}

func parseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	for s != "" {
		for _, l := range dateLayouts {
			if t, err := time.Parse(l, s); err == nil {
				return t, true
			}
		}
		i := strings.LastIndex(s, ",")
		if i <= 0 {
			break
		}
		s = strings.TrimSpace(s[:i])
	}
	return time.Time{}, false
}

// ParseISO parses a normalized YYYY-MM-DD date.
func ParseISO(s string) (time.Time, bool) {
	t, err := time.Parse(isoDate, s)
	return t, err == nil
}

// After reports whether date a is strictly later than date b. Either side
// failing to parse never counts as later.
func After(a, b string) bool {
	ta, ok := ParseISO(a)
	if !ok {
		return false
	}
	tb, ok := ParseISO(b)
	if !ok {
		return false
	}
	return ta.After(tb)
}

// Period returns the month-year bucket of a normalized date, e.g. "Jan 24".
func Period(iso string) string {
	t, ok := ParseISO(iso)
	if !ok {
		return ""
	}
	return t.Format("Jan 06")
}

// ParsePeriod is the inverse of Period.
func ParsePeriod(p string) (time.Time, bool) {
	t, err := time.Parse("Jan 06", p)
	return t, err == nil
}

// WeekStart returns the Monday of the week holding iso, as YYYY-MM-DD.
func WeekStart(iso string) string {
	t, ok := ParseISO(iso)
	if !ok {
		return ""
	}
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Format(isoDate)
}

// Money strips everything but digits, '.' and '-' and parses what is left.
// Empty or non-numeric input yields 0.
func Money(raw string) float64 {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return f
}

// Clean trims a free-text label and collapses inner whitespace.
func Clean(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// Flag canonicalizes YES/NO style columns.
func Flag(raw string) string { return strings.ToUpper(strings.TrimSpace(raw)) }

func Email(raw string) string { return strings.TrimSpace(raw) }

// Normalizer turns raw rows into typed records. It never fails; malformed
// values degrade to defaults and are reported at debug level.
type Normalizer struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Normalizer {
	if log == nil {
		log = slog.Default()
	}
	return &Normalizer{log: log}
}

func (n *Normalizer) date(field, raw string) string {
	d := Date(raw)
	if _, ok := ParseISO(d); !ok && strings.TrimSpace(raw) != "" {
		n.log.Debug("unparsed date kept as is", slog.String("field", field), slog.String("value", raw))
	}
	return d
}

func (n *Normalizer) NewVisitors(rows []models.Row) []models.NewVisitor {
	out := make([]models.NewVisitor, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.NewVisitor{
			FirstName:          strings.TrimSpace(FirstPresent(r, hFirstName...)),
			LastName:           strings.TrimSpace(FirstPresent(r, hLastName...)),
			Email:              Email(FirstPresent(r, hEmail...)),
			Phone:              strings.TrimSpace(FirstPresent(r, hPhone...)),
			PaymentMethod:      Clean(FirstPresent(r, hPaymentMethod...)),
			MembershipUsed:     Clean(FirstPresent(r, hMembershipUsed...)),
			FirstVisitAt:       n.date("first_visit_at", FirstPresent(r, hFirstVisitAt...)),
			FirstVisit:         Clean(FirstPresent(r, hFirstVisit...)),
			FirstVisitLocation: strings.TrimSpace(FirstPresent(r, hFirstVisitLocation...)),
			VisitType:          Clean(FirstPresent(r, hVisitType...)),
			HomeLocation:       strings.TrimSpace(FirstPresent(r, hHomeLocation...)),
		})
	}
	return out
}

func (n *Normalizer) Bookings(rows []models.Row) []models.Booking {
	out := make([]models.Booking, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.Booking{
			SaleDate:       n.date("sale_date", FirstPresent(r, hSaleDate...)),
			ClassName:      Clean(FirstPresent(r, hClassName...)),
			ClassDate:      n.date("class_date", FirstPresent(r, hClassDate...)),
			Location:       strings.TrimSpace(FirstPresent(r, hLocation...)),
			Teacher:        strings.TrimSpace(FirstPresent(r, hTeacher...)),
			CustomerEmail:  Email(FirstPresent(r, hCustomerEmail...)),
			PaymentMethod:  Clean(FirstPresent(r, hPaymentMethod...)),
			MembershipUsed: Clean(FirstPresent(r, hMembershipUsed...)),
			SaleValue:      Money(FirstPresent(r, hSaleValue...)),
			SalesTax:       Money(FirstPresent(r, hSalesTax...)),
			Cancelled:      Flag(FirstPresent(r, hCancelled...)),
			LateCancelled:  Flag(FirstPresent(r, hLateCancelled...)),
			NoShow:         Flag(FirstPresent(r, hNoShow...)),
			SoldBy:         strings.TrimSpace(FirstPresent(r, hSoldBy...)),
			Refunded:       Flag(FirstPresent(r, hRefunded...)),
			HomeLocation:   strings.TrimSpace(FirstPresent(r, hHomeLocation...)),
		})
	}
	return out
}

func (n *Normalizer) Sales(rows []models.Row) []models.Sale {
	out := make([]models.Sale, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.Sale{
			Category:            Clean(FirstPresent(r, hCategory...)),
			Item:                Clean(FirstPresent(r, hItem...)),
			Date:                n.date("date", FirstPresent(r, hDate...)),
			SaleValue:           Money(FirstPresent(r, hSaleValue...)),
			Tax:                 Money(FirstPresent(r, hSalesTax...)),
			Refunded:            Flag(FirstPresent(r, hRefunded...)),
			PaymentMethod:       Clean(FirstPresent(r, hPaymentMethod...)),
			SoldBy:              strings.TrimSpace(FirstPresent(r, hSoldBy...)),
			PayingCustomerEmail: Email(FirstPresent(r, hPayingEmail...)),
			CustomerEmail:       Email(FirstPresent(r, hSaleCustomer...)),
			PayerName:           strings.TrimSpace(FirstPresent(r, hPayerName...)),
			Location:            strings.TrimSpace(FirstPresent(r, hLocation...)),
			Note:                strings.TrimSpace(FirstPresent(r, hNote...)),
		})
	}
	return out
}
