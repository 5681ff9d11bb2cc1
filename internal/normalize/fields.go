package normalize

import (
	"strings"

	"github.com/AngelCh415/studio-metrics/internal/models"
)

// Header variants per logical field, most specific first. Lookups ignore case
// and surrounding whitespace.
var (
	hFirstName          = []string{"first name", "firstname", "first_name"}
	hLastName           = []string{"last name", "lastname", "last_name"}
	hEmail              = []string{"email", "email address", "customer email"}
	hPhone              = []string{"phone", "phone number", "mobile"}
	hPaymentMethod      = []string{"payment method", "payment status"}
	hMembershipUsed     = []string{"membership used", "membership"}
	hFirstVisitAt       = []string{"first visit at", "first visit date", "first visit at date"}
	hFirstVisit         = []string{"first visit", "first visit class", "first visit class name"}
	hFirstVisitLocation = []string{"first visit location", "location"}
	hVisitType          = []string{"visit type"}
	hHomeLocation       = []string{"home location"}

	hSaleDate      = []string{"sale date"}
	hClassName     = []string{"class name", "class"}
	hClassDate     = []string{"class date", "class date/time", "date"}
	hLocation      = []string{"location", "class location"}
	hTeacher       = []string{"teacher", "teacher name", "instructor"}
	hCustomerEmail = []string{"customer email", "email"}
	hSaleValue     = []string{"sale value", "value", "amount"}
	hSalesTax      = []string{"sales tax", "sale tax", "tax"}
	hCancelled     = []string{"cancelled", "canceled"}
	hLateCancelled = []string{"late cancelled", "late canceled", "late cancel"}
	hNoShow        = []string{"no show", "no-show", "noshow"}
	hSoldBy        = []string{"sold by"}
	hRefunded      = []string{"refunded"}

	hCategory     = []string{"category"}
	hItem         = []string{"item", "item name"}
	hDate         = []string{"date", "sale date"}
	hPayingEmail  = []string{"paying customer email"}
	hPayerName    = []string{"paying customer name", "payer name", "customer name"}
	hNote         = []string{"note", "notes"}
	hSaleCustomer = []string{"customer email"}
)

// FirstPresent returns the value of the first header variant holding a
// non-empty value, or "" when none does.
func FirstPresent(row models.Row, names ...string) string {
	for _, n := range names {
		if v, ok := row[n]; ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	if len(row) == 0 {
		return ""
	}
	canon := canonical(row)
	for _, n := range names {
		if v := canon[headerKey(n)]; v != "" {
			return v
		}
	}
	return ""
}

func headerKey(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(h)), " ")
}

// canonical folds header spellings; on collision the non-empty value of the
// lexically smallest raw header wins so lookups stay deterministic.
func canonical(row models.Row) map[string]string {
	out := make(map[string]string, len(row))
	winner := make(map[string]string, len(row))
	for raw, v := range row {
		if strings.TrimSpace(v) == "" {
			continue
		}
		k := headerKey(raw)
		if prev, ok := winner[k]; ok && prev < raw {
			continue
		}
		winner[k] = raw
		out[k] = v
	}
	return out
}
