package models

// Row is one parsed CSV line keyed by its header names.
type Row map[string]string

// StudioTeacher is the teacher label carried by location-level rollups.
const StudioTeacher = "All Teachers"

// UnknownTeacher tags a new visitor whose first visit matched no booking.
const UnknownTeacher = "Unknown"

type NewVisitor struct {
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	PaymentMethod      string `json:"payment_method"`
	MembershipUsed     string `json:"membership_used"`
	FirstVisitAt       string `json:"first_visit_at"` // YYYY-MM-DD once normalized
	FirstVisit         string `json:"first_visit"`    // class label
	FirstVisitLocation string `json:"first_visit_location"`
	VisitType          string `json:"visit_type"`
	HomeLocation       string `json:"home_location"`
}

func (v NewVisitor) Name() string {
	switch {
	case v.FirstName == "":
		return v.LastName
	case v.LastName == "":
		return v.FirstName
	}
	return v.FirstName + " " + v.LastName
}

type Booking struct {
	SaleDate       string
	ClassName      string
	ClassDate      string
	Location       string
	Teacher        string
	CustomerEmail  string
	PaymentMethod  string
	MembershipUsed string
	SaleValue      float64
	SalesTax       float64
	Cancelled      string // YES / NO
	LateCancelled  string // YES / NO
	NoShow         string // YES / NO
	SoldBy         string
	Refunded       string
	HomeLocation   string
}

type Sale struct {
	Category            string
	Item                string
	Date                string
	SaleValue           float64
	Tax                 float64
	Refunded            string // YES / NO
	PaymentMethod       string
	SoldBy              string
	PayingCustomerEmail string
	CustomerEmail       string
	PayerName           string
	Location            string
	Note                string
}

// EnrichedClient is a new visitor tagged with the teacher who taught the first visit.
type EnrichedClient struct {
	NewVisitor
	Teacher string `json:"teacher"`
}

type ClientDetail struct {
	Email          string   `json:"email"`
	Name           string   `json:"name"`
	Date           string   `json:"date"`
	Value          *float64 `json:"value,omitempty"`
	VisitCount     *int     `json:"visit_count,omitempty"`
	MembershipType string   `json:"membership_type,omitempty"`
}

type WeeklyRevenue struct {
	WeekStart string  `json:"week_start"`
	Revenue   float64 `json:"revenue"`
}

type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// Source labels, in the fixed order of GroupResult.ClientsBySource.
var Sources = []string{"Trials", "Referrals", "Hosted", "Influencer", "Others"}

// GroupResult holds the metrics of one teacher x location x period cohort,
// or of a whole location when TeacherName is StudioTeacher.
type GroupResult struct {
	TeacherName string `json:"teacher_name"`
	Location    string `json:"location"`
	Period      string `json:"period"`

	NewClients        int `json:"new_clients"`
	Trials            int `json:"trials"`
	Referrals         int `json:"referrals"`
	Hosted            int `json:"hosted"`
	InfluencerSignups int `json:"influencer_signups"`
	Others            int `json:"others"`
	RetainedClients   int `json:"retained_clients"`
	ConvertedClients  int `json:"converted_clients"`

	RetentionRate               float64 `json:"retention_rate"`
	ConversionRate              float64 `json:"conversion_rate"`
	NoShowRate                  float64 `json:"no_show_rate"`
	LateCancellationRate        float64 `json:"late_cancellation_rate"`
	FirstTimeBuyerRate          float64 `json:"first_time_buyer_rate"`
	InfluencerConversionRate    float64 `json:"influencer_conversion_rate"`
	ReferralConversionRate      float64 `json:"referral_conversion_rate"`
	TrialToMembershipConversion float64 `json:"trial_to_membership_conversion"`

	TotalRevenue            float64 `json:"total_revenue"`
	AverageRevenuePerClient float64 `json:"average_revenue_per_client"`

	NewClientDetails       []ClientDetail `json:"new_client_details"`
	RetainedClientDetails  []ClientDetail `json:"retained_client_details"`
	ConvertedClientDetails []ClientDetail `json:"converted_client_details"`

	RevenueByWeek   []WeeklyRevenue `json:"revenue_by_week"`
	ClientsBySource []SourceCount   `json:"clients_by_source"`

	// counts behind the derived rates; rollups recompute rates from these
	FirstTimeBuyers     int `json:"first_time_buyers"`
	TrialConverted      int `json:"trial_converted"`
	ReferralConverted   int `json:"referral_converted"`
	InfluencerConverted int `json:"influencer_converted"`
	Bookings            int `json:"bookings"`
	NoShows             int `json:"no_shows"`
	LateCancellations   int `json:"late_cancellations"`
}

func (g GroupResult) IsStudio() bool { return g.TeacherName == StudioTeacher }

// AuditRecord explains why a new visitor was included in or left out of a metric.
type AuditRecord struct {
	NewVisitor
	Teacher string `json:"teacher"`
	Period  string `json:"period,omitempty"`
	Reason  string `json:"reason"`
}

type Audit struct {
	Included   []AuditRecord `json:"included"`
	Excluded   []AuditRecord `json:"excluded"`
	NewClients []AuditRecord `json:"new_clients"`
	Converted  []AuditRecord `json:"converted"`
	Retained   []AuditRecord `json:"retained"`
	Unlinked   []AuditRecord `json:"unlinked"`
}

// List returns the named audit list.
func (a *Audit) List(name string) ([]AuditRecord, bool) {
	switch name {
	case "included":
		return a.Included, true
	case "excluded":
		return a.Excluded, true
	case "new_clients", "new":
		return a.NewClients, true
	case "converted":
		return a.Converted, true
	case "retained":
		return a.Retained, true
	case "unlinked":
		return a.Unlinked, true
	}
	return nil, false
}

type Summary struct {
	NewVisitorRows  int `json:"new_visitor_rows"`
	BookingRows     int `json:"booking_rows"`
	SaleRows        int `json:"sale_rows"`
	LinkedClients   int `json:"linked_clients"`
	UnlinkedClients int `json:"unlinked_clients"`
	UndatedClients  int `json:"undated_clients"`
	ExcludedClients int `json:"excluded_clients"`
	TeacherGroups   int `json:"teacher_groups"`
	FailedGroups    int `json:"failed_groups"`
	Studios         int `json:"studios"`
}

// Result is the output of one pipeline run: teacher groups first, then studio rollups.
type Result struct {
	Groups    []GroupResult `json:"groups"`
	Locations []string      `json:"locations"`
	Teachers  []string      `json:"teachers"`
	Periods   []string      `json:"periods"`
	Audit     Audit         `json:"audit"`
	Summary   Summary       `json:"summary"`
}
