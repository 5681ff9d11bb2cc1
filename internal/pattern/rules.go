package pattern

import (
	"fmt"
	"strings"
)

type Bucket string

const (
	Trial      Bucket = "trial"
	Referral   Bucket = "referral"
	Hosted     Bucket = "hosted"
	Influencer Bucket = "influencer"
	Other      Bucket = "other"
)

// Field names the new-visitor column a rule is evaluated against.
type Field string

const (
	FieldMembershipUsed Field = "membership_used"
	FieldFirstVisit     Field = "first_visit"
)

type MatchKind string

const (
	MatchContains MatchKind = "contains"
	MatchExact    MatchKind = "exact"
)

type BucketRule struct {
	Bucket  Bucket    `yaml:"bucket"`
	Field   Field     `yaml:"field"`
	Match   MatchKind `yaml:"match"`
	Pattern string    `yaml:"pattern"`
}

// Rules is the classification table as data. Bucket rules are evaluated in
// order and the first match wins; clients matching none fall into Other.
type Rules struct {
	Exclusion          string       `yaml:"exclusion"`
	Buckets            []BucketRule `yaml:"buckets"`
	NonMembershipSales string       `yaml:"non_membership_categories"`
	IntroOfferItems    string       `yaml:"intro_offer_items"`
}

func DefaultRules() Rules {
	return Rules{
		Exclusion: "friends|family|staff",
		Buckets: []BucketRule{
			{Bucket: Trial, Field: FieldMembershipUsed, Match: MatchContains, Pattern: "Studio Open Barre Class|Newcomers 2 For 1"},
			{Bucket: Referral, Field: FieldMembershipUsed, Match: MatchExact, Pattern: "Studio Complimentary Referral Class"},
			{Bucket: Hosted, Field: FieldFirstVisit, Match: MatchContains, Pattern: "hosted|x|p57|physique|weword|rugby|outdoor|birthday|bridal|shower"},
			{Bucket: Influencer, Field: FieldMembershipUsed, Match: MatchContains, Pattern: "sign-up|link|influencer|twain|ooo|lrs|x|p57|physique|complimentary"},
		},
		NonMembershipSales: "product|money-credit",
		IntroOfferItems:    "2 for 1",
	}
}

func (r Rules) Validate() error {
	if strings.TrimSpace(r.Exclusion) == "" {
		return fmt.Errorf("rules: exclusion pattern is empty")
	}
	for i, b := range r.Buckets {
		switch b.Bucket {
		case Trial, Referral, Hosted, Influencer:
		default:
			return fmt.Errorf("rules: bucket %d: unknown bucket %q", i, b.Bucket)
		}
		switch b.Field {
		case FieldMembershipUsed, FieldFirstVisit:
		default:
			return fmt.Errorf("rules: bucket %d: unknown field %q", i, b.Field)
		}
		switch b.Match {
		case MatchContains, MatchExact:
		default:
			return fmt.Errorf("rules: bucket %d: unknown match %q", i, b.Match)
		}
		if b.Pattern == "" {
			return fmt.Errorf("rules: bucket %d: empty pattern", i)
		}
	}
	return nil
}

type compiledRule struct {
	BucketRule
	m Matcher
}

// Ruleset is a validated, compiled Rules.
type Ruleset struct {
	exclusion   Matcher
	buckets     []compiledRule
	nonMember   Matcher
	introOffers Matcher
}

func (r Rules) Compile() (*Ruleset, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	rs := &Ruleset{
		exclusion:   Compile(r.Exclusion),
		nonMember:   Compile(r.NonMembershipSales),
		introOffers: Compile(r.IntroOfferItems),
	}
	for _, b := range r.Buckets {
		rs.buckets = append(rs.buckets, compiledRule{BucketRule: b, m: Compile(b.Pattern)})
	}
	return rs, nil
}

// MustDefault compiles DefaultRules.
func MustDefault() *Ruleset {
	rs, err := DefaultRules().Compile()
	if err != nil {
		panic(err)
	}
	return rs
}

// Excluded reports whether a new visitor is left out of acquisition metrics,
// with the reason naming the column that triggered it.
func (rs *Ruleset) Excluded(membershipUsed, firstVisit string) (string, bool) {
	if rs.exclusion.Match(membershipUsed) {
		return fmt.Sprintf("Membership used %q matches %s", membershipUsed, rs.exclusion), true
	}
	if rs.exclusion.Match(firstVisit) {
		return fmt.Sprintf("First visit %q matches %s", firstVisit, rs.exclusion), true
	}
	return "", false
}

func (rs *Ruleset) Classify(membershipUsed, firstVisit string) Bucket {
	for _, b := range rs.buckets {
		text := membershipUsed
		if b.Field == FieldFirstVisit {
			text = firstVisit
		}
		switch b.Match {
		case MatchExact:
			if text != "" && text == b.Pattern {
				return b.Bucket
			}
		default:
			if b.m.Match(text) {
				return b.Bucket
			}
		}
	}
	return Other
}

// QualifyingPurchase reports whether a sale's category and item can convert a client.
func (rs *Ruleset) QualifyingPurchase(category, item string) bool {
	return !rs.nonMember.Match(category) && !rs.introOffers.Match(item)
}
