// Package discounts implements the Early Risers promotion: a 10% off
// code issued only when a customer explicitly asks for it between
// 8:00 AM and 10:00 AM Pacific.
package discounts

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DiscountPercent is the flat percentage an Early Risers code grants.
const DiscountPercent = 10

const (
	windowStartHour = 8
	windowEndHour   = 10
)

// earlyRisersPattern requires both an "early riser(s)" phrase and a
// promo word (code/promo/promotion/discount), in either order.
// Mentioning being an early riser without asking for anything does not
// count as a request.
var earlyRisersPattern = regexp.MustCompile(
	`(?i)\b(early\s*risers?|early-risers?)\b.*\b(code|promo|promotion|discount)\b` +
		`|\b(discount|promo|promotion|code)\b.*\b(early\s*risers?|early-risers?)\b`)

// Code is a freshly minted Early Risers discount code.
type Code struct {
	Code            string    `json:"code"`
	DiscountPercent int       `json:"discount_percent"`
	CreatedAt       time.Time `json:"created_at"`
}

// Service decides Early Risers eligibility and mints codes. The clock
// is injectable so window boundaries are testable.
type Service struct {
	loc *time.Location
	now func() time.Time
}

// NewService creates a discount service anchored to Pacific time.
func NewService() (*Service, error) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		return nil, fmt.Errorf("load pacific time zone: %w", err)
	}
	return &Service{loc: loc, now: time.Now}, nil
}

// InWindow reports whether t falls inside the promotion window:
// 8:00:00 AM inclusive through 10:00:00 AM exclusive, Pacific.
func (s *Service) InWindow(t time.Time) bool {
	hour := t.In(s.loc).Hour()
	return hour >= windowStartHour && hour < windowEndHour
}

// ExplicitRequest reports whether text clearly asks for the Early
// Risers promotion.
func (s *Service) ExplicitRequest(text string) bool {
	return earlyRisersPattern.MatchString(text)
}

// NewCode mints an EARLYRISER-XXXX-XXXX code from a fresh UUID.
func (s *Service) NewCode() Code {
	id := uuid.New()
	random := strings.ToUpper(hex.EncodeToString(id[:4]))
	return Code{
		Code:            fmt.Sprintf("EARLYRISER-%s-%s", random[:4], random[4:]),
		DiscountPercent: DiscountPercent,
		CreatedAt:       s.now(),
	}
}
