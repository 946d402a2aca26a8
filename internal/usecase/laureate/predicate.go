package laureate

import (
	"strings"

	"github.com/kailas-cloud/nobelidx/internal/domain/award"
)

// MotivationContains reports whether a laureate's motivation contains keyword,
// ignoring case.
func MotivationContains(keyword string) func(award.Laureate) bool {
	needle := strings.ToLower(keyword)
	return func(l award.Laureate) bool {
		return strings.Contains(strings.ToLower(l.Motivation), needle)
	}
}

// NameEquals reports whether a laureate has exactly this first name and surname, ignoring case.
func NameEquals(l award.Laureate, firstname, surname string) bool {
	return strings.EqualFold(strings.TrimSpace(l.Firstname), firstname) &&
		strings.EqualFold(strings.TrimSpace(l.Surname), surname)
}
