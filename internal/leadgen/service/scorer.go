package service

import (
	"strings"

	"github.com/evoleadai/evolead/internal/leadgen/domain"
)

// Score rates how contactable a candidate looks. Heuristic only: the sum
// of all signals exceeds 100 and is clamped, not rebalanced.
func Score(lead domain.RawLead) int {
	score := 50
	if strings.Contains(lead.Email, "@") {
		score += 25
	}
	if strings.TrimSpace(lead.Phone) != "" {
		score += 15
	}
	if strings.TrimSpace(lead.Website) != "" {
		score += 10
	}
	if len(strings.TrimSpace(lead.BusinessName)) > 3 {
		score += 10
	}
	if strings.TrimSpace(lead.Address) != "" {
		score += 5
	}
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}
