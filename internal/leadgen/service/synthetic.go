package service

import (
	"fmt"
	"strings"

	"github.com/evoleadai/evolead/internal/leadgen/domain"
	"github.com/gosimple/slug"
)

var suffixSets = map[string][]string{
	"restaurant": {"Bistro", "Cafe", "Grill", "Kitchen", "Diner"},
	"retail":     {"Store", "Shop", "Boutique", "Market", "Outlet"},
	"service":    {"Services", "Solutions", "Group", "Company", "Associates"},
}

var defaultSuffixes = []string{"Business", "Company", "Enterprise", "Group", "Services"}

func suffixesFor(businessType string) []string {
	lowered := strings.ToLower(businessType)
	for keyword, suffixes := range suffixSets {
		if strings.Contains(lowered, keyword) {
			return suffixes
		}
	}
	return defaultSuffixes
}

// SyntheticLeads is the last fallback tier. Output is fully deterministic
// for a given input tuple, so repeated runs and tests agree. startIndex
// lets callers pad a partial batch without colliding with earlier names.
func SyntheticLeads(businessType, country, state, city string, count, startIndex int) []domain.RawLead {
	suffixes := suffixesFor(businessType)
	leads := make([]domain.RawLead, 0, count)
	for n := 0; n < count; n++ {
		i := startIndex + n
		name := fmt.Sprintf("%s %s", city, suffixes[i%len(suffixes)])
		if cycle := i / len(suffixes); cycle > 0 {
			name = fmt.Sprintf("%s %d", name, cycle+1)
		}
		nameSlug := slug.Make(name)
		leads = append(leads, domain.RawLead{
			BusinessName: name,
			Email:        fmt.Sprintf("contact@%s.example.com", nameSlug),
			Phone:        fmt.Sprintf("+1-555-%03d-%04d", i%1000, 1000+i),
			Website:      fmt.Sprintf("https://www.%s.example.com", nameSlug),
			Address:      fmt.Sprintf("%d Main St, %s, %s, %s", 100+i, city, state, country),
			Industry:     businessType,
		})
	}
	return leads
}
