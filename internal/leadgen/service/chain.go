package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/evoleadai/evolead/internal/leadgen/domain"
	"github.com/evoleadai/evolead/internal/providers/serpapi"
	"go.uber.org/zap"
)

// fetchLeads walks the three-tier provider chain. Tiers degrade in order:
// search plus extraction, direct generation, deterministic synthesis. Only
// context cancellation surfaces as an error; the synthetic tier cannot
// fail, so "all tiers erroring" reduces to the caller going away.
func (s *service) fetchLeads(ctx context.Context, req domain.GenerateRequest) ([]domain.RawLead, domain.Tier, error) {
	count := req.LeadsRequested
	location := fmt.Sprintf("%s, %s, %s", req.City, req.State, req.Country)
	log := s.log.With(zap.String("business_type", req.BusinessType), zap.String("location", location))

	if s.serpapi.Configured() {
		results, err := s.serpapi.Search(ctx, req.BusinessType, req.Country, req.State, req.City, count)
		if err != nil {
			log.Warn("search tier failed, falling through", zap.Error(err))
		} else if len(results) > 0 {
			if s.gemini.Configured() {
				leads, err := s.gemini.ExtractLeads(ctx, results, count, req.BusinessType, location)
				if err == nil {
					return s.fitToCount(leads, count, req), domain.TierGemini, nil
				}
				log.Warn("extraction failed, mapping raw results", zap.Error(err))
			}
			return s.fitToCount(basicMapping(results), count, req), domain.TierSerpAPI, nil
		}
	}

	if s.gemini.Configured() {
		leads, err := s.gemini.GenerateLeads(ctx, count, req.BusinessType, location)
		if err == nil {
			return s.fitToCount(leads, count, req), domain.TierGemini, nil
		}
		log.Warn("direct generation failed, synthesizing", zap.Error(err))
	}

	if ctx.Err() != nil {
		return nil, "", domain.ErrProviderUnavailable
	}
	return SyntheticLeads(req.BusinessType, req.Country, req.State, req.City, count, 0), domain.TierSynthetic, nil
}

// fitToCount truncates oversized batches and pads undersized ones with
// synthetic entries so every run yields exactly the requested volume.
func (s *service) fitToCount(leads []domain.RawLead, count int, req domain.GenerateRequest) []domain.RawLead {
	if len(leads) > count {
		return leads[:count]
	}
	if len(leads) < count {
		padding := SyntheticLeads(req.BusinessType, req.Country, req.State, req.City, count-len(leads), len(leads))
		leads = append(leads, padding...)
	}
	return leads
}

// basicMapping converts raw search hits without AI assistance: name from
// the title, a synthetic email from the result's domain, and whatever
// contact fields the hit carried.
func basicMapping(results []serpapi.Result) []domain.RawLead {
	leads := make([]domain.RawLead, 0, len(results))
	for i, result := range results {
		phone := result.Phone
		if strings.TrimSpace(phone) == "" {
			phone = fmt.Sprintf("+1-555-%03d-%04d", i%1000, 2000+i)
		}
		leads = append(leads, domain.RawLead{
			BusinessName: result.Title,
			Email:        emailFromLink(result.Link),
			Phone:        phone,
			Website:      result.Link,
			Address:      result.Address,
		})
	}
	return leads
}

func emailFromLink(link string) string {
	parsed, err := url.Parse(link)
	if err != nil || parsed.Host == "" {
		return ""
	}
	host := strings.TrimPrefix(parsed.Host, "www.")
	return "contact@" + host
}
