package idp

import (
	"github.com/bwmarrin/snowflake"
	"github.com/evoleadai/evolead/internal/auth/domain"
)

func parseUserID(raw string) (snowflake.ID, error) {
	if raw == "" {
		return 0, domain.ErrTokenInvalid
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		return 0, domain.ErrTokenInvalid
	}
	return id, nil
}
