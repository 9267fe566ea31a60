package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/evoleadai/evolead/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

// snowflakeQuery parses an optional snowflake query parameter. Absent
// returns zero; present-but-garbage is an error.
func snowflakeQuery(c *gin.Context, name string) (snowflake.ID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		return 0, ErrInvalidRequest
	}
	return id, nil
}

func snowflakeParam(c *gin.Context, name string) (snowflake.ID, error) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		return 0, ErrInvalidRequest
	}
	return id, nil
}

func bindPagination(c *gin.Context) pagination.Params {
	var page pagination.Params
	if err := c.ShouldBindQuery(&page); err != nil {
		return pagination.Params{Page: 1, Limit: 20}
	}
	return page
}
