package idp

import (
	"testing"

	"github.com/evoleadai/evolead/internal/auth/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserID(t *testing.T) {
	id, err := parseUserID("1537200202186752000")
	require.NoError(t, err)
	assert.Equal(t, "1537200202186752000", id.String())

	for _, raw := range []string{"", "abc", "12x", "0"} {
		_, err := parseUserID(raw)
		assert.ErrorIs(t, err, domain.ErrTokenInvalid, "raw=%q", raw)
	}
}
