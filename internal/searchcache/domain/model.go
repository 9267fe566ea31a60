package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Entry is a cached provider result set keyed by the normalized request
// tuple. Entries are all-or-nothing per exact tuple; there is no partial
// hit.
type Entry struct {
	ID        snowflake.ID   `gorm:"primaryKey"`
	QueryHash string         `gorm:"uniqueIndex"`
	Results   datatypes.JSON `gorm:"type:jsonb"`
	ExpiresAt time.Time      `gorm:"index"`
	CreatedAt time.Time
}

func (Entry) TableName() string {
	return "search_cache_entries"
}

// Key hashes the request tuple case-insensitively. Two requests differing
// only in letter case share a cache entry.
func Key(businessType, country, state, city string, leadsRequested int) string {
	tuple := strings.ToLower(strings.Join([]string{
		businessType,
		country,
		state,
		city,
		fmt.Sprintf("%d", leadsRequested),
	}, "-"))
	sum := sha256.Sum256([]byte(tuple))
	return hex.EncodeToString(sum[:])
}
