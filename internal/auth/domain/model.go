package domain

import "github.com/bwmarrin/snowflake"

// Identity is the authenticated caller resolved from a bearer token.
type Identity struct {
	UserID      snowflake.ID
	Email       string
	DisplayName string
	// Subject is the identity provider's stable external id.
	Subject string
}

func (i Identity) Actor() string {
	return "user:" + i.UserID.String()
}
