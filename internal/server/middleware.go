package server

import (
	"strings"

	authdomain "github.com/evoleadai/evolead/internal/auth/domain"
	obscontext "github.com/evoleadai/evolead/internal/observability/context"
	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// AuthRequired resolves the bearer token into an identity and stores it
// on the request. No token, no API.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		identity, err := s.authSvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(identityKey, identity)
		ctx := obscontext.WithActor(c.Request.Context(), "user", identity.UserID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func identityFrom(c *gin.Context) (*authdomain.Identity, bool) {
	value, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	identity, ok := value.(*authdomain.Identity)
	return identity, ok
}
