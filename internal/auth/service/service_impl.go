package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/evoleadai/evolead/internal/auth/domain"
	"github.com/evoleadai/evolead/internal/auth/idp"
	"github.com/evoleadai/evolead/internal/cache"
	"go.uber.org/zap"
)

const identityCacheTTL = 60 * time.Second

type service struct {
	idp   *idp.Client
	cache *cache.TTLCache[string, domain.Identity]
	log   *zap.Logger
}

func NewService(client *idp.Client, log *zap.Logger) domain.Service {
	return &service{
		idp:   client,
		cache: cache.NewTTLCache[string, domain.Identity](identityCacheTTL, 4096),
		log:   log.Named("auth.service"),
	}
}

func (s *service) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}
	if !s.idp.Configured() {
		return nil, domain.ErrIDPUnavailable
	}

	// Cache on a digest so raw tokens never sit in memory longer than needed.
	key := tokenDigest(token)
	if identity, ok := s.cache.Get(key); ok {
		return &identity, nil
	}

	identity, err := s.idp.Introspect(ctx, token)
	if err != nil {
		return nil, err
	}
	s.cache.Store(key, *identity)
	return identity, nil
}

func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
