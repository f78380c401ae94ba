package main

import (
	"context"
	"encoding/base64"
	"log"

	"recall/internal/config"
	"recall/internal/domain"
	"recall/internal/infra/cachemem"
	cryptoinfra "recall/internal/infra/crypto"
	"recall/internal/infra/db"
	"recall/internal/infra/discovery"
	httpapi "recall/internal/infra/http"
	"recall/internal/infra/keys/soft"
	"recall/internal/infra/logmem"
	"recall/internal/infra/memstore"
	"recall/internal/infra/policyrego"
	"recall/internal/infra/ratelimit"
	"recall/internal/usecase"
)

func main() {
	cfg := config.FromEnv()
	ctx := context.Background()

	identity, err := soft.NewIdentityFromConfig(cfg)
	if err != nil {
		log.Fatalf("failed to load signing identity: %v", err)
	}

	store, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}

	policy, err := buildPolicy(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init policy engine: %v", err)
	}

	limiter, err := buildRateLimiter(cfg)
	if err != nil {
		log.Fatalf("failed to init rate limiter: %v", err)
	}

	cryptoSvc := cryptoinfra.NewService()
	auditLog := logmem.New(cfg.AuditLogSize)
	audit := usecase.NewAuditEmitter(auditLog, nil)

	issuer := usecase.NewReceiptIssuer(identity, cryptoSvc, cfg.LocationHint)
	resolver := discovery.NewResolver(identity, cfg.DiscoveryTimeout,
		discovery.WithCache(cachemem.New(), cfg.ResolveCacheTTL))
	verifier := usecase.NewReceiptVerifier(resolver, cryptoSvc)
	memory := usecase.NewMemoryService(store, issuer, policy, audit)

	srv := httpapi.NewServer(cfg, httpapi.ServerDeps{
		Memory:      memory,
		Verifier:    verifier,
		Audit:       auditLog,
		Emitter:     audit,
		WellKnown:   wellKnownDocument(identity),
		RateLimiter: limiter,
	})
	if err := srv.Run(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func buildStore(cfg config.Config) (domain.MemoryItemStore, error) {
	switch cfg.StoreBackend {
	case "postgres":
		return db.Open(cfg.PostgresDSN)
	default:
		return memstore.New(), nil
	}
}

func buildPolicy(ctx context.Context, cfg config.Config) (*policyrego.Engine, error) {
	if cfg.PolicyBundlePath != "" {
		return policyrego.NewEngineFromBundlePath(ctx, cfg.PolicyBundlePath)
	}
	return policyrego.NewDefaultEngine(ctx)
}

func buildRateLimiter(cfg config.Config) (domain.RateLimiter, error) {
	if cfg.RateLimitRequests <= 0 {
		return nil, nil
	}
	if cfg.RateLimitBackend == "redis" {
		return ratelimit.NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, nil)
	}
	return ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{}), nil
}

func wellKnownDocument(identity *soft.Identity) domain.DiscoveryDocument {
	record := identity.KeyRecord()
	return domain.DiscoveryDocument{
		Issuer: identity.Issuer(),
		Keys: []domain.DiscoveryKey{{
			KeyID:           record.KeyID,
			KeyType:         record.KeyType,
			PublicKeyBase64: encodeBase64(record.PublicKey),
		}},
		SchemaVersion: domain.SchemaVersion,
	}
}

func encodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}
