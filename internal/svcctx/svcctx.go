// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/brotwerk/intake/internal/config"
	"github.com/brotwerk/intake/internal/extract"
	"github.com/brotwerk/intake/internal/intake"
	"github.com/brotwerk/intake/internal/orders"
	"github.com/brotwerk/intake/internal/prompts"
	"github.com/brotwerk/intake/internal/providers"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Registry  *providers.Registry
	Targets   *extract.Registry
	Intake    *intake.Service
	Prompts   *prompts.Store
	Catalog   *orders.Catalog
	ConfigMgr *config.Manager
	Logger    *slog.Logger
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// RegistryFrom extracts the provider registry from context.
func RegistryFrom(ctx context.Context) *providers.Registry {
	if s := ServicesFrom(ctx); s != nil {
		return s.Registry
	}
	return nil
}

// TargetsFrom extracts the extraction target registry from context.
func TargetsFrom(ctx context.Context) *extract.Registry {
	if s := ServicesFrom(ctx); s != nil {
		return s.Targets
	}
	return nil
}

// IntakeFrom extracts the intake service from context.
func IntakeFrom(ctx context.Context) *intake.Service {
	if s := ServicesFrom(ctx); s != nil {
		return s.Intake
	}
	return nil
}

// PromptsFrom extracts the prompt store from context.
func PromptsFrom(ctx context.Context) *prompts.Store {
	if s := ServicesFrom(ctx); s != nil {
		return s.Prompts
	}
	return nil
}

// CatalogFrom extracts the product catalog from context.
func CatalogFrom(ctx context.Context) *orders.Catalog {
	if s := ServicesFrom(ctx); s != nil {
		return s.Catalog
	}
	return nil
}

// ConfigManagerFrom extracts the config manager from context.
func ConfigManagerFrom(ctx context.Context) *config.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.ConfigMgr
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil {
		return s.Logger
	}
	return nil
}
