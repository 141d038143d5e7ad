// Package api provides the REST handlers for the RuleKeeper admin API.
package api

import (
	"fmt"
	"log/slog"

	"github.com/lcgate/rulekeeper/internal/core/config"
	"github.com/lcgate/rulekeeper/internal/core/store"
)

// Service implements the admin API handlers.
// Thin orchestration layer delegating to the store and rulesets packages.
type Service struct {
	store  *store.Store
	cfg    *config.AdminAPIConfig
	logger *slog.Logger
}

// NewService creates service instance with dependencies.
func NewService(st *store.Store, cfg *config.AdminAPIConfig, logger *slog.Logger) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		store:  st,
		cfg:    cfg,
		logger: logger,
	}, nil
}
