package service

import (
	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/domain/preset"
	"github.com/billforge/billforge/internal/logger"
)

// ServiceParams holds the common dependencies injected into services.
type ServiceParams struct {
	Logger         *logger.Logger
	Config         *config.Configuration
	PresetRegistry *preset.Registry
}
