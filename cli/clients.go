// ABOUTME: Shared client and service construction for pipctl commands
// ABOUTME: Builds the PIP client, service facade, and optional debug logger
package cli

import (
	"fmt"
	"os"

	"github.com/liquid-state/pip-go/pip"
	"github.com/liquid-state/pip-go/service"
	"go.uber.org/zap"
)

// newService builds a client and service facade from the CLI config.
func newService(cfg *Config) (*service.Service, error) {
	if !cfg.IsConfigured() {
		return nil, fmt.Errorf("no API root configured; set PIP_API_ROOT or run 'pipctl config'")
	}
	client, err := pip.New(pip.Options{
		APIRoot: cfg.APIRoot,
		Logger:  debugLogger(),
	})
	if err != nil {
		return nil, err
	}
	return service.New(client, service.Options{Token: cfg.Token}), nil
}

// newAdmin builds an admin client from the CLI config.
func newAdmin(cfg *Config) (*pip.AdminClient, error) {
	return pip.NewAdmin(
		pip.AdminIdentity{Token: cfg.Token, APIKey: cfg.APIKey},
		pip.AdminOptions{APIRoot: cfg.APIRoot, Logger: debugLogger()},
	)
}

// debugLogger enables request logging when PIP_DEBUG is set.
func debugLogger() *zap.Logger {
	if os.Getenv("PIP_DEBUG") == "" {
		return nil
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil
	}
	return logger
}
