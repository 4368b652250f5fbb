// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"log/slog"

	"github.com/fermata-run/fermata/pkg/registry"
)

// NewRegistry builds a handler registry with the built-in handlers plus
// any handler plugins found under pluginsPath.
func NewRegistry(log *slog.Logger, pluginsPath string) *registry.Registry {
	reg := registry.NewRegistry(log)
	reg.RegisterDefaultHandlers()

	if pluginsPath != "" {
		if err := reg.LoadPlugins(pluginsPath); err != nil {
			panic(err)
		}
	}

	return reg
}
