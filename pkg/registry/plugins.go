package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"plugin"

	"github.com/fermata-run/fermata/pkg/protocol"
)

// ErrInvalidPlugin indicates a plugin's Handler symbol does not implement
// NamedHandler.
var ErrInvalidPlugin = errors.New("invalid handler plugin")

// PluginSymbol is the exported symbol a handler plugin must provide.
const PluginSymbol = "Handler"

// NamedHandler is the shape of a loadable handler plugin: a handler that
// knows its own registry key.
type NamedHandler interface {
	protocol.Handler
	Name() string
}

// LoadPlugins opens every .so under pluginsPath and registers the Handler
// symbol each exports. Missing directories are not an error; a present but
// malformed plugin is.
func (r *Registry) LoadPlugins(pluginsPath string) error {
	if _, err := os.Stat(pluginsPath); os.IsNotExist(err) {
		return nil
	}

	paths, err := discoverPlugins(os.DirFS(pluginsPath))
	if err != nil {
		return err
	}

	logger := r.logger.With(slog.String("path", pluginsPath))
	logger.Info("Loading handler plugins", "count", len(paths))

	for _, p := range paths {
		plg, err := plugin.Open(pluginsPath + "/" + p)
		if err != nil {
			return err
		}

		symbol, err := plg.Lookup(PluginSymbol)
		if err != nil {
			return err
		}

		handler, ok := symbol.(NamedHandler)
		if !ok {
			return fmt.Errorf("%w: %s", ErrInvalidPlugin, p)
		}

		r.Register(handler.Name(), handler)
		logger.Info("Loaded handler plugin", slog.String("plugin", p), slog.String("name", handler.Name()))
	}

	return nil
}

// discoverPlugins finds .so files in the plugins root and one directory
// level below it. fs.Glob has no recursive pattern, so both levels are
// matched explicitly.
func discoverPlugins(root fs.FS) ([]string, error) {
	paths, err := fs.Glob(root, "*.so")
	if err != nil {
		return nil, err
	}

	nested, err := fs.Glob(root, "*/*.so")
	if err != nil {
		return nil, err
	}

	return append(paths, nested...), nil
}
