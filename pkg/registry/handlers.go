// Package registry provides built-in handler registration.
package registry

import (
	"github.com/fermata-run/fermata/pkg/handlers/clicommand"
	"github.com/fermata-run/fermata/pkg/handlers/httprequest"
	logh "github.com/fermata-run/fermata/pkg/handlers/log"
	"github.com/fermata-run/fermata/pkg/handlers/userinput"
	"github.com/fermata-run/fermata/pkg/models"
)

// RegisterDefaultHandlers registers the built-in function handlers and the
// bundled custom handlers.
func (r *Registry) RegisterDefaultHandlers() {
	r.Register(models.FunctionCLICommand, clicommand.NewHandler(r.logger))
	r.Register(models.FunctionUserInput, userinput.NewHandler(r.logger))

	// Custom handlers, addressed through the "custom" function variant.
	r.Register(logh.Name, logh.NewHandler(r.logger))
	r.Register(httprequest.Name, httprequest.NewHandler(r.logger))
}
