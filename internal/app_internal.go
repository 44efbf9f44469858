package internal

import (
	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

// AppInternal holds everything the CLI needs once the container is resolved.
type AppInternal struct {
	controllers []entities.Controller
}

// NewAppInternal creates the AppInternal from the aggregated controllers.
func NewAppInternal(controllers *[]entities.Controller) *AppInternal {
	return &AppInternal{controllers: *controllers}
}

// GetControllers returns the controllers mounted as subcommands.
func (it *AppInternal) GetControllers() []entities.Controller {
	return it.controllers
}
