package handler

import (
	"github.com/deppfellow/natours/internal/server"
	"github.com/deppfellow/natours/internal/service"
)

// Handlers is a container that groups all HTTP handlers.
type Handlers struct {
	Health *HealthHandler
	Tour   *TourHandler
	User   *UserHandler
}

// NewHandlers constructs the handler container.
func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(s),
		Tour:   NewTourHandler(s, services.Tours),
		User:   NewUserHandler(s, services.Users),
	}
}
