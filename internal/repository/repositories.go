package repository

import (
	"github.com/deppfellow/natours/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Tours *TourRepository
	Users *UserRepository
}

// NewRepositories constructs the repository container on the server's database.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Tours: NewTourRepository(s.DB.DB),
		Users: NewUserRepository(s.DB.DB),
	}
}
