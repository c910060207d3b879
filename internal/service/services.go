package service

import (
	"github.com/deppfellow/natours/internal/lib/job"
	"github.com/deppfellow/natours/internal/repository"
	"github.com/deppfellow/natours/internal/server"
)

type Services struct {
	Auth  *AuthService
	Tours *TourService
	Users *UserService
	Job   *job.JobService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	var welcome WelcomeEnqueuer
	if s.Job != nil {
		welcome = s.Job
	}

	return &Services{
		Auth:  NewAuthService(s),
		Tours: NewTourService(repos.Tours),
		Users: NewUserService(repos.Users, welcome, s.Logger),
		Job:   s.Job,
	}, nil
}
