// Package repotest provides in-memory tour and user stores that behave like
// the Mongo repositories: same read scope, same not-found and duplicate key
// results.
package repotest

import (
	"context"
	"fmt"
	"sync"

	"github.com/deppfellow/natours/internal/dberr"
	"github.com/deppfellow/natours/internal/model"
	"github.com/deppfellow/natours/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TourStore keeps tours in memory. Names are unique, as with the name_1 index.
type TourStore struct {
	mu    sync.Mutex
	tours map[primitive.ObjectID]model.Tour
	order []primitive.ObjectID

	// Err, when set, is returned by every call.
	Err error
}

func NewTourStore() *TourStore {
	return &TourStore{tours: make(map[primitive.ObjectID]model.Tour)}
}

func (s *TourStore) Insert(_ context.Context, tour *model.Tour) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}

	for _, existing := range s.tours {
		if existing.Name == tour.Name {
			return duplicateName("tours", tour.Name)
		}
	}

	tour.ID = primitive.NewObjectID()
	s.tours[tour.ID] = *tour
	s.order = append(s.order, tour.ID)
	return nil
}

func (s *TourStore) Find(_ context.Context, opts ...repository.ReadOption) ([]model.Tour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}

	tours := []model.Tour{}
	for _, id := range s.order {
		tour, ok := s.tours[id]
		if !ok || !inScope(tour, opts) {
			continue
		}
		tours = append(tours, readTour(tour))
	}
	return tours, nil
}

func (s *TourStore) FindByID(_ context.Context, id string, opts ...repository.ReadOption) (*model.Tour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tour, err := s.lookup(id, opts)
	if err != nil {
		return nil, err
	}
	read := readTour(tour)
	return &read, nil
}

func (s *TourStore) Update(_ context.Context, id string, patch *model.TourPatch, opts ...repository.ReadOption) (*model.Tour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tour, err := s.lookup(id, opts)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		for otherID, other := range s.tours {
			if otherID != tour.ID && other.Name == *patch.Name {
				return nil, duplicateName("tours", *patch.Name)
			}
		}
	}

	// Round-trip through BSON so $set semantics match the real store.
	raw, err := bson.Marshal(patch)
	if err != nil {
		return nil, err
	}
	if err := bson.Unmarshal(raw, &tour); err != nil {
		return nil, err
	}

	s.tours[tour.ID] = tour
	read := readTour(tour)
	return &read, nil
}

func (s *TourStore) Delete(_ context.Context, id string, opts ...repository.ReadOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tour, err := s.lookup(id, opts)
	if err != nil {
		return err
	}
	delete(s.tours, tour.ID)
	return nil
}

// Len counts stored tours, secret ones included.
func (s *TourStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tours)
}

func (s *TourStore) lookup(id string, opts []repository.ReadOption) (model.Tour, error) {
	if s.Err != nil {
		return model.Tour{}, s.Err
	}

	oid, err := dberr.ParseObjectID(id)
	if err != nil {
		return model.Tour{}, err
	}

	tour, ok := s.tours[oid]
	if !ok || !inScope(tour, opts) {
		return model.Tour{}, repository.ErrNotFound
	}
	return tour, nil
}

// inScope applies repository.TourScope to one document.
func inScope(tour model.Tour, opts []repository.ReadOption) bool {
	return len(repository.TourScope(nil, opts...)) == 0 || !tour.SecretTour
}

// readTour applies the default projection and derived values.
func readTour(tour model.Tour) model.Tour {
	tour.CreatedAt = nil
	tour.ComputeDurationWeeks()
	return tour
}

// UserStore keeps users in memory.
type UserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]model.User
	order []primitive.ObjectID

	// Err, when set, is returned by every call.
	Err error
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[primitive.ObjectID]model.User)}
}

func (s *UserStore) Insert(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}

	user.ID = primitive.NewObjectID()
	stored := *user
	stored.PasswordConfirm = ""
	s.users[user.ID] = stored
	s.order = append(s.order, user.ID)
	return nil
}

func (s *UserStore) Find(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}

	users := []model.User{}
	for _, id := range s.order {
		if user, ok := s.users[id]; ok {
			user.Password = ""
			users = append(users, user)
		}
	}
	return users, nil
}

func (s *UserStore) FindByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return &user, nil
}

func (s *UserStore) Update(_ context.Context, id string, patch *model.UserPatch) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	raw, err := bson.Marshal(patch)
	if err != nil {
		return nil, err
	}
	if err := bson.Unmarshal(raw, &user); err != nil {
		return nil, err
	}

	s.users[user.ID] = user
	user.Password = ""
	return &user, nil
}

func (s *UserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.lookup(id)
	if err != nil {
		return err
	}
	delete(s.users, user.ID)
	return nil
}

// Stored returns the user as persisted, password hash included.
func (s *UserStore) Stored(id primitive.ObjectID) (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	return user, ok
}

func (s *UserStore) lookup(id string) (model.User, error) {
	if s.Err != nil {
		return model.User{}, s.Err
	}

	oid, err := dberr.ParseObjectID(id)
	if err != nil {
		return model.User{}, err
	}

	user, ok := s.users[oid]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return user, nil
}

func duplicateName(collection, name string) error {
	msg := fmt.Sprintf(`E11000 duplicate key error collection: natours.%s index: name_1 dup key: { name: %q }`, collection, name)
	return dberr.NewDuplicateKeyError(dberr.DuplicateKeyCode, msg, map[string]any{"name": name}, nil)
}
