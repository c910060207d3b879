package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/deppfellow/natours/internal/dberr"
	"github.com/deppfellow/natours/internal/errs"
	"github.com/deppfellow/natours/internal/lib/utils"
	"github.com/deppfellow/natours/internal/model"
	"github.com/deppfellow/natours/internal/repository"
	"github.com/deppfellow/natours/internal/repository/repotest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTour(name string) *model.Tour {
	return &model.Tour{
		Name:         name,
		Summary:      "Exploring the jaw-dropping US east coast by foot and by boat",
		Difficulty:   model.DifficultyMedium,
		Duration:     utils.Ptr(7.0),
		MaxGroupSize: utils.Ptr(15.0),
		Price:        utils.Ptr(497.0),
		ImageCover:   "tour-2-cover.jpg",
	}
}

func TestTourService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	svc := NewTourService(repotest.NewTourStore())

	created, err := svc.Create(ctx, newTour("The Sea Explorer"))
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())
	assert.Equal(t, "the-sea-explorer", created.Slug)
	assert.Equal(t, 1.0, *created.DurationWeeks)

	got, err := svc.Get(ctx, created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)
	assert.Nil(t, got.CreatedAt)
}

func TestTourService_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := NewTourService(repotest.NewTourStore())

	_, err := svc.Create(ctx, newTour("Sahara Trek Adventure"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, newTour("Sahara Trek Adventure"))
	assert.Equal(t, dberr.KindDuplicateKey, dberr.ErrKind(err))
}

func TestTourService_CreateInvalidNeverStores(t *testing.T) {
	store := repotest.NewTourStore()
	svc := NewTourService(store)

	tour := newTour("The Snow Adventurer")
	tour.PriceDiscount = utils.Ptr(500.0)

	_, err := svc.Create(context.Background(), tour)
	assert.Equal(t, dberr.KindValidation, dberr.ErrKind(err))
	assert.Zero(t, store.Len())
}

func TestTourService_SecretToursHidden(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewTourStore()
	svc := NewTourService(store)

	public, err := svc.Create(ctx, newTour("The Park Camper"))
	require.NoError(t, err)

	secret := newTour("The Secret Tour Trip")
	secret.SecretTour = true
	secret, err = svc.Create(ctx, secret)
	require.NoError(t, err)

	tours, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, tours, 1)
	assert.Equal(t, public.ID, tours[0].ID)

	_, err = svc.Get(ctx, secret.ID.Hex())
	assertNotFound(t, err, "No tour found with that ID")

	all, err := store.Find(ctx, repository.IncludeSecret())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestTourService_UpdateSkipsDiscountRule(t *testing.T) {
	ctx := context.Background()
	svc := NewTourService(repotest.NewTourStore())

	created, err := svc.Create(ctx, newTour("The City Wanderer"))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID.Hex(), &model.TourPatch{PriceDiscount: utils.Ptr(999.99)})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, *updated.PriceDiscount)
	assert.Equal(t, 497.0, *updated.Price)
}

func TestTourService_UpdateRenamesSlug(t *testing.T) {
	ctx := context.Background()
	svc := NewTourService(repotest.NewTourStore())

	created, err := svc.Create(ctx, newTour("The City Wanderer"))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID.Hex(), &model.TourPatch{Name: utils.Ptr("The Wine Taster")})
	require.NoError(t, err)
	assert.Equal(t, "the-wine-taster", updated.Slug)
}

func TestTourService_NotFound(t *testing.T) {
	ctx := context.Background()
	svc := NewTourService(repotest.NewTourStore())
	missing := "5c88fa8cf4afda39709c2955"

	_, err := svc.Get(ctx, missing)
	assertNotFound(t, err, "No tour found with that ID")

	_, err = svc.Update(ctx, missing, &model.TourPatch{})
	assertNotFound(t, err, "No tour found with that ID")

	assertNotFound(t, svc.Delete(ctx, missing), "No tour found with that ID")
}

func TestTourService_InvalidID(t *testing.T) {
	_, err := NewTourService(repotest.NewTourStore()).Get(context.Background(), "wrong-id")
	assert.Equal(t, dberr.KindCast, dberr.ErrKind(err))
}

func TestTourService_Delete(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewTourStore()
	svc := NewTourService(store)

	created, err := svc.Create(ctx, newTour("The Forest Hiker"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID.Hex()))
	assert.Zero(t, store.Len())
}

type fakeWelcome struct {
	to, name string
	err      error
}

func (f *fakeWelcome) EnqueueWelcomeEmail(_ context.Context, to, name string) error {
	f.to, f.name = to, name
	return f.err
}

func newUserService(store UserStore, welcome WelcomeEnqueuer) *UserService {
	logger := zerolog.Nop()
	svc := NewUserService(store, welcome, &logger)
	svc.cost = bcrypt.MinCost
	return svc
}

func TestUserService_CreateHashesAndHides(t *testing.T) {
	store := repotest.NewUserStore()
	welcome := &fakeWelcome{}
	svc := newUserService(store, welcome)

	created, err := svc.Create(context.Background(), &model.User{
		Name:            "Laura Wilson",
		Email:           "Laura@Example.com",
		Password:        "test1234",
		PasswordConfirm: "test1234",
	})
	require.NoError(t, err)

	assert.Empty(t, created.Password)
	assert.Empty(t, created.PasswordConfirm)
	assert.Equal(t, "laura@example.com", created.Email)

	stored, ok := store.Stored(created.ID)
	require.True(t, ok)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("test1234")))

	assert.Equal(t, "laura@example.com", welcome.to)
	assert.Equal(t, "Laura Wilson", welcome.name)
}

func TestUserService_CreateSurvivesEnqueueFailure(t *testing.T) {
	svc := newUserService(repotest.NewUserStore(), &fakeWelcome{err: errors.New("redis down")})

	_, err := svc.Create(context.Background(), &model.User{
		Name: "Leo Gillespie", Email: "leo@example.com",
		Password: "test1234", PasswordConfirm: "test1234",
	})
	assert.NoError(t, err)
}

func TestUserService_PasswordMismatch(t *testing.T) {
	store := repotest.NewUserStore()
	svc := newUserService(store, nil)

	_, err := svc.Create(context.Background(), &model.User{
		Name: "Leo Gillespie", Email: "leo@example.com",
		Password: "test1234", PasswordConfirm: "test4321",
	})

	var dbErr *dberr.Error
	require.True(t, errors.As(err, &dbErr))
	assert.Equal(t, []string{"Passwords don't match!"}, dbErr.Messages())
}

func TestUserService_UpdateAndNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(repotest.NewUserStore(), nil)

	created, err := svc.Create(ctx, &model.User{
		Name: "Jennifer Hardy", Email: "jennifer@example.com",
		Password: "test1234", PasswordConfirm: "test1234",
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID.Hex(), &model.UserPatch{Role: utils.Ptr(model.RoleGuide)})
	require.NoError(t, err)
	assert.Equal(t, model.RoleGuide, updated.Role)
	assert.Empty(t, updated.Password)

	require.NoError(t, svc.Delete(ctx, created.ID.Hex()))
	_, err = svc.Get(ctx, created.ID.Hex())
	assertNotFound(t, err, "No user found with that ID")
}

func assertNotFound(t *testing.T, err error, message string) {
	t.Helper()
	var appErr *errs.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
	assert.Equal(t, message, appErr.Message)
}
