package model

import (
	"errors"
	"strings"
	"testing"

	"github.com/deppfellow/natours/internal/dberr"
	"github.com/deppfellow/natours/internal/lib/utils"
	"github.com/deppfellow/natours/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTour() Tour {
	return Tour{
		Name:         "  The Forest Hiker  ",
		Summary:      "Breathtaking hike through the Canadian Banff National Park",
		Difficulty:   DifficultyEasy,
		Duration:     utils.Ptr(5.0),
		MaxGroupSize: utils.Ptr(25.0),
		Price:        utils.Ptr(397.456),
		ImageCover:   "tour-1-cover.jpg",
	}
}

func validationErr(t *testing.T, err error) *dberr.Error {
	t.Helper()
	var dbErr *dberr.Error
	require.True(t, errors.As(err, &dbErr), "expected a validation error, got %v", err)
	require.Equal(t, dberr.KindValidation, dbErr.Kind)
	return dbErr
}

func TestTourSchema_DefaultsSettersAndSlug(t *testing.T) {
	tour := validTour()
	tour.RatingsAverage = utils.Ptr(4.666666)
	tour.StartLocation = &GeoPoint{Coordinates: []float64{-115.570154, 51.178456}}

	require.NoError(t, TourSchema.Prepare(&tour, validation.OpCreate))

	assert.Equal(t, "The Forest Hiker", tour.Name)
	assert.Equal(t, "the-forest-hiker", tour.Slug)
	assert.Equal(t, 397.5, *tour.Price)
	assert.Equal(t, 4.7, *tour.RatingsAverage)
	assert.Equal(t, 0.0, *tour.RatingsQuantity)
	assert.False(t, tour.SecretTour)
	assert.NotNil(t, tour.CreatedAt)
	assert.Equal(t, GeoPointType, tour.StartLocation.Type)
}

func TestTourSchema_DefaultRating(t *testing.T) {
	tour := validTour()

	require.NoError(t, TourSchema.Prepare(&tour, validation.OpCreate))
	assert.Equal(t, DefaultRatingsAverage, *tour.RatingsAverage)
}

func TestTourSchema_DiscountMustBeBelowPrice(t *testing.T) {
	for _, discount := range []float64{397.5, 500} {
		tour := validTour()
		tour.PriceDiscount = utils.Ptr(discount)

		dbErr := validationErr(t, TourSchema.Prepare(&tour, validation.OpCreate))
		require.Len(t, dbErr.Errors, 1)
		assert.Equal(t, "priceDiscount", dbErr.Errors[0].Path)
		assert.Contains(t, dbErr.Errors[0].Message, "should be below regular price")
	}

	tour := validTour()
	tour.PriceDiscount = utils.Ptr(99.94)
	require.NoError(t, TourSchema.Prepare(&tour, validation.OpCreate))
	assert.Equal(t, 99.9, *tour.PriceDiscount)
}

func TestTourSchema_DiscountMessageShowsRoundedValue(t *testing.T) {
	tour := validTour()
	tour.PriceDiscount = utils.Ptr(1000.04)

	dbErr := validationErr(t, TourSchema.Prepare(&tour, validation.OpCreate))
	assert.Equal(t, "Discount price (1000) should be below regular price!", dbErr.Errors[0].Message)
}

func TestTourSchema_AllFailuresInDeclarationOrder(t *testing.T) {
	tour := Tour{
		Name:           "Short",
		Difficulty:     "extreme",
		RatingsAverage: utils.Ptr(6.0),
	}

	dbErr := validationErr(t, TourSchema.Prepare(&tour, validation.OpCreate))
	assert.Equal(t, []string{
		"A tour name must have more or equal than 10 characters!",
		"A tour must have a description!",
		"Difficulty is either: easy, medium, or hard!",
		"A tour must have a duration!",
		"A tour must have a group size!",
		"A tour must have a price!",
		"A tour must have a cover image!",
		"Rating must be below or equal to 5.0",
	}, dbErr.Messages())
	assert.Empty(t, tour.Slug, "slug is derived only for accepted documents")
}

func TestTourSchema_NameLength(t *testing.T) {
	tour := validTour()
	tour.Name = strings.Repeat("a", 41)

	dbErr := validationErr(t, TourSchema.Prepare(&tour, validation.OpCreate))
	assert.Equal(t, []string{"A tour name must have less or equal than 40 characters!"}, dbErr.Messages())
}

func TestTourSchema_BlankNameIsMissing(t *testing.T) {
	tour := validTour()
	tour.Name = "    "

	dbErr := validationErr(t, TourSchema.Prepare(&tour, validation.OpCreate))
	assert.Equal(t, []string{"A tour must have a name!"}, dbErr.Messages())
}

func TestTourSchema_LocationType(t *testing.T) {
	tour := validTour()
	tour.Locations = []GeoPoint{{Type: GeoPointType}, {Type: "Polygon"}}

	dbErr := validationErr(t, TourSchema.Prepare(&tour, validation.OpCreate))
	require.Len(t, dbErr.Errors, 1)
	assert.Equal(t, "locations.1.type", dbErr.Errors[0].Path)
	assert.Equal(t, "`Polygon` is not a valid enum value for path `locations.1.type`.", dbErr.Errors[0].Message)
}

func TestTourPatchSchema_OnlyPresentFields(t *testing.T) {
	patch := TourPatch{PriceDiscount: utils.Ptr(9999.99)}

	require.NoError(t, TourPatchSchema.Prepare(&patch, validation.OpUpdate))
	assert.Equal(t, 10000.0, *patch.PriceDiscount)
	assert.Nil(t, patch.Slug)
}

func TestTourPatchSchema_RulesAndSlug(t *testing.T) {
	name := "  The Sea Explorer "
	patch := TourPatch{Name: &name}

	require.NoError(t, TourPatchSchema.Prepare(&patch, validation.OpUpdate))
	assert.Equal(t, "The Sea Explorer", *patch.Name)
	assert.Equal(t, "the-sea-explorer", *patch.Slug)

	empty := ""
	bad := TourPatch{Name: &empty, RatingsAverage: utils.Ptr(0.5)}
	dbErr := validationErr(t, TourPatchSchema.Prepare(&bad, validation.OpUpdate))
	assert.Equal(t, []string{
		"A tour must have a name!",
		"Rating must be above or equal to 1.0",
	}, dbErr.Messages())
}

func TestTour_ComputeDurationWeeks(t *testing.T) {
	tour := Tour{Duration: utils.Ptr(10.0)}
	tour.ComputeDurationWeeks()
	assert.Equal(t, 1.4, *tour.DurationWeeks)

	tour.Duration = nil
	tour.ComputeDurationWeeks()
	assert.Nil(t, tour.DurationWeeks)
}

func validUser() User {
	return User{
		Name:            " Jonas Schmedtmann ",
		Email:           "  Jonas@Example.COM ",
		Password:        "pass1234",
		PasswordConfirm: "pass1234",
	}
}

func TestUserSchema_DefaultsAndSetters(t *testing.T) {
	user := validUser()

	require.NoError(t, UserSchema.Prepare(&user, validation.OpCreate))
	assert.Equal(t, "Jonas Schmedtmann", user.Name)
	assert.Equal(t, "jonas@example.com", user.Email)
	assert.Equal(t, RoleUser, user.Role)
	assert.True(t, *user.Active)
	assert.Equal(t, DefaultPhoto, user.Photo)
}

func TestUserSchema_KeepsExplicitInactive(t *testing.T) {
	user := validUser()
	user.Active = utils.Ptr(false)

	require.NoError(t, UserSchema.Prepare(&user, validation.OpCreate))
	assert.False(t, *user.Active)
}

func TestUserSchema_PasswordsMustMatch(t *testing.T) {
	user := validUser()
	user.PasswordConfirm = "pass12345"

	dbErr := validationErr(t, UserSchema.Prepare(&user, validation.OpCreate))
	require.Len(t, dbErr.Errors, 1)
	assert.Contains(t, dbErr.Errors[0].Message, "don't match")
}

func TestUserSchema_AllFailures(t *testing.T) {
	user := User{Email: "not-an-email", Role: "root", Password: "short"}

	dbErr := validationErr(t, UserSchema.Prepare(&user, validation.OpCreate))
	assert.Equal(t, []string{
		"Please tell us your name!",
		"Please provide a valid email!",
		"`root` is not a valid enum value for path `role`.",
		"Path `password` (`short`) is shorter than the minimum allowed length (8).",
		"Please confirm your password!",
	}, dbErr.Messages())
}

func TestUserPatchSchema(t *testing.T) {
	email := " New@Example.com"
	patch := UserPatch{Email: &email}
	require.NoError(t, UserPatchSchema.Prepare(&patch, validation.OpUpdate))
	assert.Equal(t, "new@example.com", *patch.Email)

	role := "superuser"
	bad := UserPatch{Role: &role}
	dbErr := validationErr(t, UserPatchSchema.Prepare(&bad, validation.OpUpdate))
	assert.Equal(t, []string{"`superuser` is not a valid enum value for path `role`."}, dbErr.Messages())
}
