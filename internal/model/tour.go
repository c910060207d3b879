package model

import (
	"context"
	"strings"
	"time"

	"github.com/deppfellow/natours/internal/lib/utils"
	"github.com/deppfellow/natours/internal/validation"
	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"

	// GeoPointType is the only GeoJSON type tours store.
	GeoPointType = "Point"

	DefaultRatingsAverage = 4.5
)

// GeoPoint is a GeoJSON point with an optional label.
type GeoPoint struct {
	Type        string    `json:"type" bson:"type" validate:"omitempty,oneof=Point"`
	Coordinates []float64 `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
	Address     string    `json:"address,omitempty" bson:"address,omitempty"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
}

// Tour is a bookable tour. Field order is the order validation failures are
// reported in.
type Tour struct {
	ID              primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name            string             `json:"name" bson:"name" validate:"required,max=40,min=10"`
	Slug            string             `json:"slug,omitempty" bson:"slug,omitempty"`
	Summary         string             `json:"summary" bson:"summary" validate:"required"`
	Description     string             `json:"description,omitempty" bson:"description,omitempty"`
	Difficulty      string             `json:"difficulty" bson:"difficulty" validate:"required,oneof=easy medium hard"`
	Duration        *float64           `json:"duration" bson:"duration" validate:"required"`
	MaxGroupSize    *float64           `json:"maxGroupSize" bson:"maxGroupSize" validate:"required"`
	Price           *float64           `json:"price" bson:"price" validate:"required"`
	PriceDiscount   *float64           `json:"priceDiscount,omitempty" bson:"priceDiscount,omitempty"`
	StartDates      []time.Time        `json:"startDates" bson:"startDates"`
	ImageCover      string             `json:"imageCover" bson:"imageCover" validate:"required"`
	Images          []string           `json:"images" bson:"images"`
	StartLocation   *GeoPoint          `json:"startLocation,omitempty" bson:"startLocation,omitempty"`
	Locations       []GeoPoint         `json:"locations" bson:"locations" validate:"dive"`
	RatingsAverage  *float64           `json:"ratingsAverage" bson:"ratingsAverage" validate:"omitnil,min=1,max=5"`
	RatingsQuantity *float64           `json:"ratingsQuantity" bson:"ratingsQuantity"`
	CreatedAt       *time.Time         `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	SecretTour      bool               `json:"secretTour" bson:"secretTour"`

	// DurationWeeks is computed on read and never stored.
	DurationWeeks *float64 `json:"durationWeeks,omitempty" bson:"-"`
}

// ComputeDurationWeeks sets DurationWeeks from Duration.
func (t *Tour) ComputeDurationWeeks() {
	if t.Duration == nil {
		t.DurationWeeks = nil
		return
	}
	weeks := validation.RoundOneDecimal(*t.Duration / 7)
	t.DurationWeeks = &weeks
}

// TourPatch is a partial tour update. Nil fields are left untouched.
type TourPatch struct {
	Name            *string     `json:"name,omitempty" bson:"name,omitempty" validate:"omitnil,notempty,max=40,min=10"`
	Slug            *string     `json:"-" bson:"slug,omitempty"`
	Summary         *string     `json:"summary,omitempty" bson:"summary,omitempty" validate:"omitnil,notempty"`
	Description     *string     `json:"description,omitempty" bson:"description,omitempty"`
	Difficulty      *string     `json:"difficulty,omitempty" bson:"difficulty,omitempty" validate:"omitnil,notempty,oneof=easy medium hard"`
	Duration        *float64    `json:"duration,omitempty" bson:"duration,omitempty"`
	MaxGroupSize    *float64    `json:"maxGroupSize,omitempty" bson:"maxGroupSize,omitempty"`
	Price           *float64    `json:"price,omitempty" bson:"price,omitempty"`
	PriceDiscount   *float64    `json:"priceDiscount,omitempty" bson:"priceDiscount,omitempty"`
	StartDates      []time.Time `json:"startDates,omitempty" bson:"startDates,omitempty"`
	ImageCover      *string     `json:"imageCover,omitempty" bson:"imageCover,omitempty" validate:"omitnil,notempty"`
	Images          []string    `json:"images,omitempty" bson:"images,omitempty"`
	StartLocation   *GeoPoint   `json:"startLocation,omitempty" bson:"startLocation,omitempty"`
	Locations       []GeoPoint  `json:"locations,omitempty" bson:"locations,omitempty" validate:"omitempty,dive"`
	RatingsAverage  *float64    `json:"ratingsAverage,omitempty" bson:"ratingsAverage,omitempty" validate:"omitnil,min=1,max=5"`
	RatingsQuantity *float64    `json:"ratingsQuantity,omitempty" bson:"ratingsQuantity,omitempty"`
	SecretTour      *bool       `json:"secretTour,omitempty" bson:"secretTour,omitempty"`
}

var tourMessages = map[string]string{
	"name|required":         "A tour must have a name!",
	"name|max":              "A tour name must have less or equal than 40 characters!",
	"name|min":              "A tour name must have more or equal than 10 characters!",
	"summary|required":      "A tour must have a description!",
	"difficulty|required":   "A tour must have a difficulty!",
	"difficulty|oneof":      "Difficulty is either: easy, medium, or hard!",
	"duration|required":     "A tour must have a duration!",
	"maxGroupSize|required": "A tour must have a group size!",
	"price|required":        "A tour must have a price!",
	"priceDiscount|ltfield": "Discount price ({VALUE}) should be below regular price!",
	"imageCover|required":   "A tour must have a cover image!",
	"ratingsAverage|min":    "Rating must be above or equal to 1.0",
	"ratingsAverage|max":    "Rating must be below or equal to 5.0",
}

// discountBelowPrice only holds for documents being created: an update
// patch carries no price to compare against.
func discountBelowPrice(ctx context.Context, sl validator.StructLevel) {
	if validation.OpFromContext(ctx) != validation.OpCreate {
		return
	}

	tour := sl.Current().Interface().(Tour)
	if tour.PriceDiscount == nil {
		return
	}
	if tour.Price == nil || *tour.PriceDiscount >= *tour.Price {
		sl.ReportError(*tour.PriceDiscount, "priceDiscount", "PriceDiscount", "ltfield", "price")
	}
}

// TourSchema validates new tours.
var TourSchema = newTourSchema()

// TourPatchSchema validates partial tour updates.
var TourPatchSchema = newTourPatchSchema()

func newTourSchema() *validation.Schema[Tour] {
	s := validation.NewSchema[Tour]("Tour", tourMessages, discountBelowPrice)

	s.Defaults = []func(*Tour){
		func(t *Tour) {
			if t.RatingsAverage == nil {
				t.RatingsAverage = utils.Ptr(DefaultRatingsAverage)
			}
			if t.RatingsQuantity == nil {
				t.RatingsQuantity = utils.Ptr(0.0)
			}
			if t.CreatedAt == nil {
				now := time.Now().UTC()
				t.CreatedAt = &now
			}
			if t.StartDates == nil {
				t.StartDates = []time.Time{}
			}
			if t.Images == nil {
				t.Images = []string{}
			}
			if t.Locations == nil {
				t.Locations = []GeoPoint{}
			}
			defaultPointType(t.StartLocation)
			for i := range t.Locations {
				defaultPointType(&t.Locations[i])
			}
		},
	}

	s.Setters = []func(*Tour){
		func(t *Tour) {
			t.Name = strings.TrimSpace(t.Name)
			t.Summary = strings.TrimSpace(t.Summary)
			t.Description = strings.TrimSpace(t.Description)
			validation.RoundPtr(t.Price)
			validation.RoundPtr(t.PriceDiscount)
			validation.RoundPtr(t.RatingsAverage)
		},
	}

	s.Derived = []func(*Tour){
		func(t *Tour) { t.Slug = slug.Make(t.Name) },
	}

	return s
}

func newTourPatchSchema() *validation.Schema[TourPatch] {
	s := validation.NewSchema[TourPatch]("Tour", tourMessages)

	s.Setters = []func(*TourPatch){
		func(p *TourPatch) {
			utils.TrimPtr(p.Name)
			utils.TrimPtr(p.Summary)
			utils.TrimPtr(p.Description)
			validation.RoundPtr(p.Price)
			validation.RoundPtr(p.PriceDiscount)
			validation.RoundPtr(p.RatingsAverage)
			defaultPointType(p.StartLocation)
			for i := range p.Locations {
				defaultPointType(&p.Locations[i])
			}
		},
	}

	s.Derived = []func(*TourPatch){
		func(p *TourPatch) {
			if p.Name != nil {
				p.Slug = utils.Ptr(slug.Make(*p.Name))
			}
		},
	}

	return s
}

func defaultPointType(p *GeoPoint) {
	if p != nil && p.Type == "" {
		p.Type = GeoPointType
	}
}
