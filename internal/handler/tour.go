package handler

import (
	"github.com/deppfellow/natours/internal/model"
	"github.com/deppfellow/natours/internal/server"
	"github.com/deppfellow/natours/internal/service"
	"github.com/deppfellow/natours/internal/validation"
	"github.com/labstack/echo/v4"
)

type TourHandler struct {
	Handler
	tours *service.TourService
}

func NewTourHandler(s *server.Server, tours *service.TourService) *TourHandler {
	return &TourHandler{
		Handler: NewHandler(s),
		tours:   tours,
	}
}

type TourData struct {
	Tour *model.Tour `json:"tour"`
}

type ToursData struct {
	Tours []model.Tour `json:"tours"`
}

type ListToursRequest struct{}

func (r *ListToursRequest) Validate() error { return nil }

// CreateTourRequest is the tour document sent in the body.
// Document rules are checked by model.TourSchema before the insert.
type CreateTourRequest struct {
	model.Tour
}

func (r *CreateTourRequest) Validate() error { return nil }

type TourIDRequest struct {
	ID string `param:"id" json:"-" validate:"required"`
}

func (r *TourIDRequest) Validate() error { return validation.Struct(r) }

// UpdateTourRequest carries the patch in the body. Patch rules are checked
// by model.TourPatchSchema, not by request validation.
type UpdateTourRequest struct {
	ID string `param:"id" json:"-" validate:"required"`
	model.TourPatch `validate:"-"`
}

func (r *UpdateTourRequest) Validate() error { return validation.Struct(r) }

func (h *TourHandler) GetAllTours(c echo.Context, _ *ListToursRequest) (Envelope[ToursData], error) {
	tours, err := h.tours.List(c.Request().Context())
	if err != nil {
		return Envelope[ToursData]{}, err
	}
	return list(len(tours), ToursData{Tours: tours}), nil
}

func (h *TourHandler) CreateTour(c echo.Context, req *CreateTourRequest) (Envelope[TourData], error) {
	tour := req.Tour
	created, err := h.tours.Create(c.Request().Context(), &tour)
	if err != nil {
		return Envelope[TourData]{}, err
	}
	return success(TourData{Tour: created}), nil
}

func (h *TourHandler) GetTour(c echo.Context, req *TourIDRequest) (Envelope[TourData], error) {
	tour, err := h.tours.Get(c.Request().Context(), req.ID)
	if err != nil {
		return Envelope[TourData]{}, err
	}
	return success(TourData{Tour: tour}), nil
}

func (h *TourHandler) UpdateTour(c echo.Context, req *UpdateTourRequest) (Envelope[TourData], error) {
	patch := req.TourPatch
	tour, err := h.tours.Update(c.Request().Context(), req.ID, &patch)
	if err != nil {
		return Envelope[TourData]{}, err
	}
	return success(TourData{Tour: tour}), nil
}

// DeleteTour answers 204; the response carries no body.
func (h *TourHandler) DeleteTour(c echo.Context, req *TourIDRequest) error {
	return h.tours.Delete(c.Request().Context(), req.ID)
}
