package router

import (
	"net/http"

	"github.com/deppfellow/natours/internal/handler"
	"github.com/labstack/echo/v4"
)

func registerV1Routes(r *echo.Group, h *handler.Handlers) {
	registerTourRoutes(r.Group("/tours"), h.Tour)
	registerUserRoutes(r.Group("/users"), h.User)
}

func registerTourRoutes(r *echo.Group, h *handler.TourHandler) {
	r.GET("", handler.Handle(h.Handler, h.GetAllTours, http.StatusOK, &handler.ListToursRequest{}))
	r.POST("", handler.Handle(h.Handler, h.CreateTour, http.StatusOK, &handler.CreateTourRequest{}))
	r.GET("/:id", handler.Handle(h.Handler, h.GetTour, http.StatusOK, &handler.TourIDRequest{}))
	r.PATCH("/:id", handler.Handle(h.Handler, h.UpdateTour, http.StatusOK, &handler.UpdateTourRequest{}))
	r.DELETE("/:id", handler.HandleNoContent(h.Handler, h.DeleteTour, http.StatusNoContent, &handler.TourIDRequest{}))
}

func registerUserRoutes(r *echo.Group, h *handler.UserHandler) {
	r.GET("", handler.Handle(h.Handler, h.GetAllUsers, http.StatusOK, &handler.ListUsersRequest{}))
	r.POST("", handler.Handle(h.Handler, h.CreateUser, http.StatusOK, &handler.CreateUserRequest{}))
	r.GET("/:userId", handler.Handle(h.Handler, h.GetUser, http.StatusOK, &handler.UserIDRequest{}))
	r.PATCH("/:userId", handler.Handle(h.Handler, h.UpdateUser, http.StatusOK, &handler.UpdateUserRequest{}))
	r.DELETE("/:userId", handler.HandleNoContent(h.Handler, h.DeleteUser, http.StatusNoContent, &handler.UserIDRequest{}))
}
