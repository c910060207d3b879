package handler

import (
	"github.com/deppfellow/natours/internal/model"
	"github.com/deppfellow/natours/internal/server"
	"github.com/deppfellow/natours/internal/service"
	"github.com/deppfellow/natours/internal/validation"
	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	Handler
	users *service.UserService
}

func NewUserHandler(s *server.Server, users *service.UserService) *UserHandler {
	return &UserHandler{
		Handler: NewHandler(s),
		users:   users,
	}
}

type UserData struct {
	User *model.User `json:"user"`
}

type UsersData struct {
	Users []model.User `json:"users"`
}

type ListUsersRequest struct{}

func (r *ListUsersRequest) Validate() error { return nil }

type CreateUserRequest struct {
	model.User
}

func (r *CreateUserRequest) Validate() error { return nil }

type UserIDRequest struct {
	ID string `param:"userId" json:"-" validate:"required"`
}

func (r *UserIDRequest) Validate() error { return validation.Struct(r) }

// UpdateUserRequest never carries passwords: password fields in the body are ignored.
type UpdateUserRequest struct {
	ID string `param:"userId" json:"-" validate:"required"`
	model.UserPatch `validate:"-"`
}

func (r *UpdateUserRequest) Validate() error { return validation.Struct(r) }

func (h *UserHandler) GetAllUsers(c echo.Context, _ *ListUsersRequest) (Envelope[UsersData], error) {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		return Envelope[UsersData]{}, err
	}
	return list(len(users), UsersData{Users: users}), nil
}

func (h *UserHandler) CreateUser(c echo.Context, req *CreateUserRequest) (Envelope[UserData], error) {
	user := req.User
	created, err := h.users.Create(c.Request().Context(), &user)
	if err != nil {
		return Envelope[UserData]{}, err
	}
	return success(UserData{User: created}), nil
}

func (h *UserHandler) GetUser(c echo.Context, req *UserIDRequest) (Envelope[UserData], error) {
	user, err := h.users.Get(c.Request().Context(), req.ID)
	if err != nil {
		return Envelope[UserData]{}, err
	}
	return success(UserData{User: user}), nil
}

func (h *UserHandler) UpdateUser(c echo.Context, req *UpdateUserRequest) (Envelope[UserData], error) {
	patch := req.UserPatch
	user, err := h.users.Update(c.Request().Context(), req.ID, &patch)
	if err != nil {
		return Envelope[UserData]{}, err
	}
	return success(UserData{User: user}), nil
}

func (h *UserHandler) DeleteUser(c echo.Context, req *UserIDRequest) error {
	return h.users.Delete(c.Request().Context(), req.ID)
}
