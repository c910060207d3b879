package model

import (
	"context"
	"strings"

	"github.com/deppfellow/natours/internal/lib/utils"
	"github.com/deppfellow/natours/internal/validation"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser      = "user"
	RoleAdmin     = "admin"
	RoleGuide     = "guide"
	RoleLeadGuide = "lead_guide"

	DefaultPhoto = "default.jpg"

	// MinPasswordLength is enforced on the plain password, before hashing.
	MinPasswordLength = 8
)

// User is an account. Password holds the bcrypt hash once stored and is
// never part of a read projection; PasswordConfirm is never stored.
type User struct {
	ID              primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name            string             `json:"name" bson:"name" validate:"required"`
	Email           string             `json:"email" bson:"email" validate:"required,email"`
	Role            string             `json:"role" bson:"role" validate:"omitempty,oneof=user admin guide lead_guide"`
	Active          *bool              `json:"active" bson:"active"`
	Photo           string             `json:"photo" bson:"photo"`
	Password        string             `json:"password,omitempty" bson:"password,omitempty" validate:"required,min=8"`
	PasswordConfirm string             `json:"passwordConfirm,omitempty" bson:"-" validate:"required"`
}

// UserPatch is a partial user update. Passwords cannot be changed through it.
type UserPatch struct {
	Name   *string `json:"name,omitempty" bson:"name,omitempty" validate:"omitnil,notempty"`
	Email  *string `json:"email,omitempty" bson:"email,omitempty" validate:"omitnil,notempty,email"`
	Role   *string `json:"role,omitempty" bson:"role,omitempty" validate:"omitnil,oneof=user admin guide lead_guide"`
	Active *bool   `json:"active,omitempty" bson:"active,omitempty"`
	Photo  *string `json:"photo,omitempty" bson:"photo,omitempty"`
}

var userMessages = map[string]string{
	"name|required":            "Please tell us your name!",
	"email|required":           "Please provide your email!",
	"email|email":              "Please provide a valid email!",
	"password|required":        "Please provide a password!",
	"password|min":             "Path `password` (`{VALUE}`) is shorter than the minimum allowed length (8).",
	"passwordConfirm|required": "Please confirm your password!",
	"passwordConfirm|eqfield":  "Passwords don't match!",
}

// passwordsMatch runs on create and save only. Patches never carry passwords.
func passwordsMatch(ctx context.Context, sl validator.StructLevel) {
	if validation.OpFromContext(ctx) != validation.OpCreate {
		return
	}

	user := sl.Current().Interface().(User)
	if user.PasswordConfirm != "" && user.PasswordConfirm != user.Password {
		sl.ReportError(user.PasswordConfirm, "passwordConfirm", "PasswordConfirm", "eqfield", "password")
	}
}

// UserSchema validates new users.
var UserSchema = newUserSchema()

// UserPatchSchema validates partial user updates.
var UserPatchSchema = newUserPatchSchema()

func newUserSchema() *validation.Schema[User] {
	s := validation.NewSchema[User]("User", userMessages, passwordsMatch)

	s.Defaults = []func(*User){
		func(u *User) {
			if u.Role == "" {
				u.Role = RoleUser
			}
			if u.Active == nil {
				u.Active = utils.Ptr(true)
			}
			if u.Photo == "" {
				u.Photo = DefaultPhoto
			}
		},
	}

	s.Setters = []func(*User){
		func(u *User) {
			u.Name = strings.TrimSpace(u.Name)
			u.Email = strings.ToLower(strings.TrimSpace(u.Email))
		},
	}

	return s
}

func newUserPatchSchema() *validation.Schema[UserPatch] {
	s := validation.NewSchema[UserPatch]("User", userMessages)

	s.Setters = []func(*UserPatch){
		func(p *UserPatch) {
			utils.TrimPtr(p.Name)
			utils.LowerTrimPtr(p.Email)
		},
	}

	return s
}
