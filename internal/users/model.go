package users

import (
	"errors"

	"storefront-api/internal/validation"
)

var ErrNotFound = errors.New("user not found")

type User struct {
	ID      int    `json:"id" example:"1"`
	Name    string `json:"name" example:"Jane"`
	Surname string `json:"surname" example:"Doe"`
	Age     int    `json:"age" example:"28"`
}

type CreateInput struct {
	Name    string `json:"name" example:"Jane"`
	Surname string `json:"surname" example:"Doe"`
	Age     int    `json:"age" example:"28"`
}

// CreateShape is the accepted body of POST /users.
var CreateShape = validation.NewShape(
	validation.F("name", validation.NonEmptyString()),
	validation.F("surname", validation.NonEmptyString()),
	validation.F("age", validation.Integer().Min(0)),
)
