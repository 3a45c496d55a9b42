package model

import "github.com/go-playground/validator/v10"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Credential is a username/password pair as stored by a credential backend.
// Passwords are kept and compared in plaintext.
type Credential struct {
	Username string `json:"username" bson:"username" yaml:"username" validate:"required"`
	Password string `json:"password" bson:"password" yaml:"password" validate:"required"`
}

// Validate reports an error when either field is empty. Whitespace is not
// trimmed; a single space is a valid username.
func (c Credential) Validate() error {
	return validate.Struct(c)
}
