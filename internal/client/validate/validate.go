// Package validate checks user input before it reaches the identity
// provider. Rules and messages mirror the entry forms: a valid email, a
// password of at least six characters, a name of at least two characters,
// and a confirmation that matches the password.
package validate

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/dmitrijs2005/labscribe/internal/common"
)

const (
	MsgEmail           = "Please enter a valid email address"
	MsgPasswordLength  = "Password must be at least 6 characters"
	MsgNameLength      = "Name must be at least 2 characters"
	MsgPasswordsDiffer = "Passwords do not match"
)

var (
	emailRules = []validation.Rule{
		validation.Required.Error(MsgEmail),
		is.Email.Error(MsgEmail),
	}
	passwordRules = []validation.Rule{
		validation.Required.Error(MsgPasswordLength),
		validation.Length(common.MinPasswordLength, 0).Error(MsgPasswordLength),
	}
)

type SignIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s SignIn) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Email, emailRules...),
		validation.Field(&s.Password, passwordRules...),
	)
}

type SignUp struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (s SignUp) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.FullName,
			validation.Required.Error(MsgNameLength),
			validation.Length(2, 0).Error(MsgNameLength),
		),
		validation.Field(&s.Email, emailRules...),
		validation.Field(&s.Password, passwordRules...),
		validation.Field(&s.ConfirmPassword, validation.By(equals(s.Password))),
	)
}

func equals(want string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s != want {
			return errors.New(MsgPasswordsDiffer)
		}
		return nil
	}
}

// First returns the message of the first failing field in the given order,
// or err's text when it is not a validation.Errors.
func First(err error, order ...string) string {
	if err == nil {
		return ""
	}
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	for _, field := range order {
		if e, ok := verrs[field]; ok && e != nil {
			return e.Error()
		}
	}
	for _, e := range verrs {
		if e != nil {
			return e.Error()
		}
	}
	return err.Error()
}

// Field orders used with First, matching the order the forms ask.
var (
	SignInOrder = []string{"email", "password"}
	SignUpOrder = []string{"full_name", "email", "password", "confirm_password"}
)
