// Package forms declares the untrusted-input structs bound from POST
// bodies and validates them into per-field error maps.
package forms

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report errors under the form field name, not the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Errors maps form field names to a single human-readable message each.
type Errors map[string]string

func (e Errors) Any() bool { return len(e) > 0 }

// Validate runs the struct's validate tags and converts failures into
// user-facing messages.
func Validate(form any) Errors {
	errs := Errors{}
	if err := validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			errs["__all__"] = "Invalid input."
			return errs
		}
		for _, fe := range verrs {
			if _, seen := errs[fe.Field()]; seen {
				continue
			}
			errs[fe.Field()] = message(fe)
		}
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "eqfield":
		return "The two password fields didn't match."
	case "min":
		return "Ensure this value has at least " + fe.Param() + " characters."
	case "max":
		return "Ensure this value has at most " + fe.Param() + " characters."
	default:
		return "Invalid value."
	}
}

type SignupForm struct {
	Username  string `form:"username" validate:"required,min=3,max=150"`
	Password1 string `form:"password1" validate:"required,min=8"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
}

type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type CommentForm struct {
	Name  string `form:"name" validate:"required,max=80"`
	Email string `form:"email" validate:"required,email,max=100"`
	Body  string `form:"body" validate:"required"`
}

type SponsorForm struct {
	FirstName string `form:"first_name" validate:"required,max=30"`
	LastName  string `form:"last_name" validate:"required,max=30"`
	Email     string `form:"email" validate:"omitempty,email,max=100"`
}

type ArtistForm struct {
	FirstName      string `form:"first_name" validate:"required,max=30"`
	LastName       string `form:"last_name" validate:"required,max=30"`
	Email          string `form:"email" validate:"omitempty,email,max=100"`
	EnrollmentDate string `form:"enrollment_date" validate:"required,datetime=2006-01-02"`
}

type PostForm struct {
	Title string `form:"title" validate:"required,max=200"`
	Body  string `form:"body" validate:"required"`
}
