package middleware

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// branch names are path-safe: no spaces, no leading punctuation
var branchNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._/-]*$`)

// RegisterValidations installs custom binding rules on gin's validator.
// Called once at startup.
func RegisterValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("branchname", func(fl validator.FieldLevel) bool {
			return branchNamePattern.MatchString(fl.Field().String())
		})
	}
}
