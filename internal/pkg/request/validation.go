package request

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var registerOnce sync.Once

// RegisterValidators installs the custom binding tags used by the DTOs on gin's validator.
// It is safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		// notblank rejects strings made only of whitespace.
		_ = v.RegisterValidation("notblank", validators.NotBlank)
		_ = v.RegisterValidation("date", isDate)
	})
}

// isDate accepts YYYY-MM-DD strings. Pair with omitempty for optional fields.
func isDate(fl validator.FieldLevel) bool {
	_, err := ParseDate(fl.Field().String())
	return err == nil
}
