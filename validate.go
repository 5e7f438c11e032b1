package bind

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateTag returns a validator for WithValidator that checks values
// against a validator/v10 tag, such as "min=0,max=100" or "email".
//
// The tag is checked on first use; an invalid tag rejects every value.
func ValidateTag[T any](tag string) func(T) bool {
	return func(v T) (ok bool) {
		defer func() {
			if r := recover(); r != nil {
				logger().Warn("invalid validation tag", "tag", tag, "panic", r)
				ok = false
			}
		}()

		return validate.Var(v, tag) == nil
	}
}
