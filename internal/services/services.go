// Package services holds the write path: form validation and the resulting
// record store mutations. Read state flows through views, not here.
package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"gudang/internal/apperr"
)

// newValidator builds a validator that reports fields by their json tag, so
// validation failures name the same fields the API speaks.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// validationError converts a validator failure into the application's
// ValidationError, keeping the first failing field.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		return apperr.Validation(e.Field(), fmt.Sprintf("failed the '%s' constraint", e.Tag()))
	}
	return apperr.Validation("", err.Error())
}
