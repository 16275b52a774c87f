// Package reqvalidator validates decoded request bodies.
package reqvalidator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/hourbook/hourbook/internal/common/httpx"
	"github.com/hourbook/hourbook/internal/hourbooksrv/config"
)

var (
	v    *validator.Validate
	once sync.Once
)

func V() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonTag)
		v.RegisterValidation("membercode", memberCodeValidator)
	})
	return v
}

// jsonTag names fields after their JSON key so messages match the wire format.
func jsonTag(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" || tag == "-" {
		return field.Name
	}
	return strings.Split(tag, ",")[0]
}

func memberCodeValidator(fl validator.FieldLevel) bool {
	return config.IsValidMemberCode(fl.Field().String())
}

// Check validates req and returns a 400 describing every failed field.
func Check(req any) error {
	err := V().Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return httpx.ErrInvalidRequest()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, describe(e))
	}
	return httpx.ErrInvalidRequest(strings.Join(msgs, "; "))
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "membercode":
		return fmt.Sprintf("%s must be a 5-digit member code", e.Field())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", e.Field(), e.Param())
	}
	return fmt.Sprintf("%s is invalid", e.Field())
}
