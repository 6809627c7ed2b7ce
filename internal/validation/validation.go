package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Errors maps a request field (json name, with list indexes) to a message.
type Errors map[string]string

func (e Errors) Add(field, message string) {
	if _, exists := e[field]; !exists {
		e[field] = message
	}
}

func (e Errors) Empty() bool { return len(e) == 0 }

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})

	// money is validated as a number so gte/lte work on it
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	return &Validator{v: v}
}

// Struct validates s against its `validate` tags. It returns an empty,
// non-nil Errors when s is valid so callers can keep adding checks.
func (val *Validator) Struct(s any) Errors {
	out := Errors{}

	err := val.v.Struct(s)
	if err == nil {
		return out
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out.Add("body", "the request body is invalid")
		return out
	}

	for _, fe := range verrs {
		out.Add(fieldKey(fe.Namespace()), Message(fe))
	}
	return out
}

func fieldKey(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// Message renders a human message for one failed rule.
func Message(fe validator.FieldError) string {
	field := strings.ReplaceAll(fe.Field(), "_", " ")

	switch fe.Tag() {
	case "required", "required_without":
		return fmt.Sprintf("the %s field is required", field)
	case "email":
		return fmt.Sprintf("the %s field must be a valid email address", field)
	case "oneof":
		return fmt.Sprintf("the selected %s is invalid", field)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("the %s field must not be greater than %s characters", field, fe.Param())
		}
		return fmt.Sprintf("the %s field must not be greater than %s", field, fe.Param())
	case "min":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("the %s field must be at least %s characters", field, fe.Param())
		case reflect.Slice, reflect.Array:
			return fmt.Sprintf("the %s field must have at least %s items", field, fe.Param())
		}
		return fmt.Sprintf("the %s field must be at least %s", field, fe.Param())
	case "gte", "gt":
		return fmt.Sprintf("the %s field must be at least %s", field, fe.Param())
	case "lte", "lt":
		return fmt.Sprintf("the %s field must not be greater than %s", field, fe.Param())
	}
	return fmt.Sprintf("the %s field is invalid", field)
}
