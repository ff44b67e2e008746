package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"interview-prep/internal/domain"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	instance *validator.Validate
	once     sync.Once
)

func engine() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their JSON (or query) name.
		instance.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "query"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
		_ = instance.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return primitive.IsValidObjectID(fl.Field().String())
		})
	})
	return instance
}

// Validator checks request DTOs against their validate tags.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{v: engine()}
}

// Struct validates s and returns nil or the list of failing fields.
func (v *Validator) Struct(s interface{}) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.NewInvalidInputError(err.Error())
	}
	out := make(domain.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, translate(fe))
	}
	return out
}

func translate(fe validator.FieldError) domain.ValidationError {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return domain.NewMissingFieldError(field)
	case "min", "max", "len", "gte", "lte":
		ve := domain.ValidationError{Field: field, Code: domain.CodeOutOfRange, Value: fe.Value()}
		switch fe.Kind() {
		case reflect.String:
			ve.Message = fmt.Sprintf("%s length must satisfy %s=%s", field, fe.Tag(), fe.Param())
		case reflect.Slice, reflect.Array, reflect.Map:
			ve.Message = fmt.Sprintf("%s must contain %s=%s items", field, fe.Tag(), fe.Param())
		default:
			ve.Message = fmt.Sprintf("%s must satisfy %s=%s", field, fe.Tag(), fe.Param())
		}
		return ve
	case "oneof":
		return domain.ValidationError{
			Field:   field,
			Code:    domain.CodeInvalidFormat,
			Message: fmt.Sprintf("%s must be one of: %s", field, fe.Param()),
			Value:   fe.Value(),
		}
	default:
		return domain.NewInvalidFormatError(field, fe.Value())
	}
}

// ObjectID parses a path or body identifier. field names the parameter in
// the returned validation error.
func (v *Validator) ObjectID(field, raw string) (primitive.ObjectID, error) {
	if strings.TrimSpace(raw) == "" {
		return primitive.NilObjectID, domain.ValidationErrors{domain.NewMissingFieldError(field)}
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, domain.ValidationErrors{domain.NewInvalidFormatError(field, raw)}
	}
	return id, nil
}
