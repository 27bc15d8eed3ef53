package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// credentialTag runs one of the credential checks on a string field, e.g.
//
//	Email string `validate:"credential=email"`
const credentialTag = "credential"

var checks = map[string]func(string) error{
	"email":    Email,
	"password": Password,
	"fullname": FullName,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation(credentialTag, func(fl validator.FieldLevel) bool {
		check, ok := checks[fl.Param()]
		if !ok {
			panic(fmt.Sprintf("validation: unknown credential check %q", fl.Param()))
		}
		return check(fl.Field().String()) == nil
	}, true); err != nil {
		panic(err)
	}
	return v
}

// Struct validates a request struct using its credential tags. It returns the
// first failing field, in declaration order, as an *Error.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	if fe.Tag() == credentialTag {
		if check, ok := checks[fe.Param()]; ok {
			if cerr := check(fmt.Sprint(fe.Value())); cerr != nil {
				return cerr
			}
		}
	}
	return fail(fe.Field(), fmt.Sprintf("%s is invalid", fe.Field()))
}
