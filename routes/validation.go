package routes

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mbolis/survey-studio/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check validates a request body and lists every rejected field.
func check(v any) []model.FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []model.FieldError{{DefaultMessage: err.Error()}}
	}

	errs := make([]model.FieldError, len(verrs))
	for i, fe := range verrs {
		errs[i] = model.FieldError{
			Field:          fieldPath(fe),
			DefaultMessage: fieldPath(fe) + " " + describe(fe),
		}
	}
	return errs
}

// fieldPath drops the name of the top level struct from the namespace.
func fieldPath(fe validator.FieldError) string {
	_, path, found := strings.Cut(fe.Namespace(), ".")
	if !found {
		return fe.Field()
	}
	return path
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be blank"
	case "required_if":
		return "must not be blank for Likert questions"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime":
		return "must be formatted as " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at least %s element(s)", fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters long", fe.Param())
		}
		return "must be at least " + fe.Param()
	}
	return "is invalid (" + fe.Tag() + ")"
}

// checkSurvey validates a survey payload, including the ordering of its
// sections and questions: priorities must count up from 1.
func checkSurvey(s model.Survey) []model.FieldError {
	errs := check(s)
	if len(errs) > 0 {
		return errs
	}

	for i, sec := range s.Sections {
		if sec.Priority != i+1 {
			field := fmt.Sprintf("sections[%d].priority", i)
			errs = append(errs, model.FieldError{
				Field:          field,
				DefaultMessage: fmt.Sprintf("%s must be %d", field, i+1),
			})
		}
		for j, q := range sec.Questions {
			if q.QuestionPriority != j+1 {
				field := fmt.Sprintf("sections[%d].questions[%d].questionPriority", i, j)
				errs = append(errs, model.FieldError{
					Field:          field,
					DefaultMessage: fmt.Sprintf("%s must be %d", field, j+1),
				})
			}
		}
	}
	return errs
}
