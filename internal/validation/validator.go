package validation

import (
	"errors"
	"reflect"
	"strings"

	"quiz-runner/internal/domain"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gofiber/fiber/v2"
)

const tagQuizLevel = "quizlevel"

// Validator validates request DTOs and reports failures as domain.ValidationErrors
// with English messages keyed by JSON field name.
type Validator struct {
	validate *govalidator.Validate
	trans    ut.Translator
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	v := govalidator.New(govalidator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(tagQuizLevel, func(fl govalidator.FieldLevel) bool {
		_, ok := domain.ParseQuizLevel(fl.Field().String())
		return ok
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)
	_ = v.RegisterTranslation(tagQuizLevel, trans,
		func(ut ut.Translator) error {
			return ut.Add(tagQuizLevel, "{0} must be one of low, medium, hard", true)
		},
		func(ut ut.Translator, fe govalidator.FieldError) string {
			t, _ := ut.T(tagQuizLevel, fe.Field())
			return t
		})

	return &Validator{validate: v, trans: trans}
}

// Struct validates s; it returns nil or domain.ValidationErrors.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	return v.TranslateErrors(err)
}

// TranslateErrors converts validator errors into domain field errors. Errors of
// any other kind are returned unchanged.
func (v *Validator) TranslateErrors(err error) error {
	var ve govalidator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	out := make(domain.ValidationErrors, 0, len(ve))
	for _, fe := range ve {
		code := domain.CodeInvalidFormat
		if fe.Tag() == "required" {
			code = domain.CodeMissingField
		}
		out = append(out, domain.FieldError{
			Code:    code,
			Field:   fieldPath(fe),
			Message: fe.Translate(v.trans),
		})
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace, e.g. "edits[0].id".
func fieldPath(fe govalidator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// Bind decodes the JSON body into dst and validates it.
func (v *Validator) Bind(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return domain.NewInvalidInputError("Invalid request body").WithContext("detail", err.Error())
	}
	return v.Struct(dst)
}
