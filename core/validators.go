package core

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	// custom validation tags & texts
	lmsRoleTag  = "lmsrole"
	lmsRoleText = "must be one of: student, instructor, admin, content"
	lmsRoles    = map[string]bool{"student": true, "instructor": true, "admin": true, "content": true}

	materialTypeTag  = "materialtype"
	materialTypeText = "must be one of: pdf, video, quiz"
	materialTypes    = map[string]bool{"pdf": true, "video": true, "quiz": true}

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

func init() {
	Validate = validator.New()
	enLocale := en.New()
	Translator, _ = ut.New(enLocale, enLocale).GetTranslator("en")
	InitValidators(Validate, Translator)
}

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(lmsRoleTag, lmsRoleValidation)
	RegisterCustomTranslation(validate, translator, lmsRoleTag, lmsRoleText)

	_ = validate.RegisterValidation(materialTypeTag, materialTypeValidation)
	RegisterCustomTranslation(validate, translator, materialTypeTag, materialTypeText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

func lmsRoleValidation(fl validator.FieldLevel) bool {
	return lmsRoles[fl.Field().String()]
}

func materialTypeValidation(fl validator.FieldLevel) bool {
	return materialTypes[fl.Field().String()]
}
