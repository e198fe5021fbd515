package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("lang", isLanguageCode); err != nil {
		return nil, nil, fmt.Errorf("failed to register lang validation: %w", err)
	}
	if err := validate.RegisterTranslation("lang", trans, func(ut ut.Translator) error {
		return ut.Add("lang", "{0} must be a language code such as de or pt-BR", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("lang", strings.TrimPrefix(fe.Namespace(), "Config."))
		return t
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to register lang translation: %w", err)
	}

	return validate, trans, nil
}

// isLanguageCode accepts a two or three letter base code with an optional
// region or script suffix separated by '-' or '_'.
func isLanguageCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	base, region, hasRegion := strings.Cut(strings.ReplaceAll(code, "_", "-"), "-")
	if len(base) < 2 || len(base) > 3 || !isLetters(base) {
		return false
	}
	if hasRegion {
		return len(region) >= 2 && len(region) <= 4 && isAlnum(region)
	}
	return true
}

func isLetters(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

func isAlnum(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
