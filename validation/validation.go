// Package validation wraps a shared go-playground validator with English
// error messages keyed by yaml/json field names.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	once  sync.Once
	valid *validator.Validate
	trans ut.Translator
)

func initValidator() {
	enLoc := en.New()
	uni := ut.New(enLoc, enLoc)
	trans, _ = uni.GetTranslator("en")

	valid = validator.New(validator.WithRequiredStructEnabled())

	// report yaml (then json) names so messages match what users type
	valid.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"yaml", "json"} {
			tag := fld.Tag.Get(key)
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			if tag != "" && tag != "-" {
				return tag
			}
		}
		return fld.Name
	})

	_ = en_translations.RegisterDefaultTranslations(valid, trans)
}

// Struct validates v and returns nil or an error whose message lists every
// failing field, one per line.
func Struct(v any) error {
	once.Do(initValidator)

	err := valid.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fe.Translate(trans))
	}
	return errors.New(strings.Join(msgs, "\n"))
}
