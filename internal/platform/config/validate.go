package config

import (
	stderrs "errors"
	"reflect"
	"sort"
	"strings"
	"sync"

	perr "prsentinel/internal/platform/errors"
	"prsentinel/internal/platform/logger"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var (
	vOnce sync.Once
	vInst *validator.Validate
)

// validate returns a process wide validator that reports fields by their env tag
func validate() *validator.Validate {
	vOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if tag := f.Tag.Get("env"); tag != "" && tag != "-" {
				return tag
			}
			return f.Name
		})
		vInst = v
	})
	return vInst
}

// Validate checks an options struct once at startup.
// Every failing field is reported in a single validation error so operators fix
// the whole bundle in one pass
func Validate(opts any) error {
	err := validate().Struct(opts)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !stderrs.As(err, &ves) {
		return perr.Wrap(err, perr.ErrorCodeValidation, "config validation failed")
	}
	msgs := make([]string, 0, len(ves))
	for _, fe := range ves {
		m := fe.Field() + " failed " + fe.Tag()
		if p := fe.Param(); p != "" {
			m += "=" + p
		}
		msgs = append(msgs, m)
	}
	sort.Strings(msgs)
	return perr.WithField(
		perr.Newf(perr.ErrorCodeValidation, "invalid configuration: %s", strings.Join(msgs, "; ")),
		ves[0].Field(),
	)
}

// MustValidate panics through the logger when Validate fails
func MustValidate(opts any) {
	if err := Validate(opts); err != nil {
		logger.Get().Panic().Err(err).Msg("invalid configuration")
	}
}

// LoadDotenv loads .env style files into the process env without overriding
// values that are already set. Missing files are ignored
func LoadDotenv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}
