package domain

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate checks the structural shape of raw records. A single instance is
// safe for concurrent use and caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report wire names (Time, Year, ...) rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag := fld.Tag.Get("json")
		if tag == "-" || tag == "" {
			return fld.Name
		}
		if idx := strings.Index(tag, ","); idx >= 0 {
			tag = tag[:idx]
		}
		return tag
	})
	return v
}

// checkRequired returns a *MalformedRecordError for the first missing field.
func checkRequired(raw RawRecord) error {
	err := validate.Struct(raw)
	if err == nil {
		if raw.Year.IsZero() {
			return malformed("Year", "", "missing required field", nil)
		}
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return malformed(fe.Field(), "", "missing required field", err)
	}
	return malformed("record", "", "invalid structure", err)
}
