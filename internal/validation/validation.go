// Package validation wraps go-playground/validator with the tags the track
// API needs and flattens failures into a field→tag map.
package validation

import (
	"errors"
	"path"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// assetIDRe keeps asset ids safe to embed in object keys and CDN paths.
var assetIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

var validate = newValidator()

// IsValidAssetID reports whether id can be used as a track asset id.
func IsValidAssetID(id string) bool {
	return assetIDRe.MatchString(id)
}

// isPlainFilename rejects names carrying a directory or lacking an extension.
func isPlainFilename(name string) bool {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return false
	}
	ext := path.Ext(name)
	return len(ext) > 1 && ext != name
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields under their json name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	custom := map[string]func(string) bool{
		"assetid":  IsValidAssetID,
		"filename": isPlainFilename,
	}
	for tag, fn := range custom {
		fn := fn
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return fn(fl.Field().String())
		}); err != nil {
			panic(err)
		}
	}
	return v
}

func ValidateStruct(s any) error {
	return validate.Struct(s)
}

// FieldErrors maps each failing field to the tag it failed on.
// It returns nil when err is not a validation error.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}
