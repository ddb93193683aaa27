package httpgin

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const unknownFieldPrefix = "json: unknown field "

func init() {
	binding.EnableDecoderDisallowUnknownFields = true

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

// jsonFieldName reports struct fields by their JSON key in validation errors.
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// bindErr answers 400 with a client-facing message for a failed ShouldBindJSON.
func bindErr(c *gin.Context, err error) {
	badRequest(c, bindMessage(err))
}

func bindMessage(err error) string {
	var (
		verrs   validator.ValidationErrors
		typeErr *json.UnmarshalTypeError
		synErr  *json.SyntaxError
	)

	switch {
	case errors.As(err, &verrs) && len(verrs) > 0:
		fe := verrs[0]
		if fe.Tag() == "required" {
			return fe.Field() + " is required."
		}
		return fe.Field() + " is invalid."
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return "Request body has the wrong shape."
		}
		return typeErr.Field + " has the wrong type."
	case errors.As(err, &synErr), errors.Is(err, io.ErrUnexpectedEOF):
		return "Request body is not valid JSON."
	case errors.Is(err, io.EOF):
		return "Request body is required."
	case strings.HasPrefix(err.Error(), unknownFieldPrefix):
		return "Unknown field " + strings.TrimPrefix(err.Error(), unknownFieldPrefix) + "."
	default:
		return "Invalid request body."
	}
}
