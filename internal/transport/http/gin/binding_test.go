package httpgin

import (
	"errors"
	"io"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

func TestBindMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"empty body", io.EOF, "Request body is required."},
		{"truncated body", io.ErrUnexpectedEOF, "Request body is not valid JSON."},
		{"unknown field", errors.New(`json: unknown field "bogus"`), `Unknown field "bogus".`},
		{"anything else", errors.New("Key: 'X.Y' Error:boom"), "Invalid request body."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bindMessage(tt.err))
		})
	}
}

func TestDecoderRejectsUnknownFieldsOnceLoaded(t *testing.T) {
	assert.True(t, binding.EnableDecoderDisallowUnknownFields)
}
