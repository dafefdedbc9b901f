package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrompt(t *testing.T) {
	tests := []struct {
		name     string
		language string
		want     string
	}{
		{name: "known code", language: "ja", want: "Translate the following abstract into Japanese:\n\nHello"},
		{name: "uppercase code", language: "DE", want: "Translate the following abstract into German:\n\nHello"},
		{name: "free form", language: "Portuguese", want: "Translate the following abstract into Portuguese:\n\nHello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Prompt("Hello", tt.language))
		})
	}
}
