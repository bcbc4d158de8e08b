package mention

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", []string{}},
		{"no mentions", "hello world", []string{}},
		{"case preserved and deduplicated", "hi @Jan and @jan and @jan!", []string{"Jan", "jan"}},
		{"punctuation trimmed", "(@anna), @bob. @carl?", []string{"anna", "bob", "carl"}},
		{"underscores and digits", "@leader_2025 ok", []string{"leader_2025"}},
		{"bare at sign", "mail me @ home", []string{}},
		{"email address", "contact jan@example.org", []string{"example"}},
		{"unicode letters", "bedankt @Zoë", []string{"Zoë"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.text).Sorted())
		})
	}
}

func TestSetHas(t *testing.T) {
	s := Extract("@B says hi to @c")
	assert.True(t, s.Has("B"))
	assert.True(t, s.Has("c"))
	assert.False(t, s.Has("b"))
}
