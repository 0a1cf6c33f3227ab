package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "The Third Man", "the third man"},
		{"collapses whitespace", "  The   Third\tMan ", "the third man"},
		{"strips diacritics", "Amélie", "amelie"},
		{"strips diacritics german", "Die Büchse der Pandora", "die buchse der pandora"},
		{"drops punctuation", "WALL·E", "walle"},
		{"separators become spaces", "Crouching Tiger, Hidden Dragon: Part-Two", "crouching tiger hidden dragon part two"},
		{"keeps digits", "2001: A Space Odyssey", "2001 a space odyssey"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"punctuation only", "!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTitle(tt.in))
		})
	}
}

func TestNormalizeTitle_Idempotent(t *testing.T) {
	for _, in := range []string{"Amélie", "The  THIRD man", "Léon: The Professional"} {
		once := NormalizeTitle(in)
		assert.Equal(t, once, NormalizeTitle(once), "normalizing %q twice must be stable", in)
	}
}
