package slug_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leanttro/storefront/internal/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Doces da Ana", "doces-da-ana"},
		{"Açaí & Cupuaçu", "acai-cupuacu"},
		{"Pão de Queijo", "pao-de-queijo"},
		{"Kit Festa / Aniversário", "kit-festa-aniversario"},
		{"Promoção 2.0", "promocao-20"},
		{"  espaços  ", "espacos"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, slug.Make(tt.in), "input %q", tt.in)
	}
}

func TestMakeUnique(t *testing.T) {
	t.Parallel()

	a := slug.MakeUnique("Bolo de Chocolate")
	b := slug.MakeUnique("Bolo de Chocolate")

	assert.True(t, strings.HasPrefix(a, "bolo-de-chocolate-"))
	assert.Len(t, a, len("bolo-de-chocolate-")+4)
	assert.NotEqual(t, a, b)
}

func TestMakeUniqueEmptyBase(t *testing.T) {
	t.Parallel()

	got := slug.MakeUnique("")
	assert.Len(t, got, 4)
}
