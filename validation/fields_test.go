package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func strp(s string) *string { return &s }

func TestIsValidAmountBounds(t *testing.T) {
	cases := []struct {
		amount int64
		want   bool
	}{
		{-1, false},
		{0, false},
		{1, true},
		{999_999_999, true},
		{1_000_000_000, false},
		{2_000_000_000, false},
	}
	for _, tc := range cases {
		if got := IsValidAmount(tc.amount); got != tc.want {
			t.Fatalf("IsValidAmount(%d) = %v, want %v", tc.amount, got, tc.want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail(nil), "nil email is valid")
	assert.True(t, IsValidEmail(strp("a@b.com")))
	assert.True(t, IsValidEmail(strp("first.last@sub.example.org")))
	assert.False(t, IsValidEmail(strp("not-an-email")))
	assert.False(t, IsValidEmail(strp("missing@tld")))
	assert.False(t, IsValidEmail(strp("a@b.toolongtld")))
}

func TestOptionalFieldLengths(t *testing.T) {
	assert.True(t, IsValidFirstName(nil))
	assert.True(t, IsValidFirstName(strp("Ada")))
	assert.False(t, IsValidFirstName(strp("")))
	assert.False(t, IsValidFirstName(strp(strings.Repeat("x", 81))))
	assert.True(t, IsValidLastName(strp(strings.Repeat("x", 80))))
	assert.False(t, IsValidLastName(strp(strings.Repeat("x", 81))))

	assert.True(t, IsValidPhone(nil))
	assert.True(t, IsValidPhone(strp("+15551234567")))
	assert.False(t, IsValidPhone(strp("+1555123456789")))

	assert.True(t, IsValidDynamicDescriptor(nil))
	assert.True(t, IsValidDynamicDescriptor(strp("STORE*ORDER1")))
	assert.False(t, IsValidDynamicDescriptor(strp(strings.Repeat("D", 21))))
}
