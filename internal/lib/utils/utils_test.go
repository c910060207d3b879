package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPtr(t *testing.T) {
	p := Ptr(4.5)
	assert.Equal(t, 4.5, *p)
}

func TestTrimHelpers(t *testing.T) {
	s := "  Jonas@Example.com "
	TrimPtr(&s)
	assert.Equal(t, "Jonas@Example.com", s)

	LowerTrimPtr(&s)
	assert.Equal(t, "jonas@example.com", s)

	TrimPtr(nil)
	LowerTrimPtr(nil)
}
