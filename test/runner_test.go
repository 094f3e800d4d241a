package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiff(t *testing.T) {
	assert.Equal(t, "  a\n- b\n+ c\n", Diff("a\nb\n", "a\nc\n"))
	assert.Equal(t, "  same\n", Diff("same\n", "same\n"))
}
