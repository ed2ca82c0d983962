package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnLetter(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "A"},
		{3, "D"},
		{25, "Z"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ColumnLetter(tt.index))
	}
}

func TestColumnLetter_OutOfRange(t *testing.T) {
	assert.Panics(t, func() { ColumnLetter(-1) })
	assert.Panics(t, func() { ColumnLetter(26) })
}
