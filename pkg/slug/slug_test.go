// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yamdb/pkg/slug"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Science Fiction", "science-fiction"},
		{"  Drama!!  ", "drama"},
		{"Café Crème", "cafe-creme"},
		{"rock--n--roll", "rock-n-roll"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, slug.From(tt.input))
		})
	}
}
