// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

package textutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestASCIIFold(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Lake Geneva", "Lake Geneva"},
		{"  Zürich  ", "Zurich"},
		{"Ñandú", "Nandu"},
		{"Bogotá D.C.", "Bogota D.C."},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, ASCIIFold(tc.input))
		})
	}
}

func TestLowerASCIIFolding(t *testing.T) {
	assert.Equal(t, "creme brulee", LowerASCIIFolding(" Crème Brûlée "))
}

func TestIsMissing(t *testing.T) {
	for _, s := range MissingVariants() {
		assert.True(t, IsMissing(s), s)
	}

	assert.True(t, IsMissing(""))
	assert.True(t, IsMissing("not availalble"))
	assert.False(t, IsMissing("Na"))
	assert.False(t, IsMissing("Switzerland: Lake Geneva"))
	assert.Len(t, MissingVariants(), 33)
}

func TestFormatInt(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{-1234567, "-1,234,567"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatInt(tt.n))
		})
	}
}
