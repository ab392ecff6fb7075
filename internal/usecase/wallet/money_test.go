package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{5, "5"},
		{999, "999"},
		{1000, "1,000"},
		{5000, "5,000"},
		{13005000, "13,005,000"},
		{130000000, "130,000,000"},
		{-2500, "-2,500"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAmount(tt.in))
	}
}
