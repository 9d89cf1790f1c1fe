package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrency_FullName(t *testing.T) {
	tests := []struct {
		iso  string
		want string
	}{
		{"EUR", "Euro"},
		{"USD", "United States dollar"},
		{"pln", "Polish złoty"},
		{"XYZ", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.iso, func(t *testing.T) {
			assert.Equal(t, tt.want, Currency{ISOCode: tt.iso}.FullName())
		})
	}
}

func TestCurrency_FlagImageURL(t *testing.T) {
	c := Currency{ISOCode: "GBP", RateBasedOnEuro: 0.9}
	assert.Equal(t, "https://fxtop.com/ico/gbp.gif", c.FlagImageURL())
}
