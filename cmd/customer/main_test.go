package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/quickorder/internal/cart"
)

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    selection
		wantErr bool
	}{
		{name: "id only", in: "p_tea", want: selection{productID: "p_tea", quantity: 1}},
		{name: "with quantity", in: "p_tea=3", want: selection{productID: "p_tea", quantity: 3}},
		{name: "with options", in: "p_kofta=2=Rice,Salad", want: selection{productID: "p_kofta", quantity: 2, options: []string{"Rice", "Salad"}}},
		{name: "empty quantity keeps one", in: "p_kofta==Rice", want: selection{productID: "p_kofta", quantity: 1, options: []string{"Rice"}}},
		{name: "missing id", in: "=2", wantErr: true},
		{name: "bad quantity", in: "p_tea=two", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSelection(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePolicy(t *testing.T) {
	p, err := parsePolicy("separate")
	require.NoError(t, err)
	assert.Equal(t, cart.SeparateByInstruction, p)

	p, err = parsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, cart.JoinInstructions, p)

	_, err = parsePolicy("merge")
	assert.Error(t, err)
}
