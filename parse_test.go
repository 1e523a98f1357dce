package main_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	app "gregoryjjb/cups"
)

func TestParseLabels(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []int
		wantErr bool
	}{
		{name: "compact", in: "389125467", want: []int{3, 8, 9, 1, 2, 5, 4, 6, 7}},
		{name: "trimmed", in: "  4321\n", want: []int{4, 3, 2, 1}},
		{name: "spaces", in: "3 8 9 1 2 5 4 6 7", want: []int{3, 8, 9, 1, 2, 5, 4, 6, 7}},
		{name: "commas", in: "10,2, 3,1", want: []int{10, 2, 3, 1}},
		{name: "empty", in: "   ", wantErr: true},
		{name: "letter", in: "38a1", wantErr: true},
		{name: "bad field", in: "1 2 x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := app.ParseLabels(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, app.ErrValidation)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatLabels(t *testing.T) {
	assert.Equal(t, "389125467", app.FormatLabels([]int{3, 8, 9, 1, 2, 5, 4, 6, 7}))
	assert.Equal(t, "10 2 3 1", app.FormatLabels([]int{10, 2, 3, 1}))
}
