package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMalformedCart(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "malformed cart error",
			err:  ErrCartMalformed,
			want: true,
		},
		{
			name: "wrapped malformed cart error",
			err:  fmt.Errorf("load cart: %w", ErrCartMalformed),
			want: true,
		},
		{
			name: "joined malformed cart error",
			err:  errors.Join(ErrCartMalformed, errors.New("unexpected end of JSON input")),
			want: true,
		},
		{
			name: "other error",
			err:  ErrKeyNotFound,
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsMalformedCart(tt.err)
			if got != tt.want {
				t.Errorf("IsMalformedCart() = %v, want %v", got, tt.want)
			}
		})
	}
}
