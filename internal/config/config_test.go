package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIKeys(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"key-1", []string{"key-1"}},
		{"key-1,key-2", []string{"key-1", "key-2"}},
		{" key-1 , ,key-2,", []string{"key-1", "key-2"}},
	}

	for _, tt := range tests {
		cfg := Config{RawAPIKeys: tt.raw}
		assert.Equal(t, tt.want, cfg.APIKeys(), "raw %q", tt.raw)
	}
}
