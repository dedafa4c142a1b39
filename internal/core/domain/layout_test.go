package domain_test

import (
	"path/filepath"
	"testing"

	"go.trai.ch/chore/internal/core/domain"
)

func TestLayoutPaths(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{
			name:     "DefaultChorePath",
			got:      domain.DefaultChorePath(),
			expected: ".chore",
		},
		{
			name:     "DefaultStatePath",
			got:      domain.DefaultStatePath(),
			expected: filepath.Join(".chore", "state"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s() = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}
