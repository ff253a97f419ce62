package version

import (
	"testing"

	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckConfigCompatibility(t *testing.T) {
	tests := []struct {
		name          string
		binaryVersion string
		configVersion string
		expectCode    errors.ErrorCode
		errorContains string
	}{
		{name: "exact match", binaryVersion: "1.2.0", configVersion: "1.2.0"},
		{name: "binary patch higher", binaryVersion: "1.2.1", configVersion: "1.2.0"},
		{name: "config patch higher", binaryVersion: "1.2.0", configVersion: "1.2.5"},
		{name: "older config minor", binaryVersion: "1.3.0", configVersion: "1.2.4"},
		{
			name:          "config minor ahead",
			binaryVersion: "1.1.0",
			configVersion: "1.2.0",
			expectCode:    errors.ErrCodeVersionMismatch,
			errorContains: "minor version mismatch",
		},
		{
			name:          "major version differs",
			binaryVersion: "2.0.0",
			configVersion: "1.2.0",
			expectCode:    errors.ErrCodeVersionMismatch,
			errorContains: "major version mismatch",
		},
		{name: "binary is main", binaryVersion: "main", configVersion: "1.2.0"},
		{name: "config is main", binaryVersion: "1.2.0", configVersion: "main"},
		{name: "v prefix on both", binaryVersion: "v1.2.0", configVersion: "v1.2.0"},
		{name: "prerelease version", binaryVersion: "1.2.0-alpha", configVersion: "1.2.0"},
		{name: "build metadata", binaryVersion: "1.2.0+build123", configVersion: "1.2.0"},
		{
			name:          "invalid binary version",
			binaryVersion: "not-a-version",
			configVersion: "1.2.0",
			expectCode:    errors.ErrCodeInvalidVersion,
			errorContains: "invalid binary version",
		},
		{
			name:          "empty config version",
			binaryVersion: "1.2.0",
			configVersion: "",
			expectCode:    errors.ErrCodeInvalidVersion,
			errorContains: "invalid config version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckConfigCompatibility(tt.binaryVersion, tt.configVersion)

			if tt.expectCode != 0 {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, tt.expectCode))
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestGetVersion(t *testing.T) {
	v := GetVersion()
	assert.Equal(t, Version, v)
}
