package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litdb/litdb/internal/core/ports/driven"
)

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, err := execute(t, "version")

	assert.NoError(t, err)
	assert.Contains(t, out, "litdb version test-version-1.0.0 (go")

	_, err = execute(t, "version", "extra")
	assert.Error(t, err)
}

func TestVersionCmd_DoesNotOpenDatabase(t *testing.T) {
	called := false
	opener = func(string, driven.ConfirmPolicy) (*Services, error) {
		called = true
		return &Services{}, nil
	}
	defer func() { opener = nil }()

	_, err := execute(t, "version")

	require.NoError(t, err)
	assert.False(t, called)
}
