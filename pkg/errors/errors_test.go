package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halfdome/devkit/pkg/errors"
)

func TestNewAndError(t *testing.T) {
	err := errors.New(errors.ErrNotPrivileged, "needs root")
	assert.Equal(t, "[NOT_PRIVILEGED] needs root", err.Error())
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("exit status 100")
	err := errors.Wrap(cause, errors.ErrExternalTool, "apt-get failed")

	assert.Contains(t, err.Error(), "EXTERNAL_TOOL")
	assert.Contains(t, err.Error(), "exit status 100")
	assert.Equal(t, cause, stderrors.Unwrap(err))
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.ErrExternalTool, "x"))
	assert.Nil(t, errors.Wrapf(nil, errors.ErrExternalTool, "x %d", 1))
}

func TestIs_MatchesByCode(t *testing.T) {
	err := errors.Newf(errors.ErrVerificationFailed, "digest mismatch for %s", "neovim")
	target := errors.New(errors.ErrVerificationFailed, "")

	assert.True(t, stderrors.Is(err, target))
	assert.False(t, stderrors.Is(err, errors.New(errors.ErrExternalTool, "")))
}

func TestIsCode_ThroughWrapping(t *testing.T) {
	inner := errors.New(errors.ErrVerificationFailed, "bad digest")
	outer := fmt.Errorf("installing neovim: %w", inner)

	assert.True(t, errors.IsCode(outer, errors.ErrVerificationFailed))
	assert.False(t, errors.IsCode(outer, errors.ErrExternalTool))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, errors.ErrInvalidSelection,
		errors.CodeOf(errors.New(errors.ErrInvalidSelection, "bogus")))
	assert.Equal(t, errors.ErrUnknown, errors.CodeOf(fmt.Errorf("plain")))
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrDownload, "fetch failed").
		WithDetail("url", "https://example.com/a.tar.gz")
	require.NotNil(t, err.Details)
	assert.Equal(t, "https://example.com/a.tar.gz", err.Details["url"])
}
