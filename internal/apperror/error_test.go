package apperror

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultMessage(t *testing.T) {
	err := New(CodeNodeRPCError, WithContext("getTipInfo"))

	assert.Equal(t, "Base node RPC call failed", err.Message)
	assert.Equal(t, "NODE_RPC_ERROR: Base node RPC call failed (getTipInfo)", err.Error())
	assert.Equal(t, "UNLISTED", New(Code("UNLISTED")).Message)
}

func TestAppError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("poll: %w", New(CodeMinerAPIError, WithCause(cause)))

	assert.True(t, errors.Is(err, New(CodeMinerAPIError)))
	assert.False(t, errors.Is(err, New(CodeNodeRPCError)))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, CodeMinerAPIError, GetCode(err))
	assert.Equal(t, CodeUnknownError, GetCode(cause))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeInternalError, ""))

	wrapped := Wrap(errors.New("boom"), CodeHardwareProbeFailed, "/sys")
	assert.Equal(t, CodeHardwareProbeFailed, wrapped.Code)
	assert.Equal(t, "/sys", wrapped.Context)

	existing := New(CodeProcessSpawnFailed)
	again := Wrap(existing, CodeInternalError, "xmrig")
	require.Same(t, existing, again)
	assert.Equal(t, CodeProcessSpawnFailed, again.Code)
	assert.Equal(t, "xmrig", again.Context)
}

func TestAppError_LogValue(t *testing.T) {
	var sb strings.Builder
	log := slog.New(slog.NewTextHandler(&sb, nil))

	log.Info("failed", "error", New(CodeBlockScanError, WithContext("height 4950")))

	assert.Contains(t, sb.String(), "error.code=BLOCK_SCAN_ERROR")
	assert.Contains(t, sb.String(), `error.context="height 4950"`)
}

func TestAppError_Stack(t *testing.T) {
	assert.Contains(t, New(CodeInternalError).Stack(), "TestAppError_Stack")
}
