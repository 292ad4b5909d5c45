package output_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Asad272002/TaskWiser-V2/internal/output"
	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

func TestFormatError_Nil(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, output.FormatError(&buf, nil, output.FormatText))
	assert.Empty(t, buf.String())
}

func TestFormatError_Text(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := wiserr.WithSuggestion(
		wiserr.WithDetails(wiserr.ErrWrongNetwork, map[string]string{"expected": "0xaa36a7", "current": "0x1"}),
		"run 'taskwiser network switch'",
	)
	require.NoError(t, output.FormatError(&buf, err, output.FormatText))

	out := buf.String()
	assert.Contains(t, out, "Error: "+wiserr.ErrWrongNetwork.Message)
	assert.Contains(t, out, "  current: 0x1\n  expected: 0xaa36a7\n")
	assert.Contains(t, out, "Suggestion: run 'taskwiser network switch'")
}

func TestFormatError_JSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := wiserr.WithDetails(wiserr.ErrInvalidAddress, map[string]string{"address": "0x12"})
	require.NoError(t, output.FormatError(&buf, err, output.FormatJSON))

	var got output.ErrorOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "INVALID_ADDRESS", got.Error.Code)
	assert.Equal(t, "0x12", got.Error.Details["address"])
	assert.Equal(t, wiserr.ExitInput, got.Error.ExitCode)
}

func TestFormatError_KeepsOuterContext(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := fmt.Errorf("payout 2 stopped: %w", wiserr.ErrUserRejected)
	require.NoError(t, output.FormatError(&buf, err, output.FormatJSON))

	var got output.ErrorOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, wiserr.ErrUserRejected.Code, got.Error.Code)
	assert.Contains(t, got.Error.Message, "payout 2 stopped")
}

func TestFormatError_Generic(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, output.FormatError(&buf, errors.New("boom"), output.FormatJSON))

	var got output.ErrorOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "GENERAL_ERROR", got.Error.Code)
	assert.Equal(t, "boom", got.Error.Message)
}

func TestFormatSuccess(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, output.FormatSuccess(&buf, "2 transaction(s) confirmed", output.FormatText))
	assert.Equal(t, "2 transaction(s) confirmed\n", buf.String())

	buf.Reset()
	require.NoError(t, output.FormatSuccess(&buf, "ok", output.FormatJSON))
	assert.JSONEq(t, `{"status":"success","message":"ok"}`, buf.String())
}
