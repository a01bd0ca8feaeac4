package errors

import (
	"bytes"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDocError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DocError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(CategoryConfig, SeverityFatal, "configuration invalid"),
			expected: "config (fatal): configuration invalid",
		},
		{
			name:     "error with cause",
			err:      Wrap(fmt.Errorf("HTTP 404"), CategoryNetwork, SeverityWarning, "fetch failed"),
			expected: "network (warning): fetch failed: HTTP 404",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, test.err.Error())
		})
	}
}

func TestDocError_WithContext(t *testing.T) {
	err := FetchFailed("https://docs.example.com/a.html", stdErrors.New("boom"))
	require.Equal(t, "https://docs.example.com/a.html", err.Context["url"])
	require.False(t, err.Retryable)
}

func TestClassificationThroughWrapping(t *testing.T) {
	inner := FetchTransient("https://x", stdErrors.New("reset"))
	wrapped := fmt.Errorf("load page: %w", inner)

	require.True(t, IsRetryable(wrapped))
	require.True(t, IsCategory(wrapped, CategoryNetwork))
	require.Equal(t, CategoryNetwork, GetCategory(wrapped))
	require.Equal(t, CategoryInternal, GetCategory(stdErrors.New("plain")))
}

func TestCLIErrorAdapter_ExitCodes(t *testing.T) {
	a := NewCLIErrorAdapter(false, nil)
	require.Equal(t, 0, a.ExitCodeFor(nil))
	require.Equal(t, 1, a.ExitCodeFor(stdErrors.New("x")))
	require.Equal(t, 7, a.ExitCodeFor(ConfigNotFound("a.yaml")))
	require.Equal(t, 2, a.ExitCodeFor(ValidationFailed("max_concurrent", "must be positive")))
	require.Equal(t, 8, a.ExitCodeFor(FetchFailed("u", nil)))
	require.Equal(t, 11, a.ExitCodeFor(ParseFailed("u", nil)))
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var logBuf, errBuf bytes.Buffer
	a := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logBuf, nil)))
	a.stderr = &errBuf
	code := -1
	a.exit = func(c int) { code = c }

	a.HandleError(ConfigNotFound("docrefactor.yaml"))

	require.Equal(t, 7, code)
	require.Equal(t, "configuration file not found\n", errBuf.String())
	require.Contains(t, logBuf.String(), "category=config")
}
