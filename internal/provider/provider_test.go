package provider

import (
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSystem(t *testing.T) {
	system, rest := SplitSystem([]Message{
		{Role: RoleSystem, Content: "a"},
		{Role: RoleUser, Content: "hi"},
		{Role: RoleSystem, Content: "b"},
	})

	assert.Equal(t, "a\n\nb", system)
	assert.Equal(t, []Message{{Role: RoleUser, Content: "hi"}}, rest)
}

func TestFromStatus(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		status    int
		code      ErrorCode
		retryable bool
	}{
		{401, ErrorCodeAuth, false},
		{429, ErrorCodeRateLimit, true},
		{400, ErrorCodeInvalidRequest, false},
		{503, ErrorCodeUnavailable, true},
		{418, ErrorCodeNetwork, true},
	}
	for _, tt := range tests {
		err := FromStatus(tt.status, "msg", cause)
		assert.Equal(t, tt.code, err.Code, tt.status)
		assert.Equal(t, tt.retryable, err.Retryable, tt.status)
		assert.ErrorIs(t, err, cause)
	}
}

func TestNewHTTPClient(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		c, err := NewHTTPClient("")
		require.NoError(t, err)
		assert.NotNil(t, c.Transport)
	})

	t.Run("http proxy bypasses loopback", func(t *testing.T) {
		c, err := NewHTTPClient("http://proxy.internal:3128")
		require.NoError(t, err)
		tr := c.Transport.(*http.Transport)

		remote, _ := http.NewRequest(http.MethodGet, "https://api.openai.com/v1/chat/completions", nil)
		got, err := tr.Proxy(remote)
		require.NoError(t, err)
		assert.Equal(t, "proxy.internal:3128", got.Host)

		local, _ := http.NewRequest(http.MethodGet, "http://127.0.0.1:11434/api/chat", nil)
		got, err = tr.Proxy(local)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("socks5", func(t *testing.T) {
		c, err := NewHTTPClient("socks5://127.0.0.1:1080")
		require.NoError(t, err)
		tr := c.Transport.(*http.Transport)
		assert.Nil(t, tr.Proxy)
		assert.NotNil(t, tr.DialContext)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := NewHTTPClient("ftp://x")
		assert.ErrorIs(t, err, ErrUnsupportedProxy)
	})
}

func TestIsLoopback(t *testing.T) {
	assert.True(t, isLoopback("localhost"))
	assert.True(t, isLoopback("::1"))
	assert.False(t, isLoopback((&url.URL{Host: "example.com"}).Hostname()))
}
