package ideogram

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseImageURL(t *testing.T) {
	t.Run("标准响应", func(t *testing.T) {
		resp := &http.Response{
			StatusCode: 200,
			Body:       io.NopCloser(strings.NewReader(`{"data":[{"url":"https://ideogram.ai/api/images/direct/abc.png"}]}`)),
		}
		url, err := parseImageURL(resp)
		require.NoError(t, err)
		require.Equal(t, "https://ideogram.ai/api/images/direct/abc.png", url)
	})

	t.Run("非200状态码", func(t *testing.T) {
		resp := &http.Response{
			StatusCode: 422,
			Body:       io.NopCloser(strings.NewReader(`{"error":"prompt rejected"}`)),
		}
		_, err := parseImageURL(resp)
		require.Error(t, err)
		require.Contains(t, err.Error(), "422")
	})

	t.Run("响应无URL", func(t *testing.T) {
		resp := &http.Response{
			StatusCode: 200,
			Body:       io.NopCloser(strings.NewReader(`{"data":[]}`)),
		}
		_, err := parseImageURL(resp)
		require.Error(t, err)
	})
}
