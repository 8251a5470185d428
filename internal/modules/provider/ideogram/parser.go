package ideogram

import (
	"fmt"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

// 响应形如 {"data":[{"url":"https://..."}]}
func parseImageURL(resp *http.Response) (string, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ideogram: status %d, body %s", resp.StatusCode, string(body))
	}
	url := jsoniter.Get(body, "data", 0, "url").ToString()
	if url == "" {
		return "", fmt.Errorf("ideogram: no image url in response %s", string(body))
	}
	return url, nil
}
