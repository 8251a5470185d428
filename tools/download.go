package tools

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
)

// GetOnlineImage 下载第三方托管的图片。供应商的临时 URL 偶发 5xx，
// 带退避重试三次
func GetOnlineImage(url string) (bytes []byte, fName string, err error) {
	err = retry.Do(
		func() error {
			bytes, fName, err = getOnlineImage(url)
			return err
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
	)
	return
}

func getOnlineImage(url string) (bytes []byte, fName string, err error) {
	client := http.Client{Timeout: 30 * time.Second}
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return
	}
	resp, err := client.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("failed to download image, status code: %d", resp.StatusCode)
		return
	}

	bytes, err = io.ReadAll(resp.Body)
	if err != nil {
		return
	}
	if resp.Header.Get("Content-Disposition") != "" {
		parts := strings.Split(resp.Header.Get("Content-Disposition"), ";")
		for _, part := range parts {
			if strings.Contains(part, "filename=") {
				fName = strings.Trim(strings.Split(part, "=")[1], "\"")
				break
			}
		}
	}
	return
}
