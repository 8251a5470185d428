package replicate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/reusedev/design-hub/config"
	"github.com/reusedev/design-hub/internal/consts"
	"github.com/reusedev/design-hub/internal/modules/http_client"
	"github.com/reusedev/design-hub/internal/modules/logs"
	"github.com/reusedev/design-hub/internal/modules/model"
	"github.com/reusedev/design-hub/tools"
)

const removeBackgroundVersion = "fb8af171cfa1616ddcf1242c093f9c46bcada5ad4cf6f2fbe8b81b330ec5c003"

// Replicate predictions 接口：提交后轮询直到 succeeded / failed
type Client struct {
	token string
}

func New(cfg config.Replicate) *Client {
	return &Client{token: cfg.Token}
}

func (c *Client) Generate(ctx context.Context, task model.GenTask, result model.GenResult) (string, error) {
	predictionId, err := c.submit(ctx, task, result.Id)
	if err != nil {
		return "", err
	}
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(3 * time.Second):
		}
		picURL, done, err := c.poll(ctx, predictionId)
		if err != nil {
			return "", err
		}
		if done {
			return picURL, nil
		}
	}
}

func (c *Client) submit(ctx context.Context, task model.GenTask, resultId int64) (string, error) {
	payload := map[string]interface{}{
		"version": removeBackgroundVersion,
		"input": map[string]interface{}{
			"image": task.OriginalPicURL,
		},
	}
	client := http_client.New()
	req, err := client.NewRequest(
		http.MethodPost,
		tools.FullURL(consts.Replicate.BaseURL(), "/predictions"),
		http_client.WithHeader("Authorization", "Bearer "+c.token),
		http_client.WithHeader("Content-Type", "application/json"),
		http_client.WithBody(payload),
		http_client.WithContext(ctx),
	)
	if err != nil {
		return "", err
	}
	reqAt := time.Now()
	resp, err := client.Do(req)
	respAt := time.Now()
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	logs.Logger.Info().
		Int64("result_id", resultId).
		Str("supplier", consts.Replicate.String()).
		Str("path", "/predictions").
		Int("status_code", resp.StatusCode).
		Dur("req_consume_ms", respAt.Sub(reqAt)).
		Msg("image request")
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("replicate: submit status %d, body %s", resp.StatusCode, string(body))
	}
	id := jsoniter.Get(body, "id").ToString()
	if id == "" {
		return "", fmt.Errorf("replicate: no prediction id in response %s", string(body))
	}
	return id, nil
}

func (c *Client) poll(ctx context.Context, predictionId string) (string, bool, error) {
	client := http_client.New()
	req, err := client.NewRequest(
		http.MethodGet,
		tools.FullURL(consts.Replicate.BaseURL(), "/predictions/"+predictionId),
		http_client.WithHeader("Authorization", "Bearer "+c.token),
		http_client.WithContext(ctx),
	)
	if err != nil {
		return "", false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, err
	}
	switch jsoniter.Get(body, "status").ToString() {
	case "succeeded":
		picURL := jsoniter.Get(body, "output").ToString()
		if picURL == "" {
			picURL = jsoniter.Get(body, "output", 0).ToString()
		}
		if picURL == "" {
			return "", false, fmt.Errorf("replicate: no output in response %s", string(body))
		}
		return picURL, true, nil
	case "failed", "canceled":
		return "", false, fmt.Errorf("replicate: prediction %s: %s", predictionId, jsoniter.Get(body, "error").ToString())
	default:
		return "", false, nil
	}
}
