package thenewblack

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/reusedev/design-hub/config"
	"github.com/reusedev/design-hub/internal/consts"
	"github.com/reusedev/design-hub/internal/modules/http_client"
	"github.com/reusedev/design-hub/internal/modules/kind"
	"github.com/reusedev/design-hub/internal/modules/logs"
	"github.com/reusedev/design-hub/internal/modules/model"
	"github.com/reusedev/design-hub/tools"
)

// TheNewBlack：form 表单接口，响应体即生成图片的 URL 文本
type Client struct {
	email    string
	password string
}

func New(cfg config.TheNewBlack) *Client {
	return &Client{email: cfg.Email, password: cfg.Password}
}

func (c *Client) Generate(ctx context.Context, task model.GenTask, result model.GenResult) (string, error) {
	k, ok := kind.ByType(task.Type, task.VariationType)
	if !ok {
		return "", fmt.Errorf("thenewblack: unknown kind (%d,%d)", task.Type, task.VariationType)
	}
	switch k {
	case kind.ChangeClothes:
		return c.changeClothes(ctx, task, result)
	case kind.VirtualTryOn:
		return c.virtualTryOn(ctx, task, result)
	default:
		return "", fmt.Errorf("thenewblack: unsupported kind %s", k.Name())
	}
}

func (c *Client) changeClothes(ctx context.Context, task model.GenTask, result model.GenResult) (string, error) {
	form := c.baseForm()
	form.Set("image", task.OriginalPicURL)
	form.Set("remove", "clothing")
	form.Set("replace", task.Prompt)
	return c.do(ctx, "/edit-clothing", form, result.Id)
}

func (c *Client) virtualTryOn(ctx context.Context, task model.GenTask, result model.GenResult) (string, error) {
	form := c.baseForm()
	form.Set("model_photo", task.OriginalPicURL)
	form.Set("clothing_photo", task.ClothingPicURL)
	if task.Country != "" {
		form.Set("country", task.Country)
	}
	if task.Age > 0 {
		form.Set("age", strconv.Itoa(task.Age))
	}
	return c.do(ctx, "/vto", form, result.Id)
}

func (c *Client) baseForm() url.Values {
	form := url.Values{}
	form.Set("email", c.email)
	form.Set("password", c.password)
	return form
}

func (c *Client) do(ctx context.Context, path string, form url.Values, resultId int64) (string, error) {
	client := http_client.NewWithTimeout(6 * time.Minute)
	req, err := client.NewRequest(
		http.MethodPost,
		tools.FullURL(consts.TheNewBlack.BaseURL(), path),
		http_client.WithHeader("Content-Type", "application/x-www-form-urlencoded"),
		http_client.WithBody(strings.NewReader(form.Encode())),
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
		Str("supplier", consts.TheNewBlack.String()).
		Str("path", path).
		Int("status_code", resp.StatusCode).
		Dur("req_consume_ms", respAt.Sub(reqAt)).
		Msg("image request")
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("thenewblack: status %d, body %s", resp.StatusCode, string(body))
	}
	picURL := strings.TrimSpace(string(body))
	if !strings.HasPrefix(picURL, "http") {
		return "", fmt.Errorf("thenewblack: unexpected response %q", picURL)
	}
	return picURL, nil
}
