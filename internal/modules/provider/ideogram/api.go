package ideogram

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/reusedev/design-hub/config"
	"github.com/reusedev/design-hub/internal/consts"
	"github.com/reusedev/design-hub/internal/modules/http_client"
	"github.com/reusedev/design-hub/internal/modules/kind"
	"github.com/reusedev/design-hub/internal/modules/logs"
	"github.com/reusedev/design-hub/internal/modules/model"
	"github.com/reusedev/design-hub/tools"
)

// Ideogram 3.0。generate 用于文生图类管线，edit 用于带 mask 的局部修改。
type Client struct {
	apiKey string
}

func New(cfg config.Ideogram) *Client {
	return &Client{apiKey: cfg.ApiKey}
}

var aspectRatioMap = map[string]string{
	"1:1":  "1x1",
	"2:3":  "2x3",
	"3:4":  "3x4",
	"9:16": "9x16",
}

func (c *Client) Generate(ctx context.Context, task model.GenTask, result model.GenResult) (string, error) {
	k, ok := kind.ByType(task.Type, task.VariationType)
	if !ok {
		return "", fmt.Errorf("ideogram: unknown kind (%d,%d)", task.Type, task.VariationType)
	}
	switch k {
	case kind.PartialModification:
		return c.edit(ctx, task, result)
	default:
		return c.generate(ctx, task, result)
	}
}

func (c *Client) generate(ctx context.Context, task model.GenTask, result model.GenResult) (string, error) {
	prompt := result.Prompt
	if prompt == "" {
		prompt = task.Prompt
	}
	if task.WithHumanModel == 1 {
		gender := "female"
		if task.Gender == 1 {
			gender = "male"
		}
		prompt = fmt.Sprintf("%s, %s model wearing the clothing", prompt, gender)
	}

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	w.WriteField("prompt", prompt)
	w.WriteField("rendering_speed", "DEFAULT")
	w.WriteField("style_type", "DESIGN")
	w.WriteField("num_images", "1")
	if ratio, ok := aspectRatioMap[task.Format]; ok {
		w.WriteField("aspect_ratio", ratio)
	}
	// 参考图（洗图/面料/混搭）作为 style 引用一并上传
	for _, refURL := range []string{task.ReferPicURL, task.FabricPicURL, task.OriginalPicURL} {
		if refURL == "" {
			continue
		}
		b, fName, err := tools.GetOnlineImage(refURL)
		if err != nil {
			return "", fmt.Errorf("download reference image: %w", err)
		}
		if fName == "" {
			fName = "reference." + tools.DetectImageType(b).String()
		}
		part, err := w.CreateFormFile("style_reference_images", fName)
		if err != nil {
			return "", err
		}
		part.Write(b)
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return c.do(ctx, "/generate", body, w.FormDataContentType(), result.Id)
}

func (c *Client) edit(ctx context.Context, task model.GenTask, result model.GenResult) (string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	w.WriteField("prompt", task.Prompt)
	w.WriteField("rendering_speed", "TURBO")
	w.WriteField("num_images", "1")
	w.WriteField("magic_prompt", "ON")
	for field, u := range map[string]string{"image": task.OriginalPicURL, "mask": task.MaskPicURL} {
		if u == "" {
			return "", fmt.Errorf("ideogram edit: missing %s url", field)
		}
		b, _, err := tools.GetOnlineImage(u)
		if err != nil {
			return "", fmt.Errorf("download %s: %w", field, err)
		}
		part, err := w.CreateFormFile(field, field+"."+tools.DetectImageType(b).String())
		if err != nil {
			return "", err
		}
		part.Write(b)
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return c.do(ctx, "/edit", body, w.FormDataContentType(), result.Id)
}

func (c *Client) do(ctx context.Context, path string, body *bytes.Buffer, contentType string, resultId int64) (string, error) {
	client := http_client.NewWithTimeout(6 * time.Minute)
	req, err := client.NewRequest(
		http.MethodPost,
		tools.FullURL(consts.Ideogram.BaseURL(), path),
		http_client.WithHeader("Api-Key", c.apiKey),
		http_client.WithHeader("Content-Type", contentType),
		http_client.WithBody(body),
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
		Str("supplier", consts.Ideogram.String()).
		Str("path", path).
		Int("status_code", resp.StatusCode).
		Dur("req_consume_ms", respAt.Sub(reqAt)).
		Msg("image request")
	return parseImageURL(resp)
}
