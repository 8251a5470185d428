package infiniai

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/reusedev/design-hub/config"
	"github.com/reusedev/design-hub/internal/consts"
	"github.com/reusedev/design-hub/internal/modules/http_client"
	"github.com/reusedev/design-hub/internal/modules/kind"
	"github.com/reusedev/design-hub/internal/modules/logs"
	"github.com/reusedev/design-hub/internal/modules/model"
	"github.com/reusedev/design-hub/tools"
)

// InfiniAI comfy 工作流接口：/prompt 提交拿 prompt_id，/get_task_info 轮询取结果
type Client struct {
	apiKey string
}

func New(cfg config.InfiniAI) *Client {
	return &Client{apiKey: cfg.ApiKey}
}

func (c *Client) Generate(ctx context.Context, task model.GenTask, result model.GenResult) (string, error) {
	k, ok := kind.ByType(task.Type, task.VariationType)
	if !ok {
		return "", fmt.Errorf("infiniai: unknown kind (%d,%d)", task.Type, task.VariationType)
	}
	payload, err := workflowPayload(k, task)
	if err != nil {
		return "", err
	}
	promptId, err := c.submit(ctx, payload, result.Id)
	if err != nil {
		return "", err
	}
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(5 * time.Second):
		}
		picURL, done, err := c.poll(ctx, promptId)
		if err != nil {
			return "", err
		}
		if done {
			return picURL, nil
		}
	}
}

// 工作流与输入节点编号随管线固定，节点号来自 comfy 工作流定义
func workflowPayload(k kind.Kind, task model.GenTask) (map[string]interface{}, error) {
	seed := rand.Int63n(1 << 48)
	switch k {
	case kind.StyleTransfer:
		strength := float64(task.Fidelity) / 100
		if strength == 0 {
			strength = 0.5
		}
		return map[string]interface{}{
			"workflow_id": "wf-xq7fn2dstyletran",
			"prompt": map[string]interface{}{
				"11": inputs("image", task.OriginalPicURL),
				"12": inputs("image", task.ReferPicURL),
				"30": inputs("text", task.Prompt),
				"41": inputs("float_value", strength),
				"52": inputs("seed", seed),
			},
		}, nil
	case kind.FabricTransfer, kind.ChangeFabric:
		return map[string]interface{}{
			"workflow_id": "wf-k3m9fabrictrans",
			"prompt": map[string]interface{}{
				"7":  inputs("image", task.FabricPicURL),
				"16": inputs("image", task.OriginalPicURL),
				"18": inputs("image", task.MaskPicURL),
				"54": inputs("seed", seed),
			},
		}, nil
	case kind.ChangePrinting:
		return map[string]interface{}{
			"workflow_id": "wf-p8d2printedit",
			"prompt": map[string]interface{}{
				"7":  inputs("image", task.ReferPicURL),
				"16": inputs("image", task.OriginalPicURL),
				"87": inputs("text", task.Prompt),
				"54": inputs("seed", seed),
			},
		}, nil
	case kind.ChangeColor:
		return map[string]interface{}{
			"workflow_id": "wf-c4r1colorswap",
			"prompt": map[string]interface{}{
				"16": inputs("image", task.OriginalPicURL),
				"22": inputs("text", task.HexColor),
				"54": inputs("seed", seed),
			},
		}, nil
	case kind.ChangeBackground:
		return map[string]interface{}{
			"workflow_id": "wf-b6g8bgreplace",
			"prompt": map[string]interface{}{
				"16":  inputs("image", task.OriginalPicURL),
				"15":  inputs("image", task.ReferPicURL),
				"87":  inputs("text", task.Prompt),
				"178": inputs("int_value", 1536),
				"54":  inputs("seed", seed),
			},
		}, nil
	case kind.Upscale:
		return map[string]interface{}{
			"workflow_id": "wf-da6d45bnopdz3r2w",
			"prompt": map[string]interface{}{
				"2":  inputs("image", task.OriginalPicURL),
				"45": inputs("image", task.MaskPicURL),
				"42": inputs("float_value", 0.3),
				"43": inputs("int_value", 2048),
				"54": inputs("seed", seed),
			},
		}, nil
	default:
		return nil, fmt.Errorf("infiniai: unsupported kind %s", k.Name())
	}
}

func inputs(field string, value interface{}) map[string]interface{} {
	return map[string]interface{}{
		"inputs": map[string]interface{}{field: value},
	}
}

func (c *Client) submit(ctx context.Context, payload map[string]interface{}, resultId int64) (string, error) {
	client := http_client.New()
	req, err := client.NewRequest(
		http.MethodPost,
		tools.FullURL(consts.InfiniAI.BaseURL(), "/prompt"),
		http_client.WithHeader("Authorization", "Bearer "+c.apiKey),
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
		Str("supplier", consts.InfiniAI.String()).
		Str("path", "/prompt").
		Int("status_code", resp.StatusCode).
		Dur("req_consume_ms", respAt.Sub(reqAt)).
		Msg("image request")
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("infiniai: submit status %d, body %s", resp.StatusCode, string(body))
	}
	promptId := jsoniter.Get(body, "data", "prompt_id").ToString()
	if promptId == "" {
		return "", fmt.Errorf("infiniai: no prompt_id in response %s", string(body))
	}
	return promptId, nil
}

func (c *Client) poll(ctx context.Context, promptId string) (string, bool, error) {
	client := http_client.New()
	req, err := client.NewRequest(
		http.MethodPost,
		tools.FullURL(consts.InfiniAI.BaseURL(), "/get_task_info"),
		http_client.WithHeader("Authorization", "Bearer "+c.apiKey),
		http_client.WithHeader("Content-Type", "application/json"),
		http_client.WithBody(map[string]string{"prompt_id": promptId}),
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
	switch jsoniter.Get(body, "data", "status").ToString() {
	case "SUCCESS":
		picURL := jsoniter.Get(body, "data", "images", 0).ToString()
		if picURL == "" {
			return "", false, fmt.Errorf("infiniai: no image in response %s", string(body))
		}
		return picURL, true, nil
	case "FAILED":
		return "", false, fmt.Errorf("infiniai: task %s failed: %s", promptId, jsoniter.Get(body, "data", "message").ToString())
	default:
		return "", false, nil
	}
}
