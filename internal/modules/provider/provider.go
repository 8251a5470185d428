package provider

import (
	"context"

	"github.com/reusedev/design-hub/internal/modules/kind"
	"github.com/reusedev/design-hub/internal/modules/model"
)

// Adapter 外部生图后端的统一能力接口。调用可能长时间阻塞在网络 IO 上，
// 由调用方限定超时；result.Id 作为关联标识透传给日志。
// 返回值是供应商侧的临时图片 URL，转存由上层负责。
type Adapter interface {
	Generate(ctx context.Context, task model.GenTask, result model.GenResult) (string, error)
}

// Bindings Kind -> Adapter 绑定表，启动时解析一次
type Bindings map[kind.Kind]Adapter

func (b Bindings) For(k kind.Kind) (Adapter, bool) {
	a, ok := b[k]
	return a, ok
}

// Verify 每个已注册的 Kind 都必须有绑定，缺失属于启动期配置错误
func (b Bindings) Verify() error {
	for _, k := range kind.All() {
		if _, ok := b[k]; !ok {
			return &MissingBindingError{Kind: k}
		}
	}
	return nil
}

type MissingBindingError struct {
	Kind kind.Kind
}

func (e *MissingBindingError) Error() string {
	return "no provider bound for kind " + e.Kind.Name()
}
