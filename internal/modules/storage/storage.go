package storage

import "context"

// Relocator 把供应商托管的临时图片转存到可控存储，返回稳定 URL。
// 转存失败由调用方降级使用临时 URL，属于软保证。
type Relocator interface {
	Relocate(ctx context.Context, transientURL string, hint string) (string, error)
}

// Noop 转存关闭时直接回传供应商 URL
type Noop struct{}

func (Noop) Relocate(_ context.Context, transientURL string, _ string) (string, error) {
	return transientURL, nil
}
