package provider

import (
	"github.com/reusedev/design-hub/config"
	"github.com/reusedev/design-hub/internal/modules/kind"
	"github.com/reusedev/design-hub/internal/modules/provider/ideogram"
	"github.com/reusedev/design-hub/internal/modules/provider/infiniai"
	"github.com/reusedev/design-hub/internal/modules/provider/replicate"
	"github.com/reusedev/design-hub/internal/modules/provider/thenewblack"
)

// DefaultBindings 生产绑定表。新增管线在这里补一行，Verify 会在启动时
// 检查注册的 Kind 是否都有归属。
func DefaultBindings(cfg *config.Config) Bindings {
	ideo := ideogram.New(cfg.Ideogram)
	infini := infiniai.New(cfg.InfiniAI)
	repl := replicate.New(cfg.Replicate)
	tnb := thenewblack.New(cfg.TheNewBlack)

	return Bindings{
		kind.TextToImage:         ideo,
		kind.CopyStyle:           ideo,
		kind.SketchToDesign:      ideo,
		kind.MixImage:            ideo,
		kind.FabricToDesign:      ideo,
		kind.PartialModification: ideo,
		kind.ChangeClothes:       tnb,
		kind.VirtualTryOn:        tnb,
		kind.StyleTransfer:       infini,
		kind.FabricTransfer:      infini,
		kind.ChangeFabric:        infini,
		kind.ChangePrinting:      infini,
		kind.ChangeColor:         infini,
		kind.ChangeBackground:    infini,
		kind.Upscale:             infini,
		kind.RemoveBackground:    repl,
	}
}
