package kind

import "time"

// Kind (type, variationType) 选择生图管线
type Kind struct {
	Type          int
	VariationType int
}

var (
	TextToImage         = Kind{1, 0}
	CopyStyle           = Kind{2, 1}
	ChangeClothes       = Kind{2, 2}
	FabricToDesign      = Kind{2, 3}
	SketchToDesign      = Kind{2, 4}
	MixImage            = Kind{2, 5}
	StyleTransfer       = Kind{2, 6}
	ChangeFabric        = Kind{2, 7}
	ChangePrinting      = Kind{2, 8}
	VirtualTryOn        = Kind{3, 0}
	ChangeColor         = Kind{4, 1}
	ChangeBackground    = Kind{4, 2}
	RemoveBackground    = Kind{4, 3}
	PartialModification = Kind{4, 4}
	Upscale             = Kind{4, 5}
	FabricTransfer      = Kind{5, 0}
)

type Info struct {
	Name    string
	FanOut  int           // 创建 Task 时固定的 Result 数量
	Timeout time.Duration // 单次 provider 调用上限
}

var registry = map[Kind]Info{
	TextToImage:         {Name: "text_to_image", FanOut: 5, Timeout: 300 * time.Second},
	CopyStyle:           {Name: "copy_style", FanOut: 5, Timeout: 300 * time.Second},
	ChangeClothes:       {Name: "change_clothes", FanOut: 1, Timeout: 300 * time.Second},
	FabricToDesign:      {Name: "fabric_to_design", FanOut: 1, Timeout: 300 * time.Second},
	SketchToDesign:      {Name: "sketch_to_design", FanOut: 1, Timeout: 300 * time.Second},
	MixImage:            {Name: "mix_image", FanOut: 1, Timeout: 300 * time.Second},
	StyleTransfer:       {Name: "style_transfer", FanOut: 1, Timeout: 620 * time.Second},
	ChangeFabric:        {Name: "change_fabric", FanOut: 1, Timeout: 620 * time.Second},
	ChangePrinting:      {Name: "change_printing", FanOut: 1, Timeout: 620 * time.Second},
	VirtualTryOn:        {Name: "virtual_try_on", FanOut: 1, Timeout: 300 * time.Second},
	ChangeColor:         {Name: "change_color", FanOut: 1, Timeout: 620 * time.Second},
	ChangeBackground:    {Name: "change_background", FanOut: 1, Timeout: 620 * time.Second},
	RemoveBackground:    {Name: "remove_background", FanOut: 1, Timeout: 300 * time.Second},
	PartialModification: {Name: "partial_modification", FanOut: 1, Timeout: 300 * time.Second},
	Upscale:             {Name: "upscale", FanOut: 1, Timeout: 620 * time.Second},
	FabricTransfer:      {Name: "fabric_transfer", FanOut: 1, Timeout: 620 * time.Second},
}

func (k Kind) Valid() bool {
	_, ok := registry[k]
	return ok
}

func (k Kind) Name() string {
	return registry[k].Name
}

func (k Kind) FanOut() int {
	if info, ok := registry[k]; ok {
		return info.FanOut
	}
	return 1
}

func (k Kind) Timeout() time.Duration {
	if info, ok := registry[k]; ok {
		return info.Timeout
	}
	return 300 * time.Second
}

// ByType 通过持久化的 (type, variation_type) 还原 Kind
func ByType(typ, variationType int) (Kind, bool) {
	k := Kind{Type: typ, VariationType: variationType}
	_, ok := registry[k]
	return k, ok
}

func All() []Kind {
	ret := make([]Kind, 0, len(registry))
	for k := range registry {
		ret = append(ret, k)
	}
	return ret
}
