package request

type TextToImage struct {
	Prompt         string `json:"prompt" binding:"required"`
	Format         string `json:"format"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	WithHumanModel int    `json:"withHumanModel"`
	Gender         int    `json:"gender"`
	Age            int    `json:"age"`
	Country        string `json:"country"`
	ModelSize      int    `json:"modelSize"`
}

type CopyStyle struct {
	OriginalPicURL string  `json:"originalPicUrl" binding:"required"`
	Prompt         string  `json:"prompt"`
	Fidelity       float64 `json:"fidelity"`
}

type ChangeClothes struct {
	OriginalPicURL string `json:"originalPicUrl" binding:"required"`
	Prompt         string `json:"prompt" binding:"required"`
}

type FabricToDesign struct {
	FabricPicURL string `json:"fabricPicUrl" binding:"required"`
	Prompt       string `json:"prompt"`
}

type VirtualTryOn struct {
	OriginalPicURL string `json:"originalPicUrl" binding:"required"`
	ClothingPicURL string `json:"clothingPicUrl" binding:"required"`
	Country        string `json:"country"`
	Age            int    `json:"age"`
}

type StyleTransfer struct {
	OriginalPicURL string  `json:"originalPicUrl" binding:"required"`
	ReferPicURL    string  `json:"referPicUrl" binding:"required"`
	Prompt         string  `json:"prompt"`
	Strength       float64 `json:"strength"`
}

type ChangeColor struct {
	OriginalPicURL string `json:"originalPicUrl" binding:"required"`
	HexColor       string `json:"hexColor" binding:"required"`
}

type ChangeBackground struct {
	OriginalPicURL string `json:"originalPicUrl" binding:"required"`
	ReferPicURL    string `json:"referPicUrl"`
	Prompt         string `json:"prompt" binding:"required"`
}

type RemoveBackground struct {
	OriginalPicURL string `json:"originalPicUrl" binding:"required"`
}

type PartialModification struct {
	OriginalPicURL string `json:"originalPicUrl" binding:"required"`
	MaskPicURL     string `json:"maskPicUrl" binding:"required"`
	Prompt         string `json:"prompt" binding:"required"`
}

type Upscale struct {
	OriginalPicURL string `json:"originalPicUrl" binding:"required"`
	MaskPicURL     string `json:"maskPicUrl"`
}

type StatusRefresh struct {
	Ids []int64 `json:"ids" binding:"required"`
}

type History struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"page_size,default=10"`
	Type     int `form:"type"`
}

type TaskQuery struct {
	TaskId int64 `form:"task_id" binding:"required"`
}

type Detail struct {
	GenImgId int64 `form:"gen_img_id" binding:"required"`
}
