package consts

const (
	IdeogramBaseURL    = "https://api.ideogram.ai/v1/ideogram-v3"
	ReplicateBaseURL   = "https://api.replicate.com/v1"
	InfiniAIBaseURL    = "https://cloud.infini-ai.com/api/maas/comfy_task_api"
	TheNewBlackBaseURL = "https://thenewblack.ai/api/1.1/wf"
)

type ModelSupplier string

const (
	Ideogram    ModelSupplier = "ideogram"
	Replicate   ModelSupplier = "replicate"
	InfiniAI    ModelSupplier = "infini_ai"
	TheNewBlack ModelSupplier = "thenewblack"
)

func (m ModelSupplier) String() string {
	return string(m)
}

func (m ModelSupplier) BaseURL() string {
	switch m {
	case Ideogram:
		return IdeogramBaseURL
	case Replicate:
		return ReplicateBaseURL
	case InfiniAI:
		return InfiniAIBaseURL
	case TheNewBlack:
		return TheNewBlackBaseURL
	default:
		return ""
	}
}

type StorageSupplier string

const (
	AliOss StorageSupplier = "ali_oss"
	Local  StorageSupplier = "local"
)

func (s StorageSupplier) String() string {
	return string(s)
}
