package model

import (
	"time"

	"github.com/jinzhu/copier"
)

// GenTask 一次生图请求，持有 1..N 条 GenResult
type GenTask struct {
	Id             int64       `json:"id" gorm:"primaryKey"`
	Uid            int64       `json:"uid" gorm:"column:uid;index:idx_uid;not null"`
	Type           int         `json:"type" gorm:"column:type;type:tinyint"`
	VariationType  int         `json:"variation_type" gorm:"column:variation_type;type:tinyint"`
	Prompt         string      `json:"prompt" gorm:"column:prompt;type:varchar(5000)"`
	OriginalPicURL string      `json:"original_pic_url" gorm:"column:original_pic_url;type:varchar(1000)"`
	ReferPicURL    string      `json:"refer_pic_url" gorm:"column:refer_pic_url;type:varchar(1000)"`
	ClothingPicURL string      `json:"clothing_pic_url" gorm:"column:clothing_pic_url;type:varchar(1000)"`
	FabricPicURL   string      `json:"fabric_pic_url" gorm:"column:fabric_pic_url;type:varchar(1000)"`
	MaskPicURL     string      `json:"mask_pic_url" gorm:"column:mask_pic_url;type:varchar(1000)"`
	HexColor       string      `json:"hex_color" gorm:"column:hex_color;type:varchar(50)"`
	Format         string      `json:"format" gorm:"column:format;type:varchar(20)"`
	Width          int         `json:"width" gorm:"column:width"`
	Height         int         `json:"height" gorm:"column:height"`
	WithHumanModel int         `json:"with_human_model" gorm:"column:with_human_model;type:tinyint"`
	Gender         int         `json:"gender" gorm:"column:gender;type:tinyint"`
	Age            int         `json:"age" gorm:"column:age"`
	Country        string      `json:"country" gorm:"column:country;type:varchar(50)"`
	ModelSize      int         `json:"model_size" gorm:"column:model_size"`
	Fidelity       int         `json:"fidelity" gorm:"column:fidelity"` // 保真度（乘以100）
	Status         TaskStatus  `json:"status" gorm:"column:status;type:tinyint"`
	CreatedAt      time.Time   `json:"created_at" gorm:"column:created_at;type:datetime;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time   `json:"updated_at" gorm:"column:updated_at;type:datetime;not null;default:CURRENT_TIMESTAMP"`
	Results        []GenResult `json:"results" gorm:"foreignKey:GenId"`
}

func (*GenTask) TableName() string {
	return "gen_task"
}

func (t *GenTask) DeepCopy() *GenTask {
	newT := GenTask{}
	copier.CopyWithOption(&newT, &t, copier.Option{
		DeepCopy: true,
	})
	return &newT
}

// AllFailed 所有 Result 均已死亡（fail_count 耗尽）。Task 自身没有终态失败，
// 只在查询响应里以计算字段暴露。
func (t *GenTask) AllFailed(budget int) bool {
	if len(t.Results) == 0 {
		return false
	}
	for _, r := range t.Results {
		if !(r.Status == ResultStatusFailed && r.FailCount >= budget) {
			return false
		}
	}
	return true
}

type TaskStatus int8

const (
	TaskStatusPending    TaskStatus = 1
	TaskStatusGenerating TaskStatus = 2
	TaskStatusSucceeded  TaskStatus = 3
)

type GenResult struct {
	Id        int64        `json:"id" gorm:"primaryKey"`
	GenId     int64        `json:"gen_id" gorm:"column:gen_id;index:idx_gen_id;not null"`
	Uid       int64        `json:"uid" gorm:"column:uid;index:idx_result_uid;not null"`
	Style     string       `json:"style" gorm:"column:style;type:varchar(50)"`
	Prompt    string       `json:"prompt" gorm:"column:prompt;type:varchar(5000)"`
	Status    ResultStatus `json:"status" gorm:"column:status;type:tinyint"`
	ResultPic string       `json:"result_pic" gorm:"column:result_pic;type:varchar(1000)"`
	FailCount int          `json:"fail_count" gorm:"column:fail_count;default:0"`
	CreatedAt time.Time    `json:"created_at" gorm:"column:created_at;type:datetime;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"column:updated_at;type:datetime;not null;default:CURRENT_TIMESTAMP"`
}

func (*GenResult) TableName() string {
	return "gen_result"
}

type ResultStatus int8

const (
	ResultStatusPending    ResultStatus = 1
	ResultStatusGenerating ResultStatus = 2
	ResultStatusSucceeded  ResultStatus = 3
	ResultStatusFailed     ResultStatus = 4
)

// Active Pending 或 Generating，占用并发额度
func (s ResultStatus) Active() bool {
	return s == ResultStatusPending || s == ResultStatusGenerating
}

func (s ResultStatus) Terminal(failCount, budget int) bool {
	if s == ResultStatusSucceeded {
		return true
	}
	return s == ResultStatusFailed && failCount >= budget
}

// Subscribe 订阅档位，只读协作方，决定限流与并发上限
type Subscribe struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	Uid       int64     `json:"uid" gorm:"column:uid;index:idx_sub_uid;not null"`
	Level     int       `json:"level" gorm:"column:level;type:tinyint;default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;type:datetime;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;type:datetime;not null;default:CURRENT_TIMESTAMP"`
}

func (*Subscribe) TableName() string {
	return "subscribe"
}
