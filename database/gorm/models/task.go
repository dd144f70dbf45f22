package models

import (
	"document-service/common"
	"time"
)

// Task 文档处理任务模型。压缩包任务通过ParentTaskID派生子任务，
// 父任务删除时子任务级联删除。
type Task struct {
	ID               string                 `gorm:"primarykey;size:36"`
	UserID           string                 `gorm:"size:64;index;not null;comment:用户ID"`
	ParentTaskID     *string                `gorm:"size:36;index;comment:父任务ID"`
	Children         []Task                 `gorm:"foreignKey:ParentTaskID;constraint:OnDelete:CASCADE"`
	Status           common.TaskStatus      `gorm:"size:32;not null;default:'pending';comment:任务状态"`
	TaskType         common.TaskType        `gorm:"size:32;not null;comment:任务类型"`
	FileURL          string                 `gorm:"size:1024;comment:文件地址"`
	OriginalFilename string                 `gorm:"size:512;comment:原始文件名"`
	Options          map[string]interface{} `gorm:"serializer:json;comment:任务配置"`
	EstimatedCost    *float64               `gorm:"comment:预估成本(USD)"`
	ActualCost       *float64               `gorm:"comment:实际成本(USD)"`
	Results          map[string]interface{} `gorm:"serializer:json;comment:处理结果"`
	ErrorMessage     string                 `gorm:"type:text;comment:错误信息"`
	ErrorDetails     map[string]interface{} `gorm:"serializer:json;comment:结构化错误详情"`
	ProcessingTime   *float64               `gorm:"comment:处理耗时(秒)"`
	RetryCount       int                    `gorm:"default:0;comment:重试次数"`
	MaxRetries       int                    `gorm:"default:3;comment:最大重试次数"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	CompletedAt      *time.Time `gorm:"comment:完成时间，仅终态成功/失败时设置"`
}

func (Task) TableName() string {
	return "t_document_service_tasks"
}
