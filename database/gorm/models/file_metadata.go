package models

import (
	"document-service/common"
	"time"
)

// FileMetadata 文件元数据模型。storage_policy为permanent时expires_at必须为空，
// temporary时expires_at由策略引擎设置。元数据行只在对象存储删除成功
// （或对象已不存在）之后删除。
type FileMetadata struct {
	ID               string               `gorm:"primarykey;size:36"`
	TaskID           string               `gorm:"size:36;index;not null;comment:所属任务ID"`
	Task             *Task                `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	OriginalFilename string               `gorm:"size:512;not null;comment:原始文件名"`
	FileType         string               `gorm:"size:64;comment:文件类型"`
	FileSize         int64                `gorm:"not null;comment:文件大小(字节)"`
	StoragePath      string               `gorm:"size:1024;uniqueIndex;not null;comment:对象存储key"`
	StoragePolicy    common.StoragePolicy `gorm:"size:32;not null;default:'temporary';comment:存储策略"`
	ExpiresAt        *time.Time           `gorm:"index;comment:过期时间，permanent策略下为空"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (FileMetadata) TableName() string {
	return "t_document_service_files"
}
