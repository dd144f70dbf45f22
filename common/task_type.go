package common

// TaskType 任务类型枚举
type TaskType string

const (
	TaskTypeDocumentParsing   TaskType = "document_parsing"   // 文档解析
	TaskTypeArchiveProcessing TaskType = "archive_processing" // 压缩包处理
	TaskTypeVectorization     TaskType = "vectorization"      // 向量化
	TaskTypeCleanup           TaskType = "cleanup"            // 清理
)

// String 实现Stringer接口
func (t TaskType) String() string {
	return string(t)
}

// IsValid 检查任务类型是否有效
func (t TaskType) IsValid() bool {
	switch t {
	case TaskTypeDocumentParsing, TaskTypeArchiveProcessing,
		TaskTypeVectorization, TaskTypeCleanup:
		return true
	default:
		return false
	}
}

// TaskTypesByPriority 按消费优先级从高到低返回任务类型。
// 压缩包处理优先级最高（会派生子任务），清理最低；
// 高优先级持续占用时低优先级队列饥饿是接受的取舍。
func TaskTypesByPriority() []TaskType {
	return []TaskType{
		TaskTypeArchiveProcessing,
		TaskTypeDocumentParsing,
		TaskTypeVectorization,
		TaskTypeCleanup,
	}
}
