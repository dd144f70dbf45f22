package dispatch

import (
	"context"
	"document-service/common"
	"document-service/lifecycle"
	"fmt"
	"sort"
)

// HandlerFunc 任务处理函数。返回结果载荷与实际成本，错误分类由lifecycle处理。
type HandlerFunc func(ctx context.Context, ec *lifecycle.ExecutionContext, msg *Message) (map[string]interface{}, *float64, error)

// Registry 任务类型到处理函数的显式映射表。
// 注册是一个明确的数据结构操作，全部注册集中在进程启动处完成。
type Registry struct {
	handlers map[common.TaskType]HandlerFunc
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[common.TaskType]HandlerFunc)}
}

// Register 登记处理函数，重复登记同一类型视为程序错误
func (r *Registry) Register(taskType common.TaskType, handler HandlerFunc) error {
	if !taskType.IsValid() {
		return fmt.Errorf("invalid task type: %s", taskType)
	}
	if _, exists := r.handlers[taskType]; exists {
		return fmt.Errorf("handler already registered for task type: %s", taskType)
	}
	r.handlers[taskType] = handler
	return nil
}

// Resolve 查找处理函数，未注册返回nil
func (r *Registry) Resolve(taskType common.TaskType) HandlerFunc {
	return r.handlers[taskType]
}

// RegisteredTypes 返回已注册的任务类型（排序后，便于日志与测试）
func (r *Registry) RegisteredTypes() []common.TaskType {
	types := make([]common.TaskType, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
