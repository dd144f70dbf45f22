/*
*

	@author: shiliang
	@date: 2025/3/29
	@note: 任务服务。负责任务的创建、查询、取消与入队。
	      批量创建前先做入参校验，空文件列表在写库前拒绝。

*
*/
package service

import (
	"context"
	"document-service/common"
	"document-service/database/gorm/models"
	"document-service/database/gorm/repositories"
	"document-service/dispatch"
	"document-service/log"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

// TaskStatusResponse 任务状态查询的响应载荷
type TaskStatusResponse struct {
	ID               string                 `json:"id"`
	UserID           string                 `json:"user_id"`
	ParentTaskID     *string                `json:"parent_task_id,omitempty"`
	Status           common.TaskStatus      `json:"status"`
	TaskType         common.TaskType        `json:"task_type"`
	OriginalFilename string                 `json:"original_filename,omitempty"`
	EstimatedCost    *float64               `json:"estimated_cost,omitempty"`
	ActualCost       *float64               `json:"actual_cost,omitempty"`
	Results          map[string]interface{} `json:"results,omitempty"`
	ErrorMessage     string                 `json:"error_message,omitempty"`
	ErrorDetails     map[string]interface{} `json:"error_details,omitempty"`
	ProcessingTime   *float64               `json:"processing_time,omitempty"`
	RetryCount       int                    `json:"retry_count"`
	CreatedAt        time.Time              `json:"created_at"`
	CompletedAt      *time.Time             `json:"completed_at,omitempty"`
	Children         []TaskStatusResponse   `json:"children,omitempty"`
}

// TaskService 任务服务
type TaskService struct {
	tasks      *repositories.TaskRepository
	dispatcher dispatch.Dispatcher
}

func NewTaskService(tasks *repositories.TaskRepository, dispatcher dispatch.Dispatcher) *TaskService {
	return &TaskService{tasks: tasks, dispatcher: dispatcher}
}

// CreateTasks 批量创建任务。文件列表为空直接拒绝，不产生任何库记录；
// 批量写库在事务内完成，之后逐个入队，入队失败的任务标记为failed。
func (s *TaskService) CreateTasks(ctx context.Context, userID string, fileURLs []string, taskType common.TaskType, options map[string]interface{}) ([]*models.Task, error) {
	if len(fileURLs) == 0 {
		return nil, common.NewCodedErrorMsg(common.ErrCodeFileListEmpty,
			common.ErrCodeMessage[common.ErrCodeFileListEmpty])
	}
	if !taskType.IsValid() {
		return nil, common.NewCodedErrorMsg(common.ErrCodeTaskTypeNotSupported,
			fmt.Sprintf("task type not supported: %s", taskType))
	}

	tasks := make([]*models.Task, 0, len(fileURLs))
	for _, fileURL := range fileURLs {
		tasks = append(tasks, &models.Task{
			ID:         uuid.New().String(),
			UserID:     userID,
			Status:     common.TaskStatusPending,
			TaskType:   taskType,
			FileURL:    fileURL,
			Options:    options,
			MaxRetries: common.MAX_RETRY_COUNT,
		})
	}

	if err := s.tasks.CreateInTx(tasks); err != nil {
		return nil, fmt.Errorf("failed to create tasks: %v", err)
	}

	correlationID := uuid.New().String()
	for _, task := range tasks {
		msg := &dispatch.Message{
			TaskID:        task.ID,
			TaskType:      taskType,
			CorrelationID: correlationID,
			Payload:       options,
		}
		if err := s.dispatcher.Enqueue(ctx, msg); err != nil {
			log.Logger.Errorf("Failed to enqueue task %s: %v", task.ID, err)
			if markErr := s.tasks.MarkFailed(task.ID, "failed to dispatch task",
				map[string]interface{}{"is_final_failure": true, "dispatch_error": err.Error()}, 0); markErr != nil {
				log.Logger.Errorf("Failed to persist dispatch failure for task %s: %v", task.ID, markErr)
			}
		}
	}

	log.Logger.Infof("Created %d task(s) of type %s for user %s, correlation_id=%s",
		len(tasks), taskType, userID, correlationID)
	return tasks, nil
}

// CreateSystemTask 创建系统调度任务（无关联文件），入队由调用方负责
func (s *TaskService) CreateSystemTask(taskType common.TaskType) (*models.Task, error) {
	task := &models.Task{
		ID:         uuid.New().String(),
		UserID:     "system",
		Status:     common.TaskStatusPending,
		TaskType:   taskType,
		MaxRetries: common.MAX_RETRY_COUNT,
	}
	if err := s.tasks.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create system task: %v", err)
	}
	return task, nil
}

// GetTask 查询任务状态（带子任务）
func (s *TaskService) GetTask(taskID string) (*TaskStatusResponse, error) {
	task, err := s.tasks.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewCodedErrorMsg(common.ErrCodeTaskNotFound,
				fmt.Sprintf("task not found: %s", taskID))
		}
		return nil, fmt.Errorf("failed to load task %s: %v", taskID, err)
	}

	resp := &TaskStatusResponse{}
	if err := copier.Copy(resp, task); err != nil {
		return nil, fmt.Errorf("failed to build task response: %v", err)
	}
	return resp, nil
}

// TaskStats 按状态统计任务数量
func (s *TaskService) TaskStats() (map[string]int64, error) {
	statuses := common.GetTaskStatusList()
	stats := make(map[string]int64, len(statuses))
	for _, status := range statuses {
		count, err := s.tasks.CountByStatus(status)
		if err != nil {
			return nil, fmt.Errorf("failed to count tasks in status %s: %v", status, err)
		}
		stats[string(status)] = count
	}
	return stats, nil
}

// ListPending 分页查询待处理任务（积压巡检用）
func (s *TaskService) ListPending(offset, limit int) ([]TaskStatusResponse, error) {
	tasks, err := s.tasks.FindPendingTasksWithPagination(offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending tasks: %v", err)
	}
	resp := make([]TaskStatusResponse, 0, len(tasks))
	for i := range tasks {
		item := TaskStatusResponse{}
		if err := copier.Copy(&item, &tasks[i]); err != nil {
			return nil, fmt.Errorf("failed to build task response: %v", err)
		}
		resp = append(resp, item)
	}
	return resp, nil
}

// CancelTask 取消任务。终态任务不可取消，条件更新在行级完成，
// 避免读取与更新之间的竞态。
func (s *TaskService) CancelTask(taskID string) error {
	cancelled, err := s.tasks.Cancel(taskID)
	if err != nil {
		return fmt.Errorf("failed to cancel task %s: %v", taskID, err)
	}
	if !cancelled {
		// 区分不存在与已终态
		if _, err := s.tasks.GetStatus(taskID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.NewCodedErrorMsg(common.ErrCodeTaskNotFound,
					fmt.Sprintf("task not found: %s", taskID))
			}
			return fmt.Errorf("failed to load task %s: %v", taskID, err)
		}
		return common.NewCodedErrorMsg(common.ErrCodeTaskAlreadyTerminal,
			fmt.Sprintf("task %s already in terminal state", taskID))
	}
	log.Logger.Infof("Task %s cancelled", taskID)
	return nil
}
