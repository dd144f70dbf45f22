package repositories

import (
	"document-service/common"
	"document-service/database/gorm/models"
	"time"

	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create 创建任务
func (r *TaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// CreateInTx 在事务内批量创建任务，任一失败整体回滚
func (r *TaskRepository) CreateInTx(tasks []*models.Task) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, task := range tasks {
			if err := tx.Create(task).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CreateTasksWithFile 在同一事务内创建子任务与对应的文件元数据行，
// 任一失败整体回滚，不产生没有元数据的悬空任务。
func (r *TaskRepository) CreateTasksWithFile(tasks []*models.Task, file *models.FileMetadata) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, task := range tasks {
			if err := tx.Create(task).Error; err != nil {
				return err
			}
		}
		if file != nil {
			if err := tx.Create(file).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID 根据ID查找任务（带子任务）
func (r *TaskRepository) FindByID(taskID string) (*models.Task, error) {
	var task models.Task
	err := r.db.Preload("Children").Where("id = ?", taskID).First(&task).Error
	return &task, err
}

// GetStatus 只取任务当前状态
func (r *TaskRepository) GetStatus(taskID string) (common.TaskStatus, error) {
	var task models.Task
	err := r.db.Select("status").Where("id = ?", taskID).First(&task).Error
	if err != nil {
		return "", err
	}
	return task.Status, nil
}

// UpdateStatus 更新任务状态。completed/failed为终态，同时设置completed_at；
// cancelled不设置completed_at（终态但非成功/失败）。
func (r *TaskRepository) UpdateStatus(taskID string, status common.TaskStatus, errorMsg string) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}

	switch status {
	case common.TaskStatusCompleted, common.TaskStatusFailed:
		now := time.Now()
		updates["completed_at"] = &now
	}

	if errorMsg != "" {
		updates["error_message"] = errorMsg
	}

	return r.db.Model(&models.Task{}).Where("id = ?", taskID).Updates(updates).Error
}

// MarkCompleted 标记任务成功，写入结果与处理耗时
func (r *TaskRepository) MarkCompleted(taskID string, results map[string]interface{}, processingTime float64, actualCost *float64) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":          common.TaskStatusCompleted,
		"results":         results,
		"processing_time": processingTime,
		"completed_at":    &now,
		"updated_at":      now,
	}
	if actualCost != nil {
		updates["actual_cost"] = *actualCost
	}
	return r.db.Model(&models.Task{}).Where("id = ?", taskID).Updates(updates).Error
}

// MarkFailed 标记任务最终失败，写入错误详情
func (r *TaskRepository) MarkFailed(taskID string, errorMsg string, errorDetails map[string]interface{}, processingTime float64) error {
	now := time.Now()
	return r.db.Model(&models.Task{}).Where("id = ?", taskID).Updates(map[string]interface{}{
		"status":          common.TaskStatusFailed,
		"error_message":   errorMsg,
		"error_details":   errorDetails,
		"processing_time": processingTime,
		"completed_at":    &now,
		"updated_at":      now,
	}).Error
}

// MarkRetrying 标记任务等待重试并累加重试次数
func (r *TaskRepository) MarkRetrying(taskID string, errorMsg string) error {
	return r.db.Model(&models.Task{}).Where("id = ?", taskID).Updates(map[string]interface{}{
		"status":        common.TaskStatusRetrying,
		"error_message": errorMsg,
		"retry_count":   gorm.Expr("retry_count + 1"),
		"updated_at":    time.Now(),
	}).Error
}

// Cancel 取消任务。仅非终态任务可取消，返回是否实际发生了取消。
// 使用行级条件更新保证并发安全：已进入终态的任务不会被覆盖。
func (r *TaskRepository) Cancel(taskID string) (bool, error) {
	result := r.db.Model(&models.Task{}).
		Where("id = ? AND status NOT IN ?", taskID,
			[]common.TaskStatus{common.TaskStatusCompleted, common.TaskStatusFailed, common.TaskStatusCancelled}).
		Updates(map[string]interface{}{
			"status":     common.TaskStatusCancelled,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateEstimatedCost 写入预估成本
func (r *TaskRepository) UpdateEstimatedCost(taskID string, cost float64) error {
	return r.db.Model(&models.Task{}).Where("id = ?", taskID).Updates(map[string]interface{}{
		"estimated_cost": cost,
		"updated_at":     time.Now(),
	}).Error
}

// FindPendingTasksWithPagination 分页查找状态为pending的任务
func (r *TaskRepository) FindPendingTasksWithPagination(offset, limit int) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Where("status = ?", common.TaskStatusPending).
		Order("created_at ASC"). // 按创建时间升序，优先处理较早的任务
		Offset(offset).
		Limit(limit).
		Find(&tasks).Error
	return tasks, err
}

// CountByStatus 按状态统计任务数量
func (r *TaskRepository) CountByStatus(status common.TaskStatus) (int64, error) {
	var totalCount int64
	err := r.db.Model(&models.Task{}).
		Where("status = ?", status).
		Count(&totalCount).Error
	return totalCount, err
}
