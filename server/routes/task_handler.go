/*
*

	@author: shiliang
	@date: 2025/3/31
	@note: 任务相关的HTTP处理函数

*
*/
package routes

import (
	"document-service/common"
	"document-service/log"
	"strconv"

	"github.com/gin-gonic/gin"
)

// CreateTasksReq 批量创建任务请求
type CreateTasksReq struct {
	UserID   string                 `json:"user_id" binding:"required"`
	TaskType string                 `json:"task_type" binding:"required"`
	FileURLs []string               `json:"file_urls"`
	Options  map[string]interface{} `json:"options"`
}

// CreateTasksResp 批量创建任务响应
type CreateTasksResp struct {
	TaskIDs []string `json:"task_ids"`
}

// CreateTasks 批量创建任务
func (r *Router) CreateTasks(c *gin.Context) {
	var req CreateTasksReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Failed(c, common.ErrCodeInvalidParameter, err.Error())
		return
	}

	tasks, err := r.taskService.CreateTasks(c.Request.Context(), req.UserID, req.FileURLs,
		common.TaskType(req.TaskType), req.Options)
	if err != nil {
		log.Logger.Errorf("Failed to create tasks for user %s: %v", req.UserID, err)
		common.FailedWithError(c, err)
		return
	}

	resp := CreateTasksResp{TaskIDs: make([]string, 0, len(tasks))}
	for _, task := range tasks {
		resp.TaskIDs = append(resp.TaskIDs, task.ID)
	}
	common.Success(c, resp)
}

// GetTask 查询任务状态
func (r *Router) GetTask(c *gin.Context) {
	taskID := c.Param("id")
	task, err := r.taskService.GetTask(taskID)
	if err != nil {
		common.FailedWithError(c, err)
		return
	}
	common.Success(c, task)
}

// CancelTask 取消任务
func (r *Router) CancelTask(c *gin.Context) {
	taskID := c.Param("id")
	if err := r.taskService.CancelTask(taskID); err != nil {
		common.FailedWithError(c, err)
		return
	}
	common.Success(c, gin.H{"cancelled": true})
}

// TaskStats 按状态统计任务数量
func (r *Router) TaskStats(c *gin.Context) {
	stats, err := r.taskService.TaskStats()
	if err != nil {
		common.FailedWithError(c, err)
		return
	}
	common.Success(c, stats)
}

// ListPendingTasks 分页查看待处理任务积压
func (r *Router) ListPendingTasks(c *gin.Context) {
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		common.Failed(c, common.ErrCodeInvalidParameterValue, "offset must be a non-negative integer")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		common.Failed(c, common.ErrCodeInvalidParameterValue, "limit must be in range 1-100")
		return
	}

	tasks, err := r.taskService.ListPending(offset, limit)
	if err != nil {
		common.FailedWithError(c, err)
		return
	}
	common.Success(c, gin.H{"tasks": tasks, "offset": offset, "limit": limit})
}
