/*
*

	@author: shiliang
	@date: 2025/3/31
	@note: HTTP路由注册。任务的创建/查询/取消，清理的触发/预览/核对，
	      文件存储策略的变更与TTL延长。

*
*/
package routes

import (
	"document-service/service"

	"github.com/gin-gonic/gin"
)

// Router 业务路由的依赖集合
type Router struct {
	taskService    *service.TaskService
	policyService  *service.StoragePolicyService
	cleanupService *service.StorageCleanupService
	fileService    *service.FileService
	searchService  *service.SearchService
}

func NewRouter(taskService *service.TaskService, policyService *service.StoragePolicyService, cleanupService *service.StorageCleanupService, fileService *service.FileService, searchService *service.SearchService) *Router {
	return &Router{
		taskService:    taskService,
		policyService:  policyService,
		cleanupService: cleanupService,
		fileService:    fileService,
		searchService:  searchService,
	}
}

// RegisterRoutes 注册所有HTTP路由
func (r *Router) RegisterRoutes(engine *gin.Engine) {
	v1 := engine.Group("/api/v1")
	{
		v1.POST("/tasks", r.CreateTasks)
		v1.GET("/tasks/stats", r.TaskStats)
		v1.GET("/tasks/pending", r.ListPendingTasks)
		v1.GET("/tasks/:id", r.GetTask)
		v1.POST("/tasks/:id/cancel", r.CancelTask)

		v1.POST("/cleanup", r.TriggerCleanup)
		v1.GET("/cleanup/candidates", r.CleanupCandidates)
		v1.GET("/cleanup/consistency", r.VerifyConsistency)

		v1.POST("/search", r.Search)

		v1.GET("/files/:id", r.GetFile)
		v1.GET("/files/:id/download", r.DownloadFile)
		v1.PUT("/files/:id/policy", r.UpdateFilePolicy)
		v1.POST("/files/:id/extend", r.ExtendFileTTL)
	}
}
