/*
*

	@author: shiliang
	@date: 2025/3/31
	@note: 清理与存储策略相关的HTTP处理函数

*
*/
package routes

import (
	"document-service/common"
	"document-service/log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// TriggerCleanupReq 手动触发清理请求
type TriggerCleanupReq struct {
	DryRun         bool `json:"dry_run"`
	IncludeOrphans bool `json:"include_orphans"`
}

// TriggerCleanup 手动触发一次清理批次
func (r *Router) TriggerCleanup(c *gin.Context) {
	var req TriggerCleanupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Failed(c, common.ErrCodeInvalidParameter, err.Error())
		return
	}

	result, err := r.cleanupService.CleanupExpired(c.Request.Context(), req.DryRun)
	if err != nil {
		log.Logger.Errorf("Manual cleanup failed: %v", err)
		common.FailedWithError(c, err)
		return
	}

	if req.IncludeOrphans {
		orphanResult, err := r.cleanupService.CleanupOrphaned(c.Request.Context(), req.DryRun)
		if err != nil {
			log.Logger.Errorf("Orphan cleanup failed: %v", err)
		} else {
			result.FilesProcessed += orphanResult.FilesProcessed
			result.FilesDeleted += orphanResult.FilesDeleted
			result.Errors = append(result.Errors, orphanResult.Errors...)
		}
	}
	common.Success(c, result)
}

// CleanupCandidates 预览即将过期的文件
func (r *Router) CleanupCandidates(c *gin.Context) {
	days := 7
	if v := c.Query("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			common.Failed(c, common.ErrCodeInvalidParameterValue, "days must be a positive integer")
			return
		}
		days = parsed
	}

	files, err := r.cleanupService.CleanupCandidates(days)
	if err != nil {
		common.FailedWithError(c, err)
		return
	}
	common.Success(c, gin.H{"count": len(files), "files": files})
}

// VerifyConsistency 核对元数据与对象存储的一致性
func (r *Router) VerifyConsistency(c *gin.Context) {
	report, err := r.cleanupService.VerifyConsistency(c.Request.Context())
	if err != nil {
		common.FailedWithError(c, err)
		return
	}
	common.Success(c, report)
}

// UpdateFilePolicyReq 存储策略变更请求
type UpdateFilePolicyReq struct {
	Policy string `json:"policy" binding:"required"`
}

// UpdateFilePolicy 变更文件存储策略
func (r *Router) UpdateFilePolicy(c *gin.Context) {
	fileID := c.Param("id")
	var req UpdateFilePolicyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Failed(c, common.ErrCodeInvalidParameter, err.Error())
		return
	}

	found, err := r.policyService.UpdatePolicy(fileID, common.StoragePolicy(req.Policy))
	if err != nil {
		common.FailedWithError(c, err)
		return
	}
	if !found {
		common.Failed(c, common.ErrCodeFileNotFound, "")
		return
	}
	common.Success(c, gin.H{"updated": true})
}

// ExtendFileTTLReq TTL延长请求
type ExtendFileTTLReq struct {
	ExtensionHours int `json:"extension_hours" binding:"required"`
}

// ExtendFileTTL 延长临时文件的保留时间
func (r *Router) ExtendFileTTL(c *gin.Context) {
	fileID := c.Param("id")
	var req ExtendFileTTLReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Failed(c, common.ErrCodeInvalidParameter, err.Error())
		return
	}
	if req.ExtensionHours <= 0 {
		common.Failed(c, common.ErrCodeInvalidParameterValue, "extension_hours must be positive")
		return
	}

	extended, err := r.policyService.ExtendTTL(fileID, time.Duration(req.ExtensionHours)*time.Hour)
	if err != nil {
		common.FailedWithError(c, err)
		return
	}
	if !extended {
		common.Failed(c, common.ErrCodePolicyViolation, "file not found or not under temporary policy")
		return
	}
	common.Success(c, gin.H{"extended": true})
}
