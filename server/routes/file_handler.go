/*
*

	@author: shiliang
	@date: 2025/4/1
	@note: 文件元数据查询与下载链接相关的HTTP处理函数

*
*/
package routes

import (
	"document-service/common"

	"github.com/gin-gonic/gin"
)

// GetFile 查询文件元数据
func (r *Router) GetFile(c *gin.Context) {
	file, err := r.fileService.GetFile(c.Param("id"))
	if err != nil {
		common.FailedWithError(c, err)
		return
	}
	common.Success(c, file)
}

// DownloadFile 签发文件下载链接
func (r *Router) DownloadFile(c *gin.Context) {
	url, err := r.fileService.PresignDownload(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.FailedWithError(c, err)
		return
	}
	common.Success(c, gin.H{"download_url": url})
}

// SearchReq 语义检索请求
type SearchReq struct {
	Query  string            `json:"query" binding:"required"`
	TopK   int               `json:"top_k"`
	Filter map[string]string `json:"filter"`
}

// Search 语义检索已向量化的文档内容
func (r *Router) Search(c *gin.Context) {
	var req SearchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Failed(c, common.ErrCodeInvalidParameter, err.Error())
		return
	}

	matches, err := r.searchService.Search(c.Request.Context(), req.Query, req.TopK, req.Filter)
	if err != nil {
		common.FailedWithError(c, err)
		return
	}
	common.Success(c, gin.H{"count": len(matches), "matches": matches})
}
