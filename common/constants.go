/*
*

	@author: shiliang
	@date: 2025/3/6
	@note: 服务级常量

*
*/
package common

import "time"

const (
	DOCUMENT_BUCKET_NAME = "document-data"

	MAX_RETRY_COUNT       = 3
	DEFAULT_RETRY_BACKOFF = 60 * time.Second

	// 流式拷贝的分块大小
	MAX_CHUNK_SIZE = 1024 * 1024 // 1MB

	// 临时文件目录（压缩包解压工作区）
	DATA_DIR = "/home/workspace/data"

	// 临时存储策略的默认TTL
	DEFAULT_TTL_HOURS = 72

	// 清理任务单批默认处理文件数
	DEFAULT_CLEANUP_BATCH_SIZE = 100

	// 任务通用处理超时
	DEFAULT_PROCESSING_TIMEOUT = 10 * time.Minute
	// 清理任务固定超时上限
	CLEANUP_TIMEOUT = 60 * time.Second
)
