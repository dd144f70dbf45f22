package common

const (
	// ErrCodeOK -  Default error codes
	ErrCodeOK      = 200
	ErrCodeUnknown = 69999

	// ErrCodeInvalidParameter - Common error codes: 60000 - 60099
	ErrCodeInvalidParameter      = 60000
	ErrCodeInvalidParameterValue = 60001
	ErrCodeMissingParameter      = 60002
	ErrCodeInternalError         = 60003
	ErrCodeInvalidUUID           = 60004
	ErrCodeFileListEmpty         = 60005

	// 存储相关错误码 (60100-60199)
	ErrCodeStorageUploadFailed   = 60100
	ErrCodeStorageDownloadFailed = 60101
	ErrCodeStorageDeleteFailed   = 60102
	ErrCodeFileSizeLimit         = 60103
	ErrCodeFileTypeNotAllowed    = 60104
	ErrCodeFileNotFound          = 60105
	ErrCodePolicyViolation       = 60106

	// 压缩包安全相关错误码 (60200-60299)
	ErrCodeArchiveTooManyFiles  = 60200
	ErrCodeArchiveTooLarge      = 60201
	ErrCodeArchiveNoValidFiles  = 60202
	ErrCodeArchiveExtractFailed = 60203
	ErrCodeArchiveUnreadable    = 60204

	// 成本相关错误码 (60300-60399)
	ErrCodeCostLimitExceeded    = 60300
	ErrCodeCostEstimationFailed = 60301

	// 任务相关错误码 (60400-60499)
	ErrCodeTaskNotFound         = 60400
	ErrCodeTaskAlreadyTerminal  = 60401
	ErrCodeTaskDispatchFailed   = 60402
	ErrCodeTaskTypeNotSupported = 60403

	// LLM相关错误码 (60500-60599)
	ErrCodeLLMNotConfigured  = 60500
	ErrCodeLLMRequestFailed  = 60501
	ErrCodeEmbeddingFailed   = 60502
	ErrCodeVectorStoreFailed = 60503
)

// ErrCodeMessage 错误码对应的默认提示
var ErrCodeMessage = map[int]string{
	ErrCodeOK:                    "success",
	ErrCodeUnknown:               "unknown error",
	ErrCodeInvalidParameter:      "invalid parameter",
	ErrCodeInvalidParameterValue: "invalid parameter value",
	ErrCodeMissingParameter:      "missing required parameter",
	ErrCodeInternalError:         "internal error",
	ErrCodeInvalidUUID:           "invalid uuid format",
	ErrCodeFileListEmpty:         "file_urls must not be empty",

	ErrCodeStorageUploadFailed:   "failed to upload object",
	ErrCodeStorageDownloadFailed: "failed to download object",
	ErrCodeStorageDeleteFailed:   "failed to delete object",
	ErrCodeFileSizeLimit:         "file size exceeds limit",
	ErrCodeFileTypeNotAllowed:    "file type not allowed",
	ErrCodeFileNotFound:          "file not found",
	ErrCodePolicyViolation:       "storage policy violation",

	ErrCodeArchiveTooManyFiles:  "archive contains too many files",
	ErrCodeArchiveTooLarge:      "archive total size exceeds limit",
	ErrCodeArchiveNoValidFiles:  "no valid files in archive",
	ErrCodeArchiveExtractFailed: "failed to extract archive",
	ErrCodeArchiveUnreadable:    "failed to read archive",

	ErrCodeCostLimitExceeded:    "estimated cost exceeds limit",
	ErrCodeCostEstimationFailed: "failed to estimate cost",

	ErrCodeTaskNotFound:         "task not found",
	ErrCodeTaskAlreadyTerminal:  "task already in terminal state",
	ErrCodeTaskDispatchFailed:   "failed to dispatch task",
	ErrCodeTaskTypeNotSupported: "task type not supported",

	ErrCodeLLMNotConfigured:  "llm provider not configured",
	ErrCodeLLMRequestFailed:  "llm request failed",
	ErrCodeEmbeddingFailed:   "failed to embed content",
	ErrCodeVectorStoreFailed: "vector store operation failed",
}
