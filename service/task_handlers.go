/*
*

	@author: shiliang
	@date: 2025/3/30
	@note: 各任务类型的处理函数。压缩包任务展开为子任务（每个解压出的
	      文件一个解析子任务，可按配置追加向量化子任务），子任务创建
	      前先过成本限额校验。下载/网络失败按可重试处理，校验与安全
	      拒绝按不可重试处理。

*
*/
package service

import (
	"context"
	"document-service/archive"
	"document-service/common"
	"document-service/config"
	"document-service/cost"
	"document-service/database/gorm/models"
	"document-service/database/gorm/repositories"
	"document-service/dispatch"
	"document-service/lifecycle"
	"document-service/llm"
	"document-service/oss"
	"document-service/vector"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/embeddings"
)

// 向量化的文本分块大小（字符数）
const vectorChunkSize = 2000

// TaskHandlers 任务处理函数的依赖集合
type TaskHandlers struct {
	tasks      *repositories.TaskRepository
	policy     *StoragePolicyService
	cleanup    *StorageCleanupService
	ossClient  oss.ClientInterface
	dispatcher dispatch.Dispatcher
	extractor  *archive.SecureExtractor
	estimator  *cost.Estimator
	workspaces *TempFileManager
	llmClient  llm.Client           // 未配置时为nil，解析任务直接失败
	embedder   embeddings.Embedder  // 未配置时为nil，向量化任务直接失败
	vectors    vector.Store
	bucket     string
	modelName  string
	costLimit  float64
	vectorize  bool

	// OnCleanup 可选的清理结果上报回调
	OnCleanup func(filesDeleted int, bytesFreed int64)
}

func NewTaskHandlers(
	tasks *repositories.TaskRepository,
	policy *StoragePolicyService,
	cleanup *StorageCleanupService,
	ossClient oss.ClientInterface,
	dispatcher dispatch.Dispatcher,
	llmClient llm.Client,
	embedder embeddings.Embedder,
	vectors vector.Store,
	conf *config.DocumentServiceConf,
) *TaskHandlers {
	bucket := conf.StorageConfig.Bucket
	if bucket == "" {
		bucket = common.DOCUMENT_BUCKET_NAME
	}
	return &TaskHandlers{
		tasks:      tasks,
		policy:     policy,
		cleanup:    cleanup,
		ossClient:  ossClient,
		dispatcher: dispatcher,
		extractor:  archive.NewSecureExtractor(nil),
		estimator:  cost.NewEstimator(),
		workspaces: GetManager(),
		llmClient:  llmClient,
		embedder:   embedder,
		vectors:    vectors,
		bucket:     bucket,
		modelName:  conf.LLMConfig.ModelName,
		costLimit:  conf.CostConfig.MaxCostLimit,
		vectorize:  conf.LLMConfig.EnableVectorization,
	}
}

// RegisterAll 在注册表中登记全部处理函数
func (h *TaskHandlers) RegisterAll(registry *dispatch.Registry) error {
	handlers := map[common.TaskType]dispatch.HandlerFunc{
		common.TaskTypeArchiveProcessing: h.HandleArchiveProcessing,
		common.TaskTypeDocumentParsing:   h.HandleDocumentParsing,
		common.TaskTypeVectorization:     h.HandleVectorization,
		common.TaskTypeCleanup:           h.HandleCleanup,
	}
	for taskType, handler := range handlers {
		if err := registry.Register(taskType, handler); err != nil {
			return err
		}
	}
	return nil
}

// downloadToTemp 下载对象到解压工作区，返回本地路径、工作区目录与清理函数。
// 工作区通过TempFileManager登记，处理中的目录不会被定时清理误删，
// worker崩溃的残留目录由定时清理兜底回收。
func (h *TaskHandlers) downloadToTemp(ctx context.Context, storagePath string) (string, string, func(), error) {
	obj, err := h.ossClient.GetObject(ctx, h.bucket, storagePath, nil)
	if err != nil {
		return "", "", nil, lifecycle.NewRetryableError(
			fmt.Sprintf("failed to download object %s", storagePath), err)
	}
	defer obj.Close()

	tmpDir, err := h.workspaces.CreateWorkspace()
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to create workspace: %v", err)
	}
	cleanupFn := func() { h.workspaces.ReleaseWorkspace(tmpDir) }

	localPath := filepath.Join(tmpDir, archive.SanitizeFilename(filepath.Base(storagePath)))
	out, err := os.Create(localPath)
	if err != nil {
		cleanupFn()
		return "", "", nil, fmt.Errorf("failed to create temp file: %v", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, obj); err != nil {
		cleanupFn()
		return "", "", nil, lifecycle.NewRetryableError(
			fmt.Sprintf("failed to read object %s", storagePath), err)
	}
	return localPath, tmpDir, cleanupFn, nil
}

// readObject 读取对象全部内容到内存（解析/向量化的小文件场景）
func (h *TaskHandlers) readObject(ctx context.Context, storagePath string) ([]byte, error) {
	obj, err := h.ossClient.GetObject(ctx, h.bucket, storagePath, nil)
	if err != nil {
		return nil, lifecycle.NewRetryableError(
			fmt.Sprintf("failed to download object %s", storagePath), err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, lifecycle.NewRetryableError(
			fmt.Sprintf("failed to read object %s", storagePath), err)
	}
	return data, nil
}

// HandleArchiveProcessing 压缩包处理。下载→安全校验→解压→逐文件上传、
// 登记元数据、成本校验、创建并入队子任务。单个文件失败不中断整包。
func (h *TaskHandlers) HandleArchiveProcessing(ctx context.Context, ec *lifecycle.ExecutionContext, msg *dispatch.Message) (map[string]interface{}, *float64, error) {
	task, err := h.tasks.FindByID(msg.TaskID)
	if err != nil {
		return nil, nil, lifecycle.NewRetryableError("failed to load task", err)
	}

	archivePath, workDir, cleanupTmp, err := h.downloadToTemp(ctx, task.FileURL)
	if err != nil {
		return nil, nil, err
	}
	defer cleanupTmp()

	validation, err := h.extractor.Validate(archivePath)
	if err != nil {
		return nil, nil, lifecycle.NewPermanentError("archive validation failed", err)
	}
	if !validation.Valid {
		return nil, nil, lifecycle.NewPermanentError(
			fmt.Sprintf("archive rejected: %s", validation.Reason), nil)
	}

	_, extracted, err := h.extractor.Extract(archivePath, filepath.Join(workDir, "extracted"))
	if err != nil {
		return nil, nil, lifecycle.NewPermanentError("archive extraction failed", err)
	}

	var childIDs []string
	var skipped []string
	var totalEstimated float64
	for _, file := range extracted {
		if !file.Valid {
			skipped = append(skipped, fmt.Sprintf("%s: %s", file.OriginalPath, file.Error))
			continue
		}
		childID, estimated, err := h.spawnChildTasks(ctx, ec, task, &file)
		if err != nil {
			ec.Logger.Errorf("Failed to process extracted file %s: %v", file.OriginalPath, err)
			skipped = append(skipped, fmt.Sprintf("%s: %v", file.OriginalPath, err))
			continue
		}
		childIDs = append(childIDs, childID...)
		totalEstimated += estimated
	}

	// 母任务的预估成本汇总为各子任务预估之和
	if len(childIDs) > 0 {
		if err := h.tasks.UpdateEstimatedCost(task.ID, totalEstimated); err != nil {
			ec.Logger.Errorf("Failed to update estimated cost for task %s: %v", task.ID, err)
		}
	}

	results := map[string]interface{}{
		"file_count":       validation.FileCount,
		"valid_files":      len(childIDs),
		"suspicious_files": validation.SuspiciousFiles,
		"child_task_ids":   childIDs,
		"total_size":       validation.TotalSize,
	}
	if len(skipped) > 0 {
		results["skipped_files"] = skipped
	}
	return results, nil, nil
}

// spawnChildTasks 上传单个解压文件并派生子任务。
// 成本校验不通过的文件不创建子任务（fail closed）。
func (h *TaskHandlers) spawnChildTasks(ctx context.Context, ec *lifecycle.ExecutionContext, parent *models.Task, file *archive.ExtractedFile) ([]string, float64, error) {
	if err := h.policy.ValidateUpload(file.SafePath, file.Size); err != nil {
		return nil, 0, err
	}

	validation := h.estimator.ValidateCost(h.modelName, file.FileType, file.Size, h.costLimit)
	if !validation.IsValid {
		return nil, 0, common.NewCodedErrorMsg(common.ErrCodeCostLimitExceeded, validation.Error)
	}

	storageKey, err := common.BuildStorageKey(parent.UserID, filepath.Base(file.SafePath))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build storage key: %v", err)
	}

	reader, err := os.Open(file.SafePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open extracted file: %v", err)
	}
	defer reader.Close()

	if err := h.ossClient.PutObject(ctx, h.bucket, storageKey, reader, file.Size, nil); err != nil {
		return nil, 0, lifecycle.NewRetryableError(
			fmt.Sprintf("failed to upload extracted file %s", file.OriginalPath), err)
	}

	policy, expiresAt, err := h.policy.ApplyPolicy("")
	if err != nil {
		return nil, 0, err
	}

	childTypes := []common.TaskType{common.TaskTypeDocumentParsing}
	if h.vectorize {
		childTypes = append(childTypes, common.TaskTypeVectorization)
	}

	var children []*models.Task
	for _, childType := range childTypes {
		children = append(children, &models.Task{
			ID:               uuid.New().String(),
			UserID:           parent.UserID,
			ParentTaskID:     &parent.ID,
			Status:           common.TaskStatusPending,
			TaskType:         childType,
			FileURL:          storageKey,
			OriginalFilename: filepath.Base(file.OriginalPath),
			Options:          parent.Options,
			EstimatedCost:    &validation.Estimate.EstimatedCostUSD,
			MaxRetries:       common.MAX_RETRY_COUNT,
		})
	}
	metadata := &models.FileMetadata{
		ID:               uuid.New().String(),
		TaskID:           children[0].ID,
		OriginalFilename: filepath.Base(file.OriginalPath),
		FileType:         file.FileType,
		FileSize:         file.Size,
		StoragePath:      storageKey,
		StoragePolicy:    policy,
		ExpiresAt:        expiresAt,
	}
	// 子任务与文件元数据同事务落库，避免元数据写入失败时
	// 留下既不入队也不标失败的悬空子任务
	if err := h.tasks.CreateTasksWithFile(children, metadata); err != nil {
		return nil, 0, fmt.Errorf("failed to create child tasks: %v", err)
	}

	ids := make([]string, 0, len(children))
	for _, child := range children {
		if err := h.dispatcher.Enqueue(ctx, &dispatch.Message{
			TaskID:        child.ID,
			TaskType:      child.TaskType,
			CorrelationID: ec.CorrelationID,
		}); err != nil {
			ec.Logger.Errorf("Failed to enqueue child task %s: %v", child.ID, err)
			continue
		}
		ids = append(ids, child.ID)
	}
	return ids, validation.Estimate.EstimatedCostUSD, nil
}

// HandleDocumentParsing 文档解析。下载文件内容交给LLM做结构化抽取，
// 实际成本按返回的token用量计价。
func (h *TaskHandlers) HandleDocumentParsing(ctx context.Context, ec *lifecycle.ExecutionContext, msg *dispatch.Message) (map[string]interface{}, *float64, error) {
	if h.llmClient == nil {
		return nil, nil, lifecycle.NewPermanentError(
			common.ErrCodeMessage[common.ErrCodeLLMNotConfigured], nil)
	}

	task, err := h.tasks.FindByID(msg.TaskID)
	if err != nil {
		return nil, nil, lifecycle.NewRetryableError("failed to load task", err)
	}

	data, err := h.readObject(ctx, task.FileURL)
	if err != nil {
		return nil, nil, err
	}

	prompt := fmt.Sprintf(
		"Extract the key information from the following document as structured text. "+
			"Document name: %s\n\n%s", task.OriginalFilename, string(data))
	content, usage, err := h.llmClient.Complete(ctx, prompt)
	if err != nil {
		return nil, nil, lifecycle.NewRetryableError("llm completion failed", err)
	}

	actualCost := h.estimator.ActualCost(h.llmClient.ModelName(), usage.InputTokens, usage.OutputTokens)
	results := map[string]interface{}{
		"parsed_content": content,
		"model":          h.llmClient.ModelName(),
		"input_tokens":   usage.InputTokens,
		"output_tokens":  usage.OutputTokens,
	}
	return results, &actualCost, nil
}

// HandleVectorization 向量化。文本分块后生成embedding写入向量库。
func (h *TaskHandlers) HandleVectorization(ctx context.Context, ec *lifecycle.ExecutionContext, msg *dispatch.Message) (map[string]interface{}, *float64, error) {
	if h.embedder == nil {
		return nil, nil, lifecycle.NewPermanentError(
			common.ErrCodeMessage[common.ErrCodeLLMNotConfigured], nil)
	}

	task, err := h.tasks.FindByID(msg.TaskID)
	if err != nil {
		return nil, nil, lifecycle.NewRetryableError("failed to load task", err)
	}

	data, err := h.readObject(ctx, task.FileURL)
	if err != nil {
		return nil, nil, err
	}

	chunks := ChunkText(string(data), vectorChunkSize)
	if len(chunks) == 0 {
		return nil, nil, lifecycle.NewPermanentError("document is empty, nothing to vectorize", nil)
	}

	vecs, err := h.embedder.EmbedDocuments(ctx, chunks)
	if err != nil {
		return nil, nil, lifecycle.NewRetryableError("failed to embed document chunks", err)
	}
	if len(vecs) != len(chunks) {
		return nil, nil, lifecycle.NewPermanentError(
			fmt.Sprintf("embedding count %d does not match chunk count %d", len(vecs), len(chunks)), nil)
	}

	docs := make([]vector.Document, 0, len(chunks))
	for i, chunk := range chunks {
		docs = append(docs, vector.Document{
			TaskID:    task.ID,
			Content:   chunk,
			Embedding: vecs[i],
			Metadata: map[string]string{
				"filename": task.OriginalFilename,
				"user_id":  task.UserID,
				"chunk":    fmt.Sprintf("%d", i),
			},
		})
	}
	ids, err := h.vectors.Upsert(ctx, docs)
	if err != nil {
		return nil, nil, lifecycle.NewRetryableError("failed to upsert vectors", err)
	}

	return map[string]interface{}{
		"chunk_count": len(chunks),
		"vector_ids":  ids,
	}, nil, nil
}

// HandleCleanup 清理任务。payload里的dry_run覆盖配置默认值，
// include_orphans为true时追加孤儿对象清理。
func (h *TaskHandlers) HandleCleanup(ctx context.Context, ec *lifecycle.ExecutionContext, msg *dispatch.Message) (map[string]interface{}, *float64, error) {
	dryRun := false
	if v, ok := msg.Payload["dry_run"].(bool); ok {
		dryRun = v
	}

	result, err := h.cleanup.CleanupExpired(ctx, dryRun)
	if err != nil {
		return nil, nil, lifecycle.NewRetryableError("cleanup batch failed", err)
	}
	if h.OnCleanup != nil && !dryRun {
		h.OnCleanup(result.FilesDeleted, result.BytesFreed)
	}

	results := map[string]interface{}{
		"files_processed":  result.FilesProcessed,
		"files_deleted":    result.FilesDeleted,
		"bytes_freed":      result.BytesFreed,
		"duration_seconds": result.DurationSeconds,
		"dry_run":          result.DryRun,
	}
	if len(result.Errors) > 0 {
		results["errors"] = result.Errors
	}

	if v, ok := msg.Payload["include_orphans"].(bool); ok && v {
		orphanResult, err := h.cleanup.CleanupOrphaned(ctx, dryRun)
		if err != nil {
			ec.Logger.Errorf("Orphan cleanup failed: %v", err)
			results["orphan_error"] = err.Error()
		} else {
			results["orphans_deleted"] = orphanResult.FilesDeleted
		}
	}
	return results, nil, nil
}

// ChunkText 按固定大小切分文本，末尾不足一块的部分单独成块
func ChunkText(text string, size int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = vectorChunkSize
	}
	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
