/*
*

	@author: shiliang
	@date: 2025/3/28
	@note: 存储清理服务。批量清理过期临时文件：先删对象存储再删元数据，
	      对象不存在视为删除成功（幂等），任一文件失败不影响其余文件。
	      dry_run与真实清理共享同一套选取逻辑，只跳过删除动作本身。

*
*/
package service

import (
	"context"
	"document-service/common"
	"document-service/config"
	"document-service/database/gorm/models"
	"document-service/log"
	"document-service/oss"
	"fmt"
	"time"
)

// CleanupFileStore 清理服务依赖的元数据操作
type CleanupFileStore interface {
	FindExpired(limit int) ([]models.FileMetadata, error)
	FindExpiringWithin(days int) ([]models.FileMetadata, error)
	ListStoragePaths() ([]string, error)
	ListAll() ([]models.FileMetadata, error)
	Delete(fileID string) error
}

// CleanupResult 一次清理批次的结果。孤儿清理批次还携带核对阶段的
// 附带发现（元数据有而存储缺失的文件、两边大小不一致的文件）。
type CleanupResult struct {
	FilesProcessed   int      `json:"files_processed"`
	FilesDeleted     int      `json:"files_deleted"`
	BytesFreed       int64    `json:"bytes_freed"`
	Errors           []string `json:"errors,omitempty"`
	MissingInStorage []string `json:"missing_in_storage,omitempty"`
	SizeMismatches   []string `json:"size_mismatches,omitempty"`
	DurationSeconds  float64  `json:"duration_seconds"`
	DryRun           bool     `json:"dry_run"`
}

// ConsistencyReport 对象存储与元数据的一致性核对结果
type ConsistencyReport struct {
	OrphanedObjects  []string `json:"orphaned_objects,omitempty"`   // 存储中有、元数据中无
	MissingInStorage []string `json:"missing_in_storage,omitempty"` // 元数据中有、存储中无
	SizeMismatches   []string `json:"size_mismatches,omitempty"`    // 两边大小不一致
	StorageError     string   `json:"storage_error,omitempty"`      // 列举存储失败时的部分结果标记

	// 孤儿对象的大小，按key索引，清理时核算释放空间用
	orphanSizes map[string]int64
}

// StorageCleanupService 存储清理服务
type StorageCleanupService struct {
	files     CleanupFileStore
	ossClient oss.ClientInterface
	bucket    string
	batchSize int
}

func NewStorageCleanupService(files CleanupFileStore, ossClient oss.ClientInterface, conf *config.CleanupConfig, bucket string) *StorageCleanupService {
	batchSize := conf.BatchSize
	if batchSize <= 0 {
		batchSize = common.DEFAULT_CLEANUP_BATCH_SIZE
	}
	if bucket == "" {
		bucket = common.DOCUMENT_BUCKET_NAME
	}
	return &StorageCleanupService{
		files:     files,
		ossClient: ossClient,
		bucket:    bucket,
		batchSize: batchSize,
	}
}

// ExpiredFiles 返回当前批次待清理的过期临时文件
func (s *StorageCleanupService) ExpiredFiles() ([]models.FileMetadata, error) {
	return s.files.FindExpired(s.batchSize)
}

// CleanupCandidates 预览将在daysAhead天内过期的文件，只读不删
func (s *StorageCleanupService) CleanupCandidates(daysAhead int) ([]models.FileMetadata, error) {
	if daysAhead <= 0 {
		daysAhead = 7
	}
	return s.files.FindExpiringWithin(daysAhead)
}

// DeleteFromStorage 从对象存储删除。对象不存在视为成功（幂等删除），
// 其他错误返回false但不抛出，由调用方计入错误列表。
func (s *StorageCleanupService) DeleteFromStorage(ctx context.Context, storagePath string) bool {
	err := s.ossClient.DeleteObject(ctx, s.bucket, storagePath)
	if err == nil {
		return true
	}
	if oss.IsNotFound(err) {
		log.Logger.Warnf("Object %s already absent from storage, treating as deleted", storagePath)
		return true
	}
	log.Logger.Errorf("Failed to delete object %s: %v", storagePath, err)
	return false
}

// CleanupExpired 清理一批过期文件。dryRun时完整执行选取与统计但不删除。
// 只有对象存储删除成功（含对象不存在）才删除元数据行，保证不产生
// 元数据已删、对象残留的孤儿。
func (s *StorageCleanupService) CleanupExpired(ctx context.Context, dryRun bool) (*CleanupResult, error) {
	start := time.Now()
	result := &CleanupResult{DryRun: dryRun}

	expired, err := s.ExpiredFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to list expired files: %v", err)
	}
	result.FilesProcessed = len(expired)

	for _, file := range expired {
		if dryRun {
			result.FilesDeleted++
			result.BytesFreed += file.FileSize
			continue
		}

		if !s.DeleteFromStorage(ctx, file.StoragePath) {
			result.Errors = append(result.Errors,
				fmt.Sprintf("file %s: failed to delete object %s", file.ID, file.StoragePath))
			continue
		}
		if err := s.files.Delete(file.ID); err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("file %s: failed to delete metadata: %v", file.ID, err))
			continue
		}
		result.FilesDeleted++
		result.BytesFreed += file.FileSize
	}

	result.DurationSeconds = time.Since(start).Seconds()
	log.Logger.Infof("Cleanup batch done: processed=%d deleted=%d freed=%s errors=%d dry_run=%v",
		result.FilesProcessed, result.FilesDeleted, common.FormatBytes(result.BytesFreed),
		len(result.Errors), dryRun)
	return result, nil
}

// CleanupOrphaned 清理对象存储中没有元数据记录的孤儿对象。
// 核对阶段的附带发现（存储缺失、大小不一致）随结果一并返回；
// 列举存储失败时不能与"没有孤儿"混淆，失败计入Errors。
func (s *StorageCleanupService) CleanupOrphaned(ctx context.Context, dryRun bool) (*CleanupResult, error) {
	start := time.Now()
	result := &CleanupResult{DryRun: dryRun}

	report, err := s.VerifyConsistency(ctx)
	if err != nil {
		return nil, err
	}
	if report.StorageError != "" {
		result.Errors = append(result.Errors,
			fmt.Sprintf("storage listing failed: %s", report.StorageError))
		result.DurationSeconds = time.Since(start).Seconds()
		return result, nil
	}
	result.FilesProcessed = len(report.OrphanedObjects)
	result.MissingInStorage = report.MissingInStorage
	result.SizeMismatches = report.SizeMismatches

	for _, key := range report.OrphanedObjects {
		if dryRun {
			result.FilesDeleted++
			result.BytesFreed += report.orphanSizes[key]
			continue
		}
		if !s.DeleteFromStorage(ctx, key) {
			result.Errors = append(result.Errors, fmt.Sprintf("orphan %s: delete failed", key))
			continue
		}
		result.FilesDeleted++
		result.BytesFreed += report.orphanSizes[key]
	}

	result.DurationSeconds = time.Since(start).Seconds()
	log.Logger.Infof("Orphan cleanup done: found=%d deleted=%d freed=%s missing=%d mismatched=%d errors=%d dry_run=%v",
		result.FilesProcessed, result.FilesDeleted, common.FormatBytes(result.BytesFreed),
		len(result.MissingInStorage), len(result.SizeMismatches), len(result.Errors), dryRun)
	return result, nil
}

// VerifyConsistency 双向核对元数据与对象存储。列举存储失败时
// 返回仅含元数据侧信息的部分结果并标注storage_error，不整体失败。
func (s *StorageCleanupService) VerifyConsistency(ctx context.Context) (*ConsistencyReport, error) {
	report := &ConsistencyReport{}

	records, err := s.files.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list file metadata: %v", err)
	}

	objects, err := s.ossClient.ListObjects(ctx, s.bucket, "", true)
	if err != nil {
		log.Logger.Errorf("Failed to list objects in bucket %s: %v", s.bucket, err)
		report.StorageError = err.Error()
		return report, nil
	}

	objectSizes := make(map[string]int64, len(objects))
	for _, obj := range objects {
		objectSizes[obj.Key] = obj.Size
	}

	registered := make(map[string]bool, len(records))
	for _, file := range records {
		registered[file.StoragePath] = true
		size, exists := objectSizes[file.StoragePath]
		if !exists {
			report.MissingInStorage = append(report.MissingInStorage, file.StoragePath)
			continue
		}
		if size != file.FileSize {
			report.SizeMismatches = append(report.SizeMismatches,
				fmt.Sprintf("%s: metadata=%d storage=%d", file.StoragePath, file.FileSize, size))
		}
	}

	report.orphanSizes = make(map[string]int64)
	for key, size := range objectSizes {
		if !registered[key] {
			report.OrphanedObjects = append(report.OrphanedObjects, key)
			report.orphanSizes[key] = size
		}
	}

	return report, nil
}
