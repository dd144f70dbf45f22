package repositories

import (
	"document-service/common"
	"document-service/database/gorm/models"
	"errors"
	"time"

	"gorm.io/gorm"
)

type FileMetadataRepository struct {
	db *gorm.DB
}

func NewFileMetadataRepository(db *gorm.DB) *FileMetadataRepository {
	return &FileMetadataRepository{db: db}
}

// Create 创建文件元数据
func (r *FileMetadataRepository) Create(file *models.FileMetadata) error {
	return r.db.Create(file).Error
}

// FindByID 根据ID查找文件
func (r *FileMetadataRepository) FindByID(fileID string) (*models.FileMetadata, error) {
	var file models.FileMetadata
	err := r.db.Where("id = ?", fileID).First(&file).Error
	return &file, err
}

// FindExpired 查找已过期的临时文件，按过期时间升序保证批次处理顺序确定
func (r *FileMetadataRepository) FindExpired(limit int) ([]models.FileMetadata, error) {
	var files []models.FileMetadata
	err := r.db.Where("storage_policy = ? AND expires_at IS NOT NULL AND expires_at <= ?",
		common.StoragePolicyTemporary, time.Now()).
		Order("expires_at ASC, id ASC").
		Limit(limit).
		Find(&files).Error
	return files, err
}

// FindExpiringWithin 查找将在指定天数内过期的临时文件（只读预览）
func (r *FileMetadataRepository) FindExpiringWithin(days int) ([]models.FileMetadata, error) {
	var files []models.FileMetadata
	deadline := time.Now().Add(time.Duration(days) * 24 * time.Hour)
	err := r.db.Where("storage_policy = ? AND expires_at IS NOT NULL AND expires_at <= ?",
		common.StoragePolicyTemporary, deadline).
		Order("expires_at ASC, id ASC").
		Find(&files).Error
	return files, err
}

// FindTemporaryMissingExpiry 查找缺少过期时间的临时文件（策略补齐时使用）
func (r *FileMetadataRepository) FindTemporaryMissingExpiry() ([]models.FileMetadata, error) {
	var files []models.FileMetadata
	err := r.db.Where("storage_policy = ? AND expires_at IS NULL",
		common.StoragePolicyTemporary).
		Find(&files).Error
	return files, err
}

// ListStoragePaths 列出所有已登记的对象存储key
func (r *FileMetadataRepository) ListStoragePaths() ([]string, error) {
	var paths []string
	err := r.db.Model(&models.FileMetadata{}).Pluck("storage_path", &paths).Error
	return paths, err
}

// ListAll 列出全部文件元数据
func (r *FileMetadataRepository) ListAll() ([]models.FileMetadata, error) {
	var files []models.FileMetadata
	err := r.db.Find(&files).Error
	return files, err
}

// Delete 删除文件元数据行。行不存在视为成功（幂等删除）。
func (r *FileMetadataRepository) Delete(fileID string) error {
	return r.db.Where("id = ?", fileID).Delete(&models.FileMetadata{}).Error
}

// UpdatePolicy 事务内更新存储策略。文件不存在时返回false而不是错误。
func (r *FileMetadataRepository) UpdatePolicy(fileID string, policy common.StoragePolicy, expiresAt *time.Time) (bool, error) {
	found := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var file models.FileMetadata
		if err := tx.Where("id = ?", fileID).First(&file).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		found = true
		return tx.Model(&file).Updates(map[string]interface{}{
			"storage_policy": policy,
			"expires_at":     expiresAt,
			"updated_at":     time.Now(),
		}).Error
	})
	return found, err
}

// UpdateExpiresAt 更新过期时间
func (r *FileMetadataRepository) UpdateExpiresAt(fileID string, expiresAt *time.Time) error {
	return r.db.Model(&models.FileMetadata{}).Where("id = ?", fileID).Updates(map[string]interface{}{
		"expires_at": expiresAt,
		"updated_at": time.Now(),
	}).Error
}
