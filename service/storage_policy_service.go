/*
*

	@author: shiliang
	@date: 2025/3/28
	@note: 存储策略引擎。permanent文件expires_at为空，temporary文件
	      expires_at = 当前时间 + TTL。策略变更在元数据事务内完成，
	      补齐扫描可重复执行（幂等）。

*
*/
package service

import (
	"document-service/common"
	"document-service/config"
	"document-service/database/gorm/models"
	"document-service/log"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"
)

// FileMetadataStore 策略引擎依赖的元数据操作
type FileMetadataStore interface {
	FindByID(fileID string) (*models.FileMetadata, error)
	FindTemporaryMissingExpiry() ([]models.FileMetadata, error)
	UpdatePolicy(fileID string, policy common.StoragePolicy, expiresAt *time.Time) (bool, error)
	UpdateExpiresAt(fileID string, expiresAt *time.Time) error
}

// EnforceResult 策略补齐扫描的结果统计
type EnforceResult struct {
	Processed int      `json:"processed"`
	Updated   int      `json:"updated"`
	Errors    []string `json:"errors,omitempty"`
}

// StoragePolicyService 存储策略引擎
type StoragePolicyService struct {
	files             FileMetadataStore
	defaultPolicy     common.StoragePolicy
	ttl               time.Duration
	maxFileSize       int64
	allowedExtensions map[string]bool
}

func NewStoragePolicyService(files FileMetadataStore, conf *config.StorageConfig) *StoragePolicyService {
	policy := common.StoragePolicy(conf.DefaultPolicy)
	if !policy.IsValid() {
		policy = common.StoragePolicyTemporary
	}
	ttlHours := conf.TTLHours
	if ttlHours <= 0 {
		ttlHours = common.DEFAULT_TTL_HOURS
	}

	allowed := make(map[string]bool, len(conf.AllowedExtensions))
	for _, ext := range conf.AllowedExtensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}

	return &StoragePolicyService{
		files:             files,
		defaultPolicy:     policy,
		ttl:               time.Duration(ttlHours) * time.Hour,
		maxFileSize:       conf.MaxFileSize,
		allowedExtensions: allowed,
	}
}

// DefaultPolicy 返回配置的默认存储策略
func (s *StoragePolicyService) DefaultPolicy() common.StoragePolicy {
	return s.defaultPolicy
}

// ApplyPolicy 按策略计算过期时间：permanent为空，temporary为当前时间+TTL。
// 策略字符串为空时使用配置的默认策略。
func (s *StoragePolicyService) ApplyPolicy(policy common.StoragePolicy) (common.StoragePolicy, *time.Time, error) {
	if policy == "" {
		policy = s.defaultPolicy
	}
	if !policy.IsValid() {
		return "", nil, common.NewCodedErrorMsg(common.ErrCodeInvalidParameterValue,
			fmt.Sprintf("unknown storage policy: %s", policy))
	}
	if policy == common.StoragePolicyPermanent {
		return policy, nil, nil
	}
	expiresAt := time.Now().Add(s.ttl)
	return policy, &expiresAt, nil
}

// ValidateUpload 上传前校验。先检查大小再检查扩展名，返回第一个失败项。
func (s *StoragePolicyService) ValidateUpload(filename string, size int64) error {
	if s.maxFileSize > 0 && size > s.maxFileSize {
		return common.NewCodedErrorMsg(common.ErrCodeFileSizeLimit,
			fmt.Sprintf("file %s size %s exceeds limit %s",
				filename, common.FormatBytes(size), common.FormatBytes(s.maxFileSize)))
	}
	if len(s.allowedExtensions) > 0 {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
		if !s.allowedExtensions[ext] {
			return common.NewCodedErrorMsg(common.ErrCodeFileTypeNotAllowed,
				fmt.Sprintf("file type .%s not allowed for %s", ext, filename))
		}
	}
	return nil
}

// UpdatePolicy 变更已登记文件的存储策略。文件不存在时返回(false, nil)，
// 调用方决定如何上报；切换到temporary会重算过期时间，切换到permanent清空。
func (s *StoragePolicyService) UpdatePolicy(fileID string, policy common.StoragePolicy) (bool, error) {
	resolved, expiresAt, err := s.ApplyPolicy(policy)
	if err != nil {
		return false, err
	}
	found, err := s.files.UpdatePolicy(fileID, resolved, expiresAt)
	if err != nil {
		return false, fmt.Errorf("failed to update policy for file %s: %v", fileID, err)
	}
	return found, nil
}

// ExtendTTL 延长临时文件的过期时间。文件不存在或为permanent（没有TTL
// 可延长）时返回false；存储层错误原样上抛，不与"不存在"混淆。
func (s *StoragePolicyService) ExtendTTL(fileID string, extension time.Duration) (bool, error) {
	file, err := s.files.FindByID(fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load file %s: %v", fileID, err)
	}
	if file.StoragePolicy != common.StoragePolicyTemporary || file.ExpiresAt == nil {
		return false, nil
	}
	newExpiry := file.ExpiresAt.Add(extension)
	if err := s.files.UpdateExpiresAt(fileID, &newExpiry); err != nil {
		return false, fmt.Errorf("failed to extend ttl for file %s: %v", fileID, err)
	}
	return true, nil
}

// EnforcePolicies 补齐扫描：为缺少过期时间的temporary文件设置
// 当前时间+TTL。单个文件失败不中断整批，重复执行不产生额外变更。
func (s *StoragePolicyService) EnforcePolicies() (*EnforceResult, error) {
	files, err := s.files.FindTemporaryMissingExpiry()
	if err != nil {
		return nil, fmt.Errorf("failed to scan files missing expiry: %v", err)
	}

	result := &EnforceResult{Processed: len(files)}
	for _, file := range files {
		expiresAt := time.Now().Add(s.ttl)
		if err := s.files.UpdateExpiresAt(file.ID, &expiresAt); err != nil {
			log.Logger.Errorf("Failed to backfill expiry for file %s: %v", file.ID, err)
			result.Errors = append(result.Errors, fmt.Sprintf("file %s: %v", file.ID, err))
			continue
		}
		result.Updated++
	}
	if result.Updated > 0 {
		log.Logger.Infof("Policy enforcement backfilled expiry for %d file(s)", result.Updated)
	}
	return result, nil
}
