/*
*

	@author: shiliang
	@date: 2025/4/1
	@note: 文件服务。元数据查询与下载链接签发，
	      签发前核对对象在存储中确实存在。

*
*/
package service

import (
	"context"
	"document-service/common"
	"document-service/database/gorm/models"
	"document-service/oss"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// FileService 文件元数据查询与下载服务
type FileService struct {
	files     FileMetadataStore
	ossClient oss.ClientInterface
	bucket    string
}

func NewFileService(files FileMetadataStore, ossClient oss.ClientInterface, bucket string) *FileService {
	if bucket == "" {
		bucket = common.DOCUMENT_BUCKET_NAME
	}
	return &FileService{files: files, ossClient: ossClient, bucket: bucket}
}

// GetFile 查询文件元数据
func (s *FileService) GetFile(fileID string) (*models.FileMetadata, error) {
	file, err := s.files.FindByID(fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewCodedErrorMsg(common.ErrCodeFileNotFound,
				fmt.Sprintf("file not found: %s", fileID))
		}
		return nil, fmt.Errorf("failed to load file %s: %v", fileID, err)
	}
	return file, nil
}

// PresignDownload 签发文件的下载链接。元数据存在但对象已不在存储中
// 同样按不存在处理，避免签出必然404的链接。
func (s *FileService) PresignDownload(ctx context.Context, fileID string) (string, error) {
	file, err := s.GetFile(fileID)
	if err != nil {
		return "", err
	}

	if _, err := s.ossClient.StatObject(ctx, s.bucket, file.StoragePath); err != nil {
		if oss.IsNotFound(err) {
			return "", common.NewCodedErrorMsg(common.ErrCodeFileNotFound,
				fmt.Sprintf("file %s no longer exists in storage", fileID))
		}
		return "", fmt.Errorf("failed to stat object %s: %v", file.StoragePath, err)
	}

	url, err := s.ossClient.PresignedGetObject(s.bucket, file.StoragePath)
	if err != nil {
		return "", fmt.Errorf("failed to presign download for %s: %v", file.StoragePath, err)
	}
	return url, nil
}
