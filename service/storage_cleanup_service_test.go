package service

import (
	"context"
	"document-service/common"
	"document-service/config"
	"document-service/database/gorm/models"
	"document-service/mocks"
	"document-service/oss"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	minio "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
)

// fakeCleanupStore 内存版清理元数据存储
type fakeCleanupStore struct {
	expired   []models.FileMetadata
	expiring  []models.FileMetadata
	all       []models.FileMetadata
	paths     []string
	deleted   []string
	deleteErr error
}

func (f *fakeCleanupStore) FindExpired(limit int) ([]models.FileMetadata, error) {
	if limit < len(f.expired) {
		return f.expired[:limit], nil
	}
	return f.expired, nil
}

func (f *fakeCleanupStore) FindExpiringWithin(days int) ([]models.FileMetadata, error) {
	return f.expiring, nil
}

func (f *fakeCleanupStore) ListStoragePaths() ([]string, error) {
	return f.paths, nil
}

func (f *fakeCleanupStore) ListAll() ([]models.FileMetadata, error) {
	return f.all, nil
}

func (f *fakeCleanupStore) Delete(fileID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, fileID)
	return nil
}

func notFoundErr() error {
	return minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}
}

func expiredFile(id, path string, size int64) models.FileMetadata {
	expiry := time.Now().Add(-time.Hour)
	return models.FileMetadata{
		ID:            id,
		StoragePath:   path,
		FileSize:      size,
		StoragePolicy: common.StoragePolicyTemporary,
		ExpiresAt:     &expiry,
	}
}

func newCleanupService(store *fakeCleanupStore, client oss.ClientInterface) *StorageCleanupService {
	return NewStorageCleanupService(store, client, &config.CleanupConfig{BatchSize: 100}, "test-bucket")
}

func TestCleanupExpiredDeletesStorageThenMetadata(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := &fakeCleanupStore{expired: []models.FileMetadata{
		expiredFile("f1", "u1/a.txt", 100),
		expiredFile("f2", "u1/b.txt", 200),
	}}
	client := mocks.NewMockClientInterface(ctrl)
	client.EXPECT().DeleteObject(gomock.Any(), "test-bucket", "u1/a.txt").Return(nil)
	client.EXPECT().DeleteObject(gomock.Any(), "test-bucket", "u1/b.txt").Return(nil)

	s := newCleanupService(store, client)
	result, err := s.CleanupExpired(context.Background(), false)
	assert.NoError(t, err)
	assert.Equal(t, 2, result.FilesProcessed)
	assert.Equal(t, 2, result.FilesDeleted)
	assert.Equal(t, int64(300), result.BytesFreed)
	assert.Empty(t, result.Errors)
	assert.Equal(t, []string{"f1", "f2"}, store.deleted)
}

func TestCleanupExpiredMissingObjectCountsAsDeleted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := &fakeCleanupStore{expired: []models.FileMetadata{
		expiredFile("f1", "u1/gone.txt", 50),
	}}
	client := mocks.NewMockClientInterface(ctrl)
	client.EXPECT().DeleteObject(gomock.Any(), "test-bucket", "u1/gone.txt").Return(notFoundErr())

	s := newCleanupService(store, client)
	result, err := s.CleanupExpired(context.Background(), false)
	assert.NoError(t, err)

	// 对象不存在视为删除成功，元数据照常清除
	assert.Equal(t, 1, result.FilesDeleted)
	assert.Empty(t, result.Errors)
	assert.Equal(t, []string{"f1"}, store.deleted)
}

func TestCleanupExpiredKeepsMetadataWhenStorageDeleteFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := &fakeCleanupStore{expired: []models.FileMetadata{
		expiredFile("f1", "u1/stuck.txt", 50),
		expiredFile("f2", "u1/fine.txt", 60),
	}}
	client := mocks.NewMockClientInterface(ctrl)
	client.EXPECT().DeleteObject(gomock.Any(), "test-bucket", "u1/stuck.txt").
		Return(errors.New("connection reset"))
	client.EXPECT().DeleteObject(gomock.Any(), "test-bucket", "u1/fine.txt").Return(nil)

	s := newCleanupService(store, client)
	result, err := s.CleanupExpired(context.Background(), false)
	assert.NoError(t, err)

	// 存储删除失败的文件元数据保留，下个批次重试；其余文件不受影响
	assert.Equal(t, 1, result.FilesDeleted)
	assert.Len(t, result.Errors, 1)
	assert.Equal(t, []string{"f2"}, store.deleted)
}

func TestCleanupExpiredDryRunMatchesRealSelection(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := &fakeCleanupStore{expired: []models.FileMetadata{
		expiredFile("f1", "u1/a.txt", 100),
		expiredFile("f2", "u1/b.txt", 200),
	}}
	// dry_run不触发任何删除调用
	client := mocks.NewMockClientInterface(ctrl)

	s := newCleanupService(store, client)
	result, err := s.CleanupExpired(context.Background(), true)
	assert.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, 2, result.FilesProcessed)
	assert.Equal(t, 2, result.FilesDeleted)
	assert.Equal(t, int64(300), result.BytesFreed)
	assert.Empty(t, store.deleted)
}

func TestVerifyConsistencyReportsAllCategories(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := &fakeCleanupStore{all: []models.FileMetadata{
		{ID: "f1", StoragePath: "u1/present.txt", FileSize: 100},
		{ID: "f2", StoragePath: "u1/missing.txt", FileSize: 50},
		{ID: "f3", StoragePath: "u1/mismatch.txt", FileSize: 10},
	}}
	client := mocks.NewMockClientInterface(ctrl)
	client.EXPECT().ListObjects(gomock.Any(), "test-bucket", "", true).Return([]oss.ObjectInfo{
		{Key: "u1/present.txt", Size: 100},
		{Key: "u1/mismatch.txt", Size: 999},
		{Key: "u1/orphan.txt", Size: 42},
	}, nil)

	s := newCleanupService(store, client)
	report, err := s.VerifyConsistency(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"u1/orphan.txt"}, report.OrphanedObjects)
	assert.Equal(t, []string{"u1/missing.txt"}, report.MissingInStorage)
	assert.Len(t, report.SizeMismatches, 1)
	assert.Contains(t, report.SizeMismatches[0], "u1/mismatch.txt")
	assert.Empty(t, report.StorageError)
}

func TestVerifyConsistencyToleratesStorageListingFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := &fakeCleanupStore{all: []models.FileMetadata{
		{ID: "f1", StoragePath: "u1/a.txt", FileSize: 100},
	}}
	client := mocks.NewMockClientInterface(ctrl)
	client.EXPECT().ListObjects(gomock.Any(), "test-bucket", "", true).
		Return(nil, errors.New("bucket unavailable"))

	s := newCleanupService(store, client)
	report, err := s.VerifyConsistency(context.Background())

	// 列举失败返回部分结果，不整体失败
	assert.NoError(t, err)
	assert.NotEmpty(t, report.StorageError)
	assert.Empty(t, report.OrphanedObjects)
}

func TestCleanupOrphanedDeletesUnregisteredObjects(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := &fakeCleanupStore{all: []models.FileMetadata{
		{ID: "f1", StoragePath: "u1/known.txt", FileSize: 10},
	}}
	client := mocks.NewMockClientInterface(ctrl)
	client.EXPECT().ListObjects(gomock.Any(), "test-bucket", "", true).Return([]oss.ObjectInfo{
		{Key: "u1/known.txt", Size: 10},
		{Key: "u1/orphan.txt", Size: 20},
	}, nil)
	client.EXPECT().DeleteObject(gomock.Any(), "test-bucket", "u1/orphan.txt").Return(nil)

	s := newCleanupService(store, client)
	result, err := s.CleanupOrphaned(context.Background(), false)
	assert.NoError(t, err)
	assert.Equal(t, 1, result.FilesProcessed)
	assert.Equal(t, 1, result.FilesDeleted)
	assert.Equal(t, int64(20), result.BytesFreed)
	// 元数据行不受孤儿清理影响
	assert.Empty(t, store.deleted)
}

func TestCleanupOrphanedCarriesSideFindings(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := &fakeCleanupStore{all: []models.FileMetadata{
		{ID: "f1", StoragePath: "u1/missing.txt", FileSize: 50},
		{ID: "f2", StoragePath: "u1/mismatch.txt", FileSize: 10},
	}}
	client := mocks.NewMockClientInterface(ctrl)
	client.EXPECT().ListObjects(gomock.Any(), "test-bucket", "", true).Return([]oss.ObjectInfo{
		{Key: "u1/mismatch.txt", Size: 999},
		{Key: "u1/orphan.txt", Size: 42},
	}, nil)
	client.EXPECT().DeleteObject(gomock.Any(), "test-bucket", "u1/orphan.txt").Return(nil)

	s := newCleanupService(store, client)
	result, err := s.CleanupOrphaned(context.Background(), false)
	assert.NoError(t, err)

	// 核对阶段的附带发现随清理结果一并返回，释放空间按孤儿大小核算
	assert.Equal(t, 1, result.FilesDeleted)
	assert.Equal(t, int64(42), result.BytesFreed)
	assert.Equal(t, []string{"u1/missing.txt"}, result.MissingInStorage)
	assert.Len(t, result.SizeMismatches, 1)
	assert.Contains(t, result.SizeMismatches[0], "u1/mismatch.txt")
	assert.Empty(t, result.Errors)
}

func TestCleanupOrphanedSurfacesListingFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := &fakeCleanupStore{all: []models.FileMetadata{
		{ID: "f1", StoragePath: "u1/a.txt", FileSize: 100},
	}}
	client := mocks.NewMockClientInterface(ctrl)
	client.EXPECT().ListObjects(gomock.Any(), "test-bucket", "", true).
		Return(nil, errors.New("bucket unavailable"))

	s := newCleanupService(store, client)
	result, err := s.CleanupOrphaned(context.Background(), false)
	assert.NoError(t, err)

	// 列举失败不能与"没有孤儿"混淆，必须体现在错误列表里
	assert.Equal(t, 0, result.FilesProcessed)
	assert.Equal(t, 0, result.FilesDeleted)
	assert.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "bucket unavailable")
}

func TestCleanupCandidatesIsReadOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := &fakeCleanupStore{expiring: []models.FileMetadata{
		expiredFile("f1", "u1/soon.txt", 10),
	}}
	client := mocks.NewMockClientInterface(ctrl)

	s := newCleanupService(store, client)
	files, err := s.CleanupCandidates(7)
	assert.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Empty(t, store.deleted)
}
