package service

import (
	"document-service/common"
	"document-service/config"
	"document-service/database/gorm/models"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// fakeFileStore 内存版文件元数据存储
type fakeFileStore struct {
	files         map[string]*models.FileMetadata
	missingExpiry []models.FileMetadata
	findErr       error
	updateErr     error
	updatedExpiry map[string]*time.Time
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{
		files:         make(map[string]*models.FileMetadata),
		updatedExpiry: make(map[string]*time.Time),
	}
}

func (f *fakeFileStore) FindByID(fileID string) (*models.FileMetadata, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	file, ok := f.files[fileID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return file, nil
}

func (f *fakeFileStore) FindTemporaryMissingExpiry() ([]models.FileMetadata, error) {
	return f.missingExpiry, nil
}

func (f *fakeFileStore) UpdatePolicy(fileID string, policy common.StoragePolicy, expiresAt *time.Time) (bool, error) {
	file, ok := f.files[fileID]
	if !ok {
		return false, nil
	}
	file.StoragePolicy = policy
	file.ExpiresAt = expiresAt
	return true, nil
}

func (f *fakeFileStore) UpdateExpiresAt(fileID string, expiresAt *time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updatedExpiry[fileID] = expiresAt
	if file, ok := f.files[fileID]; ok {
		file.ExpiresAt = expiresAt
	}
	return nil
}

func testStorageConfig() *config.StorageConfig {
	return &config.StorageConfig{
		DefaultPolicy:     "temporary",
		TTLHours:          72,
		MaxFileSize:       10 * 1024 * 1024,
		AllowedExtensions: []string{".txt", ".pdf", "csv"},
	}
}

func TestApplyPolicyPermanentHasNoExpiry(t *testing.T) {
	s := NewStoragePolicyService(newFakeFileStore(), testStorageConfig())

	policy, expiresAt, err := s.ApplyPolicy(common.StoragePolicyPermanent)
	assert.NoError(t, err)
	assert.Equal(t, common.StoragePolicyPermanent, policy)
	assert.Nil(t, expiresAt)
}

func TestApplyPolicyTemporarySetsTTL(t *testing.T) {
	s := NewStoragePolicyService(newFakeFileStore(), testStorageConfig())

	policy, expiresAt, err := s.ApplyPolicy(common.StoragePolicyTemporary)
	assert.NoError(t, err)
	assert.Equal(t, common.StoragePolicyTemporary, policy)
	assert.NotNil(t, expiresAt)

	want := time.Now().Add(72 * time.Hour)
	assert.WithinDuration(t, want, *expiresAt, time.Minute)
}

func TestApplyPolicyEmptyUsesDefault(t *testing.T) {
	s := NewStoragePolicyService(newFakeFileStore(), testStorageConfig())

	policy, expiresAt, err := s.ApplyPolicy("")
	assert.NoError(t, err)
	assert.Equal(t, common.StoragePolicyTemporary, policy)
	assert.NotNil(t, expiresAt)
}

func TestApplyPolicyRejectsUnknownPolicy(t *testing.T) {
	s := NewStoragePolicyService(newFakeFileStore(), testStorageConfig())

	_, _, err := s.ApplyPolicy(common.StoragePolicy("forever"))
	assert.Error(t, err)
	code, ok := common.GetErrorCode(err)
	assert.True(t, ok)
	assert.Equal(t, common.ErrCodeInvalidParameterValue, code)
}

func TestValidateUploadSizeCheckedBeforeExtension(t *testing.T) {
	s := NewStoragePolicyService(newFakeFileStore(), testStorageConfig())

	// 大小和扩展名都不合规时报大小错误
	err := s.ValidateUpload("huge.exe", 20*1024*1024)
	assert.Error(t, err)
	code, _ := common.GetErrorCode(err)
	assert.Equal(t, common.ErrCodeFileSizeLimit, code)

	err = s.ValidateUpload("small.exe", 100)
	assert.Error(t, err)
	code, _ = common.GetErrorCode(err)
	assert.Equal(t, common.ErrCodeFileTypeNotAllowed, code)

	// 扩展名配置带不带点都兼容
	assert.NoError(t, s.ValidateUpload("ok.txt", 100))
	assert.NoError(t, s.ValidateUpload("data.CSV", 100))
}

func TestUpdatePolicyMissingFileReturnsFalse(t *testing.T) {
	s := NewStoragePolicyService(newFakeFileStore(), testStorageConfig())

	found, err := s.UpdatePolicy("no-such-file", common.StoragePolicyPermanent)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestUpdatePolicySwitchesExpiry(t *testing.T) {
	store := newFakeFileStore()
	expiry := time.Now().Add(time.Hour)
	store.files["f1"] = &models.FileMetadata{
		ID:            "f1",
		StoragePolicy: common.StoragePolicyTemporary,
		ExpiresAt:     &expiry,
	}
	s := NewStoragePolicyService(store, testStorageConfig())

	found, err := s.UpdatePolicy("f1", common.StoragePolicyPermanent)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, common.StoragePolicyPermanent, store.files["f1"].StoragePolicy)
	assert.Nil(t, store.files["f1"].ExpiresAt)
}

func TestExtendTTLOnlyForTemporaryFiles(t *testing.T) {
	store := newFakeFileStore()
	expiry := time.Now().Add(time.Hour)
	store.files["tmp"] = &models.FileMetadata{
		ID: "tmp", StoragePolicy: common.StoragePolicyTemporary, ExpiresAt: &expiry,
	}
	store.files["perm"] = &models.FileMetadata{
		ID: "perm", StoragePolicy: common.StoragePolicyPermanent,
	}
	s := NewStoragePolicyService(store, testStorageConfig())

	extended, err := s.ExtendTTL("tmp", 24*time.Hour)
	assert.NoError(t, err)
	assert.True(t, extended)
	assert.WithinDuration(t, expiry.Add(24*time.Hour), *store.files["tmp"].ExpiresAt, time.Second)

	// permanent文件没有TTL可延长
	extended, err = s.ExtendTTL("perm", 24*time.Hour)
	assert.NoError(t, err)
	assert.False(t, extended)

	extended, err = s.ExtendTTL("missing", 24*time.Hour)
	assert.NoError(t, err)
	assert.False(t, extended)
}

func TestExtendTTLPropagatesStoreError(t *testing.T) {
	store := newFakeFileStore()
	store.findErr = errors.New("connection reset")
	s := NewStoragePolicyService(store, testStorageConfig())

	// 存储层错误不能伪装成"不存在"
	extended, err := s.ExtendTTL("f1", 24*time.Hour)
	assert.Error(t, err)
	assert.False(t, extended)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestEnforcePoliciesBackfillsMissingExpiry(t *testing.T) {
	store := newFakeFileStore()
	store.missingExpiry = []models.FileMetadata{
		{ID: "f1", StoragePolicy: common.StoragePolicyTemporary},
		{ID: "f2", StoragePolicy: common.StoragePolicyTemporary},
	}
	s := NewStoragePolicyService(store, testStorageConfig())

	result, err := s.EnforcePolicies()
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 2, result.Updated)
	assert.Empty(t, result.Errors)
	assert.NotNil(t, store.updatedExpiry["f1"])
	assert.NotNil(t, store.updatedExpiry["f2"])
}

func TestEnforcePoliciesContinuesOnError(t *testing.T) {
	store := newFakeFileStore()
	store.missingExpiry = []models.FileMetadata{{ID: "f1"}}
	store.updateErr = errors.New("db write failed")
	s := NewStoragePolicyService(store, testStorageConfig())

	result, err := s.EnforcePolicies()
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 0, result.Updated)
	assert.Len(t, result.Errors, 1)
}
