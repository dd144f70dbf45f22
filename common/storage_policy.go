package common

// StoragePolicy 文件存储策略
type StoragePolicy string

const (
	StoragePolicyPermanent StoragePolicy = "permanent" // 永久保存，无过期时间
	StoragePolicyTemporary StoragePolicy = "temporary" // 临时保存，到期由清理任务删除
)

// String 实现Stringer接口
func (p StoragePolicy) String() string {
	return string(p)
}

// IsValid 检查存储策略是否有效
func (p StoragePolicy) IsValid() bool {
	return p == StoragePolicyPermanent || p == StoragePolicyTemporary
}
