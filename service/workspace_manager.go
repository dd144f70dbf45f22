/*
*

	@author: shiliang
	@date: 2025/3/30
	@note: 管理解压工作区目录的创建和清理。活跃目录登记在内存里，
	      定时清理只回收超龄且未登记的残留目录，避免误删正在
	      解压中的工作区。

*
*/
package service

import (
	"context"
	"document-service/common"
	"document-service/log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// 残留工作区的回收周期与超龄门槛
const (
	workspaceSweepInterval = 1 * time.Hour
	workspaceStaleAge      = 6 * time.Hour
)

// TempFileManager 管理解压工作区目录的创建和清理
type TempFileManager struct {
	root       string
	activeDirs sync.Map // 记录活跃的工作区目录
}

var (
	manager = &TempFileManager{root: common.DATA_DIR}
	once    sync.Once
)

// GetManager 获取单例的 TempFileManager
func GetManager() *TempFileManager {
	once.Do(func() {
		// 确保工作区根目录存在
		if err := os.MkdirAll(manager.root, 0755); err != nil {
			log.Logger.Errorf("Failed to create workspace directory: %v", err)
		}
	})
	return manager
}

// CreateWorkspace 创建解压工作区目录并记录
func (m *TempFileManager) CreateWorkspace() (string, error) {
	if err := os.MkdirAll(m.root, 0755); err != nil {
		return "", err
	}
	dir, err := os.MkdirTemp(m.root, "extract_*")
	if err != nil {
		return "", err
	}

	m.activeDirs.Store(dir, true)
	log.Logger.Debugf("Created workspace: %s", dir)
	return dir, nil
}

// ReleaseWorkspace 释放并删除工作区目录
func (m *TempFileManager) ReleaseWorkspace(dir string) {
	m.activeDirs.Delete(dir)
	if err := os.RemoveAll(dir); err != nil {
		log.Logger.Errorf("Failed to remove workspace %s: %v", dir, err)
		return
	}
	log.Logger.Debugf("Released workspace: %s", dir)
}

// IsWorkspaceActive 检查工作区是否在使用中
func (m *TempFileManager) IsWorkspaceActive(dir string) bool {
	_, exists := m.activeDirs.Load(dir)
	return exists
}

// StartCleanupTask 启动清理任务
func (m *TempFileManager) StartCleanupTask(ctx context.Context) {
	log.Logger.Info("Starting workspace cleanup task")
	ticker := time.NewTicker(workspaceSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.cleanupStaleWorkspaces()
		}
	}
}

// cleanupStaleWorkspaces 清理遗留的工作区目录。
// worker崩溃可能留下未释放的目录，只清理超龄且不在使用中的。
func (m *TempFileManager) cleanupStaleWorkspaces() {
	log.Logger.Info("Running workspace cleanup cycle")
	entries, err := os.ReadDir(m.root)
	if err != nil {
		log.Logger.Errorf("Failed to read workspace directory: %v", err)
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "extract_") {
			continue
		}
		dir := filepath.Join(m.root, entry.Name())

		// 检查目录是否在使用中
		if m.IsWorkspaceActive(dir) {
			log.Logger.Debugf("Workspace %s is still active, skipping", dir)
			continue
		}

		info, err := entry.Info()
		if err != nil {
			log.Logger.Errorf("Failed to stat workspace %s: %v", dir, err)
			continue
		}

		if time.Since(info.ModTime()) < workspaceStaleAge {
			log.Logger.Debugf("Skipping recent workspace: %s", dir)
			continue
		}

		if err := os.RemoveAll(dir); err != nil {
			log.Logger.Errorf("Failed to remove stale workspace %s: %v", dir, err)
		} else {
			log.Logger.Infof("Cleaned up stale workspace: %s", dir)
		}
	}
	log.Logger.Info("Completed workspace cleanup cycle")
}
