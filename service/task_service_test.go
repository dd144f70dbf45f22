package service

import (
	"context"
	"document-service/common"
	"document-service/database/gorm/repositories"
	"document-service/dispatch"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeDispatcher 记录入队消息的Dispatcher实现
type fakeDispatcher struct {
	enqueued []*dispatch.Message
}

func (f *fakeDispatcher) Enqueue(ctx context.Context, msg *dispatch.Message) error {
	f.enqueued = append(f.enqueued, msg)
	return nil
}

func TestCreateTasksRejectsEmptyFileList(t *testing.T) {
	d := &fakeDispatcher{}
	s := NewTaskService(repositories.NewTaskRepository(nil), d)

	_, err := s.CreateTasks(context.Background(), "u1", nil, common.TaskTypeArchiveProcessing, nil)
	assert.Error(t, err)
	code, ok := common.GetErrorCode(err)
	assert.True(t, ok)
	assert.Equal(t, common.ErrCodeFileListEmpty, code)
	// 校验失败时不得有任何消息入队
	assert.Empty(t, d.enqueued)
}

func TestCreateTasksRejectsUnknownType(t *testing.T) {
	d := &fakeDispatcher{}
	s := NewTaskService(repositories.NewTaskRepository(nil), d)

	_, err := s.CreateTasks(context.Background(), "u1", []string{"u1/a.zip"}, common.TaskType("transcoding"), nil)
	assert.Error(t, err)
	code, _ := common.GetErrorCode(err)
	assert.Equal(t, common.ErrCodeTaskTypeNotSupported, code)
	assert.Empty(t, d.enqueued)
}
