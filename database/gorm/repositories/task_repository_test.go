package repositories

import (
	"errors"
	"testing"

	"document-service/common"
	"document-service/database/gorm/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockRepo(t *testing.T) (*TaskRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("failed to open gorm: %v", err)
	}
	return NewTaskRepository(db), mock
}

func TestUpdateStatusTerminalSetsCompletedAt(t *testing.T) {
	repo, mock := newMockRepo(t)

	// completed写入completed_at
	mock.ExpectExec("UPDATE `t_document_service_tasks` SET `completed_at`=").
		WithArgs(sqlmock.AnyArg(), common.TaskStatusCompleted, sqlmock.AnyArg(), "task-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.UpdateStatus("task-1", common.TaskStatusCompleted, ""))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusNonTerminalSkipsCompletedAt(t *testing.T) {
	repo, mock := newMockRepo(t)

	// processing不写completed_at
	mock.ExpectExec("UPDATE `t_document_service_tasks` SET `status`=").
		WithArgs(common.TaskStatusProcessing, sqlmock.AnyArg(), "task-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.UpdateStatus("task-1", common.TaskStatusProcessing, ""))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelSkipsTerminalTasks(t *testing.T) {
	repo, mock := newMockRepo(t)

	// 条件更新命中1行：取消成功
	mock.ExpectExec("UPDATE `t_document_service_tasks` SET `status`=").
		WithArgs(common.TaskStatusCancelled, sqlmock.AnyArg(), "task-1",
			common.TaskStatusCompleted, common.TaskStatusFailed, common.TaskStatusCancelled).
		WillReturnResult(sqlmock.NewResult(0, 1))

	cancelled, err := repo.Cancel("task-1")
	assert.NoError(t, err)
	assert.True(t, cancelled)

	// 命中0行：任务已是终态
	mock.ExpectExec("UPDATE `t_document_service_tasks` SET `status`=").
		WithArgs(common.TaskStatusCancelled, sqlmock.AnyArg(), "task-2",
			common.TaskStatusCompleted, common.TaskStatusFailed, common.TaskStatusCancelled).
		WillReturnResult(sqlmock.NewResult(0, 0))

	cancelled, err = repo.Cancel("task-2")
	assert.NoError(t, err)
	assert.False(t, cancelled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRetryingIncrementsRetryCount(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE `t_document_service_tasks` SET `error_message`=.*`retry_count`=retry_count \\+ 1").
		WithArgs("Retry 1: boom", common.TaskStatusRetrying, sqlmock.AnyArg(), "task-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.MarkRetrying("task-1", "Retry 1: boom"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTasksWithFileCommitsTogether(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `t_document_service_tasks`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO `t_document_service_tasks`").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec("INSERT INTO `t_document_service_files`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tasks := []*models.Task{
		{ID: "child-1", TaskType: common.TaskTypeDocumentParsing, Status: common.TaskStatusPending},
		{ID: "child-2", TaskType: common.TaskTypeDocumentParsing, Status: common.TaskStatusPending},
	}
	file := &models.FileMetadata{ID: "file-1", OriginalFilename: "a.pdf"}

	assert.NoError(t, repo.CreateTasksWithFile(tasks, file))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTasksWithFileRollsBackOnFileError(t *testing.T) {
	repo, mock := newMockRepo(t)

	// 文件元数据写入失败时，子任务插入必须一并回滚
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `t_document_service_tasks`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO `t_document_service_files`").
		WillReturnError(errors.New("duplicate entry"))
	mock.ExpectRollback()

	tasks := []*models.Task{
		{ID: "child-1", TaskType: common.TaskTypeDocumentParsing, Status: common.TaskStatusPending},
	}
	file := &models.FileMetadata{ID: "file-1", OriginalFilename: "a.pdf"}

	err := repo.CreateTasksWithFile(tasks, file)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate entry")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStatus(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"status"}).AddRow("processing")
	mock.ExpectQuery("SELECT `status` FROM `t_document_service_tasks` WHERE id = ").
		WillReturnRows(rows)

	status, err := repo.GetStatus("task-1")
	assert.NoError(t, err)
	assert.Equal(t, common.TaskStatusProcessing, status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
