/*
*

	@author: shiliang
	@date: 2025/3/24
	@note: 任务生命周期管理。pending→processing→{completed,failed}，
	      processing→retrying→processing（受最大重试次数约束），
	      任意状态→cancelled（外部触发）。每次执行使用独立的执行上下文，
	      不在handler实例上共享可变状态。

*
*/
package lifecycle

import (
	"document-service/common"
	"document-service/config"
	"document-service/log"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// TaskStore 生命周期管理依赖的任务持久化操作
type TaskStore interface {
	UpdateStatus(taskID string, status common.TaskStatus, errorMsg string) error
	MarkCompleted(taskID string, results map[string]interface{}, processingTime float64, actualCost *float64) error
	MarkFailed(taskID string, errorMsg string, errorDetails map[string]interface{}, processingTime float64) error
	MarkRetrying(taskID string, errorMsg string) error
}

// ExecutionContext 单次任务执行的上下文。每次执行新建一份，
// 同一handler的并发执行之间不共享，日志上下文随调用链传递。
type ExecutionContext struct {
	TaskID        string
	TaskType      common.TaskType
	CorrelationID string
	Attempt       int
	StartTime     time.Time
	Logger        *zap.SugaredLogger
}

// Outcome 失败处理的结论
type Outcome struct {
	Retry bool          // 是否应重新入队
	Delay time.Duration // 重新入队前的退避时长
	Final bool          // 是否已写入终态
}

// Manager 任务生命周期管理器
type Manager struct {
	tasks          TaskStore
	maxRetries     int
	backoff        time.Duration
	defaultTimeout time.Duration
	timeouts       map[common.TaskType]time.Duration
}

// NewManager 创建生命周期管理器，超时表按任务类型查找，未知类型用通用默认值
func NewManager(tasks TaskStore, conf *config.DispatchConfig) *Manager {
	maxRetries := conf.MaxRetries
	if maxRetries <= 0 {
		maxRetries = common.MAX_RETRY_COUNT
	}
	backoff := time.Duration(conf.RetryBackoffSeconds) * time.Second
	if backoff <= 0 {
		backoff = common.DEFAULT_RETRY_BACKOFF
	}
	defaultTimeout := time.Duration(conf.ProcessingTimeoutSeconds) * time.Second
	if defaultTimeout <= 0 {
		defaultTimeout = common.DEFAULT_PROCESSING_TIMEOUT
	}

	// 类型级超时表，新增任务类型时在这里登记
	timeouts := map[common.TaskType]time.Duration{
		common.TaskTypeArchiveProcessing: defaultTimeout,
		common.TaskTypeDocumentParsing:   defaultTimeout,
		common.TaskTypeVectorization:     defaultTimeout / 2,
		common.TaskTypeCleanup:           common.CLEANUP_TIMEOUT,
	}

	return &Manager{
		tasks:          tasks,
		maxRetries:     maxRetries,
		backoff:        backoff,
		defaultTimeout: defaultTimeout,
		timeouts:       timeouts,
	}
}

// MaxRetries 返回最大重试次数
func (m *Manager) MaxRetries() int { return m.maxRetries }

// TimeoutFor 返回任务类型对应的处理超时上限
func (m *Manager) TimeoutFor(taskType common.TaskType) time.Duration {
	if t, ok := m.timeouts[taskType]; ok {
		return t
	}
	return m.defaultTimeout
}

// Start 开始执行：pending→processing，记录开始时间并绑定日志上下文。
// 状态持久化失败只记录日志，不阻止任务执行。
func (m *Manager) Start(taskID string, taskType common.TaskType, correlationID string, attempt int) *ExecutionContext {
	ec := &ExecutionContext{
		TaskID:        taskID,
		TaskType:      taskType,
		CorrelationID: correlationID,
		Attempt:       attempt,
		StartTime:     time.Now(),
		Logger: log.Logger.With(
			"task_id", taskID,
			"task_type", taskType.String(),
			"correlation_id", correlationID,
			"attempt", attempt,
		),
	}

	if err := m.tasks.UpdateStatus(taskID, common.TaskStatusProcessing, ""); err != nil {
		ec.Logger.Errorf("Failed to persist processing status: %v", err)
	}
	ec.Logger.Infof("Task started")
	return ec
}

// Succeed 成功收口：processing→completed，写入结果与处理耗时。
// 持久化失败只记录日志，不向上抛出。
func (m *Manager) Succeed(ec *ExecutionContext, results map[string]interface{}, actualCost *float64) {
	processingTime := time.Since(ec.StartTime).Seconds()
	if err := m.tasks.MarkCompleted(ec.TaskID, results, processingTime, actualCost); err != nil {
		ec.Logger.Errorf("Failed to persist completed status: %v", err)
		return
	}
	ec.Logger.Infof("Task completed in %.2fs", processingTime)
}

// Fail 失败收口。可重试且未用尽重试预算时转retrying并返回重试结论；
// 否则写入终态failed，error_details带is_final_failure标记与堆栈。
// 任何终态failed（包括不可重试的立即失败）都带is_final_failure。
// 记录失败本身失败时只打日志，绝不让二次故障压垮worker或掩盖原始错误。
func (m *Manager) Fail(ec *ExecutionContext, taskErr error) Outcome {
	classified := Classify(taskErr)
	processingTime := time.Since(ec.StartTime).Seconds()

	if classified.Retryable() && ec.Attempt < m.maxRetries {
		retryMsg := fmt.Sprintf("Retry %d: %s", ec.Attempt+1, classified.Error())
		if err := m.tasks.MarkRetrying(ec.TaskID, retryMsg); err != nil {
			ec.Logger.Errorf("Failed to persist retrying status: %v", err)
		}
		ec.Logger.Warnf("Task failed, will retry after %s: %v", m.backoff, classified)
		return Outcome{Retry: true, Delay: m.backoff}
	}

	details := map[string]interface{}{
		"is_final_failure": true,
		"retryable":        classified.Retryable(),
		"attempts":         ec.Attempt + 1,
		"stack_trace":      fmt.Sprintf("%+v", errors.WithStack(classified)),
	}
	if err := m.tasks.MarkFailed(ec.TaskID, classified.Error(), details, processingTime); err != nil {
		ec.Logger.Errorf("Failed to persist failed status: %v", err)
	}
	ec.Logger.Errorf("Task failed permanently after %d attempt(s): %v", ec.Attempt+1, classified)
	return Outcome{Final: true}
}
