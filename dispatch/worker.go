/*
*

	@author: shiliang
	@date: 2025/3/27
	@note: 任务执行worker。按优先级出队，在类型级超时约束下执行handler，
	      成功/失败统一交给lifecycle.Manager收口。消息确认发生在任务
	      处理完成之后（late-ack），确认失败不影响任务结果，只会导致
	      至少一次重复投递。

*
*/
package dispatch

import (
	"context"
	"document-service/common"
	"document-service/lifecycle"
	"document-service/log"
	"fmt"
	"time"
)

// idlePollInterval 所有队列为空时的轮询间隔
const idlePollInterval = time.Second

// StatusChecker worker出队后复核任务状态，已取消的任务直接丢弃
type StatusChecker interface {
	GetStatus(taskID string) (common.TaskStatus, error)
}

// TaskObserver 任务处理结果上报回调，可为nil
type TaskObserver func(taskType string, start time.Time, success bool)

// Worker 单个任务执行单元
type Worker struct {
	id           int
	dispatcher   *RedisDispatcher
	registry     *Registry
	lm           *lifecycle.Manager
	statuses     StatusChecker
	maxTaskCount int
	observe      TaskObserver
}

func NewWorker(id int, dispatcher *RedisDispatcher, registry *Registry, lm *lifecycle.Manager, statuses StatusChecker, maxTaskCount int) *Worker {
	if maxTaskCount <= 0 {
		maxTaskCount = 100
	}
	return &Worker{
		id:           id,
		dispatcher:   dispatcher,
		registry:     registry,
		lm:           lm,
		statuses:     statuses,
		maxTaskCount: maxTaskCount,
	}
}

// Run 处理循环。处理满maxTaskCount个任务后返回，由pool重建worker，
// 避免单个worker长期累积的资源泄漏扩散。
func (w *Worker) Run(ctx context.Context) {
	processed := 0
	for processed < w.maxTaskCount {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg, raw, err := w.dispatcher.Dequeue(ctx)
		if err != nil {
			log.Logger.Errorf("Worker %d dequeue error: %v", w.id, err)
			time.Sleep(idlePollInterval)
			continue
		}
		if msg == nil {
			time.Sleep(idlePollInterval)
			continue
		}

		w.process(ctx, msg, raw)
		processed++
	}
	log.Logger.Infof("Worker %d processed %d task(s), returning for restart", w.id, processed)
}

func (w *Worker) process(ctx context.Context, msg *Message, raw string) {
	// 处理完成后才确认，中途崩溃的消息由启动恢复流程重投
	defer func() {
		if err := w.dispatcher.Ack(ctx, msg.TaskType, raw); err != nil {
			log.Logger.Errorf("Failed to ack task %s: %v", msg.TaskID, err)
		}
	}()

	// 队列消息可能来自旧版本或被污染，先做最小校验
	if err := lifecycle.ValidateInput(map[string]interface{}{"task_id": msg.TaskID}, []string{"task_id"}); err != nil {
		log.Logger.Errorf("Dropping message with invalid task id %q: %v", msg.TaskID, err)
		return
	}

	// 出队与执行之间任务可能已被取消
	status, err := w.statuses.GetStatus(msg.TaskID)
	if err != nil {
		log.Logger.Errorf("Failed to load status for task %s: %v", msg.TaskID, err)
		return
	}
	if status == common.TaskStatusCancelled {
		log.Logger.Infof("Skipping cancelled task %s", msg.TaskID)
		return
	}

	ec := w.lm.Start(msg.TaskID, msg.TaskType, msg.CorrelationID, msg.Attempt)

	handler := w.registry.Resolve(msg.TaskType)
	if handler == nil {
		w.lm.Fail(ec, lifecycle.NewPermanentError(fmt.Sprintf("no handler for task type %s", msg.TaskType), nil))
		return
	}

	start := time.Now()
	taskCtx, cancel := context.WithTimeout(ctx, w.lm.TimeoutFor(msg.TaskType))
	results, actualCost, handlerErr := handler(taskCtx, ec, msg)
	cancel()
	if w.observe != nil {
		w.observe(string(msg.TaskType), start, handlerErr == nil)
	}

	if handlerErr == nil {
		w.lm.Succeed(ec, results, actualCost)
		return
	}

	outcome := w.lm.Fail(ec, handlerErr)
	if outcome.Retry {
		retryMsg := *msg
		retryMsg.Attempt = msg.Attempt + 1
		if err := w.dispatcher.ScheduleRetry(ctx, &retryMsg, outcome.Delay); err != nil {
			ec.Logger.Errorf("Failed to schedule retry: %v", err)
		}
	}
}

// WorkerPool 固定容量的worker池，worker退出后自动重建
type WorkerPool struct {
	dispatcher   *RedisDispatcher
	registry     *Registry
	lm           *lifecycle.Manager
	statuses     StatusChecker
	workerCount  int
	maxTaskCount int

	// Observe 可选的任务结果上报回调，须在Start之前设置
	Observe TaskObserver
}

func NewWorkerPool(dispatcher *RedisDispatcher, registry *Registry, lm *lifecycle.Manager, statuses StatusChecker, workerCount, maxTaskCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 4
	}
	return &WorkerPool{
		dispatcher:   dispatcher,
		registry:     registry,
		lm:           lm,
		statuses:     statuses,
		workerCount:  workerCount,
		maxTaskCount: maxTaskCount,
	}
}

// Start 启动worker池并回收遗留的in-flight消息
func (p *WorkerPool) Start(ctx context.Context) {
	p.dispatcher.RecoverProcessing(ctx)
	p.dispatcher.StartRetryScheduler(ctx)

	for i := 0; i < p.workerCount; i++ {
		go p.runWorkerLoop(ctx, i)
	}
	log.Logger.Infof("Started %d worker(s)", p.workerCount)
}

func (p *WorkerPool) runWorkerLoop(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		worker := NewWorker(id, p.dispatcher, p.registry, p.lm, p.statuses, p.maxTaskCount)
		worker.observe = p.Observe
		worker.Run(ctx)
	}
}
