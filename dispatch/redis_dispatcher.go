/*
*

	@author: shiliang
	@date: 2025/3/26
	@note: 基于Redis的任务派发通道。每个任务类型一个LIST队列，
	      按固定优先级顺序消费；出队用RPOPLPUSH转入processing列表，
	      任务完成后才确认删除（late-ack），worker崩溃后未确认的
	      消息可回收重投。延迟重试通过ZSET调度。

*
*/
package dispatch

import (
	"context"
	"document-service/common"
	"document-service/log"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	queueKeyPrefix      = "task:queue:"
	processingKeyPrefix = "task:processing:"
	retryZSetKey        = "task:retry"
)

// Dispatcher 任务派发能力
type Dispatcher interface {
	Enqueue(ctx context.Context, msg *Message) error
}

// RedisDispatcher Redis实现
type RedisDispatcher struct {
	client redis.Cmdable
}

var _ Dispatcher = (*RedisDispatcher)(nil)

func NewRedisDispatcher(client redis.Cmdable) *RedisDispatcher {
	return &RedisDispatcher{client: client}
}

func queueKey(taskType common.TaskType) string {
	return queueKeyPrefix + taskType.String()
}

func processingKey(taskType common.TaskType) string {
	return processingKeyPrefix + taskType.String()
}

// Enqueue 入队。关联ID与提交时间缺省时在这里补齐，随消息传递。
func (d *RedisDispatcher) Enqueue(ctx context.Context, msg *Message) error {
	if !msg.TaskType.IsValid() {
		return fmt.Errorf("cannot enqueue unknown task type: %s", msg.TaskType)
	}
	if msg.CorrelationID == "" {
		msg.CorrelationID = uuid.New().String()
	}
	if msg.SubmittedAt.IsZero() {
		msg.SubmittedAt = time.Now()
	}

	raw, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode message: %v", err)
	}
	if err := d.client.LPush(ctx, queueKey(msg.TaskType), raw).Err(); err != nil {
		return common.NewCodedError(common.ErrCodeTaskDispatchFailed, err)
	}
	return nil
}

// Dequeue 按优先级从高到低轮询各队列，取到的消息转入processing列表。
// 所有队列为空时返回nil。高优先级持续有任务时低优先级饥饿是接受的取舍。
func (d *RedisDispatcher) Dequeue(ctx context.Context) (*Message, string, error) {
	for _, taskType := range common.TaskTypesByPriority() {
		raw, err := d.client.RPopLPush(ctx, queueKey(taskType), processingKey(taskType)).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to dequeue from %s: %v", queueKey(taskType), err)
		}
		msg, err := DecodeMessage(raw)
		if err != nil {
			// 坏消息直接确认丢弃，避免毒化队列
			log.Logger.Errorf("Dropping malformed message from %s: %v", queueKey(taskType), err)
			d.client.LRem(ctx, processingKey(taskType), 1, raw)
			continue
		}
		return msg, raw, nil
	}
	return nil, "", nil
}

// Ack 任务完成后的确认，从processing列表移除
func (d *RedisDispatcher) Ack(ctx context.Context, taskType common.TaskType, raw string) error {
	return d.client.LRem(ctx, processingKey(taskType), 1, raw).Err()
}

// ScheduleRetry 按退避时长调度一次延迟重投
func (d *RedisDispatcher) ScheduleRetry(ctx context.Context, msg *Message, delay time.Duration) error {
	raw, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode retry message: %v", err)
	}
	score := float64(time.Now().Add(delay).Unix())
	return d.client.ZAdd(ctx, retryZSetKey, &redis.Z{Score: score, Member: raw}).Err()
}

// StartRetryScheduler 启动延迟重投调度协程，到期的消息移回原队列
func (d *RedisDispatcher) StartRetryScheduler(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				d.promoteDueRetries(ctx)
			}
		}
	}()
}

func (d *RedisDispatcher) promoteDueRetries(ctx context.Context) {
	now := fmt.Sprintf("%d", time.Now().Unix())
	members, err := d.client.ZRangeByScore(ctx, retryZSetKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: now,
	}).Result()
	if err != nil {
		log.Logger.Errorf("Failed to read retry schedule: %v", err)
		return
	}

	for _, raw := range members {
		msg, err := DecodeMessage(raw)
		if err != nil {
			log.Logger.Errorf("Dropping malformed retry entry: %v", err)
			d.client.ZRem(ctx, retryZSetKey, raw)
			continue
		}
		// 先移除再入队，移除失败说明已被其他实例处理
		removed, err := d.client.ZRem(ctx, retryZSetKey, raw).Result()
		if err != nil || removed == 0 {
			continue
		}
		if err := d.client.LPush(ctx, queueKey(msg.TaskType), raw).Err(); err != nil {
			log.Logger.Errorf("Failed to requeue retry for task %s: %v", msg.TaskID, err)
		}
	}
}

// RecoverProcessing 启动时回收processing列表中的遗留消息。
// worker崩溃后未确认的in-flight消息重新入队而不是丢失，
// 因此任务体必须满足至少一次语义（清理与删除操作按幂等设计）。
func (d *RedisDispatcher) RecoverProcessing(ctx context.Context) {
	for _, taskType := range common.TaskTypesByPriority() {
		recovered := 0
		for {
			raw, err := d.client.RPopLPush(ctx, processingKey(taskType), queueKey(taskType)).Result()
			if err == redis.Nil {
				break
			}
			if err != nil {
				log.Logger.Errorf("Failed to recover processing queue for %s: %v", taskType, err)
				break
			}
			_ = raw
			recovered++
		}
		if recovered > 0 {
			log.Logger.Infof("Recovered %d in-flight message(s) for queue %s", recovered, taskType)
		}
	}
}
