package main

import (
	"context"
	"document-service/common"
	"document-service/dispatch"
	"document-service/log"
	"document-service/service"
	"time"
)

// Schedule 启动所有定时任务
func Schedule(ctx context.Context, init *Initializer) {
	// 启动解压工作区清理任务
	go service.GetManager().StartCleanupTask(ctx)

	if !init.config.CleanupConfig.Enable {
		log.Logger.Info("Periodic cleanup is disabled")
		return
	}

	interval := time.Duration(init.config.CleanupConfig.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}

	// 周期性调度：补齐过期时间缺失的临时文件，并投递一个清理任务
	// 走正常的任务管道执行，清理结果落在任务记录里可查。
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := init.policyService.EnforcePolicies(); err != nil {
					log.Logger.Errorf("Scheduled policy enforcement failed: %v", err)
				}

				taskID, err := createCleanupTask(init)
				if err != nil {
					log.Logger.Errorf("Failed to create scheduled cleanup task: %v", err)
					continue
				}
				msg := &dispatch.Message{
					TaskID:   taskID,
					TaskType: common.TaskTypeCleanup,
					Payload: map[string]interface{}{
						"dry_run": init.config.CleanupConfig.DryRun,
					},
				}
				if err := init.dispatcher.Enqueue(ctx, msg); err != nil {
					log.Logger.Errorf("Failed to enqueue scheduled cleanup task: %v", err)
				}
			}
		}
	}()
}

func createCleanupTask(init *Initializer) (string, error) {
	task, err := init.taskService.CreateSystemTask(common.TaskTypeCleanup)
	if err != nil {
		return "", err
	}
	return task.ID, nil
}
