/*
*

	@author: shiliang
	@date: 2025/3/31
	@note: 进程入口。初始化依赖后启动worker池、定时任务、监控与HTTP服务。

*
*/
package main

import (
	"context"
	"document-service/dispatch"
	log2 "document-service/log"
	"document-service/server/routes"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	defer log2.Sync()

	// 启动 pprof 服务器
	go func() {
		log2.Logger.Info(http.ListenAndServe("localhost:6060", nil))
	}()

	// 创建初始化器
	init := &Initializer{}
	// 执行初始化
	if err := init.Init(); err != nil {
		log2.Logger.Fatalf("Failed to initialize: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 启动worker池（含in-flight消息恢复与重试调度）
	pool := dispatch.NewWorkerPool(init.dispatcher, init.registry, init.lifecycleMgr,
		init.taskRepo, init.config.DispatchConfig.WorkerCount,
		init.config.DispatchConfig.MaxTasksPerWorker)
	pool.Observe = ObserveTask
	pool.Start(ctx)

	// 启动定时任务
	Schedule(ctx, init)

	// 启动监控服务
	MonitorMetric(init.config)

	// 启动业务HTTP服务
	engine := gin.New()
	engine.Use(gin.Recovery())
	router := routes.NewRouter(init.taskService, init.policyService, init.cleanupService,
		init.fileService, init.searchService)
	router.RegisterRoutes(engine)

	addr := fmt.Sprintf(":%d", init.config.HttpServiceConfig.Port)
	srv := &http.Server{Addr: addr, Handler: engine}
	go func() {
		log2.Logger.Infof("HTTP server running at %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log2.Logger.Fatalf("failed to serve: %v", err)
		}
	}()

	<-ctx.Done()
	log2.Logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log2.Logger.Errorf("HTTP server shutdown error: %v", err)
	}
}
