package main

import (
	"document-service/config"
	log "document-service/log"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	ginmetrics "github.com/penglongli/gin-metrics/ginmetrics"
)

const (
	labelServiceName = "service_name"
	labelSuccess     = "success"
	labelHandler     = "handler"

	serviceNameValue = "document-service"
)

var (
	// 使用Once确保只初始化一次
	initMetricsOnce sync.Once
	M               = ginmetrics.GetMonitor()
)

// getMetrics 返回本项目核心指标定义
func getMetrics() []*ginmetrics.Metric {
	return []*ginmetrics.Metric{
		// 任务处理
		{
			Type:        ginmetrics.Counter,
			Name:        "task_processed_total",
			Description: "Total number of processed tasks",
			Labels:      []string{labelServiceName, labelHandler, labelSuccess},
		},
		{
			Type:        ginmetrics.Gauge,
			Name:        "task_duration_seconds",
			Description: "Duration of task processing in seconds (last task)",
			Labels:      []string{labelServiceName, labelHandler, labelSuccess},
		},
		// 存储清理
		{
			Type:        ginmetrics.Counter,
			Name:        "cleanup_files_deleted_total",
			Description: "Total number of files deleted by cleanup",
			Labels:      []string{labelServiceName},
		},
		{
			Type:        ginmetrics.Gauge,
			Name:        "cleanup_bytes_freed",
			Description: "Bytes freed by the last cleanup batch",
			Labels:      []string{labelServiceName},
		},
	}
}

// MonitorMetric 启动监控服务（带 HTTP /metrics 端点和 /health 健康检查）
func MonitorMetric(conf *config.DocumentServiceConf) {
	if !conf.HttpServiceConfig.MonitorEnabled {
		log.Logger.Info("Monitor is disabled")
		return
	}

	initMetricsOnce.Do(func() {
		monitor := InitMonitorRouter()

		// 配置 gin-metrics
		M.SetMetricPath("/metrics")
		M.SetSlowTime(10)
		M.SetDuration([]float64{0.1, 0.3, 1.2, 5, 10})

		// 注册自定义指标
		for _, metric := range getMetrics() {
			if err := M.AddMetric(metric); err != nil {
				log.Logger.Errorf("Failed to add metric %s: %v", metric.Name, err)
				return
			}
		}

		// 使用 gin-metrics 中间件
		M.Use(monitor)

		// 启动监控服务
		endPoint := fmt.Sprintf(":%d", conf.HttpServiceConfig.MonitorPort)
		go func() {
			log.Logger.Infof("Starting monitor server on %s", endPoint)
			if err := monitor.Run(endPoint); err != nil {
				log.Logger.Errorf("Failed to start monitor server: %v", err)
			}
		}()
	})
}

// InitMonitorRouter 初始化监控路由（健康检查 + metrics）
func InitMonitorRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

// ObserveTask 记录一次任务处理的耗时与结果
func ObserveTask(handler string, start time.Time, success bool) {
	durSec := time.Since(start).Seconds()
	labels := []string{serviceNameValue, handler, fmt.Sprintf("%t", success)}

	if m := M.GetMetric("task_processed_total"); m != nil {
		m.Inc(labels)
	}
	if m := M.GetMetric("task_duration_seconds"); m != nil {
		m.SetGaugeValue(labels, durSec)
	}
}

// ObserveCleanup 记录一次清理批次的删除数与释放空间
func ObserveCleanup(filesDeleted int, bytesFreed int64) {
	labels := []string{serviceNameValue}
	if m := M.GetMetric("cleanup_files_deleted_total"); m != nil {
		for n := 0; n < filesDeleted; n++ {
			m.Inc(labels)
		}
	}
	if m := M.GetMetric("cleanup_bytes_freed"); m != nil {
		m.SetGaugeValue(labels, float64(bytesFreed))
	}
}
