package dispatch

import (
	"context"
	"document-service/config"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// NewRedisClient 根据部署模式创建Redis连接
func NewRedisClient(conf *config.RedisConfig) (redis.Cmdable, error) {
	var client redis.Cmdable

	switch conf.ClusterType {
	case "sentinel":
		// 哨兵模式
		sentinelAddrs := strings.Split(conf.Address, ",")
		client = redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:    conf.SentinelMasterName,
			SentinelAddrs: sentinelAddrs,
			Password:      conf.Password,
			DB:            conf.DB,
			// 连接池配置
			PoolSize:           10,
			MinIdleConns:       5,
			MaxConnAge:         time.Hour,
			IdleTimeout:        5 * time.Minute,
			IdleCheckFrequency: time.Minute,
		})
	case "cluster":
		// 集群模式
		clusterAddrs := strings.Split(conf.Address, ",")
		client = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:    clusterAddrs,
			Password: conf.Password,
			// 连接池配置
			PoolSize:           10,
			MinIdleConns:       5,
			MaxConnAge:         time.Hour,
			IdleTimeout:        5 * time.Minute,
			IdleCheckFrequency: time.Minute,
		})
	default:
		// 单机模式
		client = redis.NewClient(&redis.Options{
			Addr:     conf.Address,
			Password: conf.Password,
			DB:       conf.DB,
			// 连接池配置
			PoolSize:           10,
			MinIdleConns:       5,
			MaxConnAge:         time.Hour,
			IdleTimeout:        5 * time.Minute,
			IdleCheckFrequency: time.Minute,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %v", conf.Address, err)
	}
	return client, nil
}
