package main

import (
	"document-service/common"
	"document-service/config"
	gormdb "document-service/database/gorm"
	"document-service/database/gorm/repositories"
	"document-service/dispatch"
	"document-service/lifecycle"
	"document-service/llm"
	log "document-service/log"
	"document-service/oss"
	"document-service/service"
	"document-service/vector"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/tmc/langchaingo/embeddings"
	"gorm.io/gorm"
)

type Initializer struct {
	config      *config.DocumentServiceConf
	db          *gorm.DB
	ossClient   oss.ClientInterface
	redisClient redis.Cmdable
	llmClient   llm.Client
	embedder    embeddings.Embedder

	taskRepo *repositories.TaskRepository
	fileRepo *repositories.FileMetadataRepository

	dispatcher     *dispatch.RedisDispatcher
	registry       *dispatch.Registry
	lifecycleMgr   *lifecycle.Manager
	taskService    *service.TaskService
	policyService  *service.StoragePolicyService
	cleanupService *service.StorageCleanupService
	fileService    *service.FileService
	searchService  *service.SearchService
}

func (i *Initializer) Init() error {
	// 1. 首先初始化配置
	if err := i.initConfig(); err != nil {
		return fmt.Errorf("failed to init config: %v", err)
	}

	// 2. 然后初始化日志（依赖配置）
	if err := i.initLogger(); err != nil {
		return fmt.Errorf("failed to init logger: %v", err)
	}

	// 3. 初始化gorm（依赖配置和日志）
	if err := i.initGorm(); err != nil {
		return fmt.Errorf("failed to init gorm: %v", err)
	}

	// 4. 初始化OSS并确保bucket存在
	if err := i.initOSS(); err != nil {
		return fmt.Errorf("failed to init OSS: %v", err)
	}

	// 5. 初始化Redis（任务队列与向量检索共用）
	if err := i.initRedis(); err != nil {
		return fmt.Errorf("failed to init redis: %v", err)
	}

	// 6. 初始化LLM能力（可选，未配置时解析/向量化任务会失败但服务可启动）
	i.initLLM()

	// 7. 组装服务与任务处理注册表
	if err := i.initServices(); err != nil {
		return fmt.Errorf("failed to init services: %v", err)
	}

	return nil
}

func (i *Initializer) initConfig() error {
	conf, err := config.LoadConfig()
	if err != nil {
		return err
	}
	i.config = conf
	return nil
}

func (i *Initializer) initLogger() error {
	if i.config == nil {
		return errors.New("config not initialized")
	}
	lc := i.config.LoggerConfig
	return log.InitLogger(log.Options{
		Level:      lc.Level,
		FilePath:   lc.FilePath,
		MaxSizeMB:  lc.MaxSizeMB,
		MaxBackups: lc.MaxBackups,
		MaxAgeDays: lc.MaxAgeDays,
		Compress:   lc.Compress,
	})
}

func (i *Initializer) initGorm() error {
	if i.config == nil {
		return errors.New("config not initialized")
	}
	db, err := gormdb.InitGormConnection(&i.config.Dbms)
	if err != nil {
		return err
	}
	i.db = db
	i.taskRepo = repositories.NewTaskRepository(db)
	i.fileRepo = repositories.NewFileMetadataRepository(db)
	return nil
}

func (i *Initializer) initOSS() error {
	factory := oss.NewOSSFactory(&i.config.OSSConfig)
	client, err := factory.NewOSSClient()
	if err != nil {
		return fmt.Errorf("failed to create OSS client: %v", err)
	}

	bucket := i.config.StorageConfig.Bucket
	if bucket == "" {
		bucket = common.DOCUMENT_BUCKET_NAME
	}
	if err := oss.InitializeBucket(client, bucket); err != nil {
		return err
	}

	i.ossClient = client
	return nil
}

func (i *Initializer) initRedis() error {
	client, err := dispatch.NewRedisClient(&i.config.RedisConfig)
	if err != nil {
		return err
	}
	i.redisClient = client
	return nil
}

// initLLM LLM与embedding是可选能力，配置缺失只降级告警
func (i *Initializer) initLLM() {
	llmClient, err := llm.NewClient(&i.config.LLMConfig)
	if err != nil {
		log.Logger.Warnf("LLM client not available, document parsing tasks will fail: %v", err)
	} else {
		i.llmClient = llmClient
	}

	if i.config.LLMConfig.EnableVectorization {
		embedder, err := llm.NewEmbedder(&i.config.LLMConfig)
		if err != nil {
			log.Logger.Warnf("Embedder not available, vectorization tasks will fail: %v", err)
		} else {
			i.embedder = embedder
		}
	}
}

func (i *Initializer) initServices() error {
	i.dispatcher = dispatch.NewRedisDispatcher(i.redisClient)
	i.lifecycleMgr = lifecycle.NewManager(i.taskRepo, &i.config.DispatchConfig)

	i.policyService = service.NewStoragePolicyService(i.fileRepo, &i.config.StorageConfig)
	i.cleanupService = service.NewStorageCleanupService(i.fileRepo, i.ossClient,
		&i.config.CleanupConfig, i.config.StorageConfig.Bucket)
	i.taskService = service.NewTaskService(i.taskRepo, i.dispatcher)
	i.fileService = service.NewFileService(i.fileRepo, i.ossClient, i.config.StorageConfig.Bucket)

	vectorStore := vector.NewRedisStore(i.redisClient)
	i.searchService = service.NewSearchService(i.embedder, vectorStore)
	handlers := service.NewTaskHandlers(i.taskRepo, i.policyService,
		i.cleanupService, i.ossClient, i.dispatcher, i.llmClient, i.embedder,
		vectorStore, i.config)
	handlers.OnCleanup = ObserveCleanup

	i.registry = dispatch.NewRegistry()
	if err := handlers.RegisterAll(i.registry); err != nil {
		return fmt.Errorf("failed to register task handlers: %v", err)
	}
	log.Logger.Infof("Registered task handlers: %v", i.registry.RegisteredTypes())
	return nil
}
