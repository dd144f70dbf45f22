package llm

import (
	"document-service/common"
	"document-service/config"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// NewEmbedder 创建向量化使用的embedding客户端，提供方选择逻辑与NewClient一致
func NewEmbedder(conf *config.LLMConfig) (embeddings.Embedder, error) {
	model := conf.EmbeddingModel
	if model == "" {
		model = "text-embedding-3-small"
	}

	switch {
	case conf.Provider == "openai" || (conf.Provider == "" && conf.OpenAIAPIKey != ""):
		if conf.OpenAIAPIKey == "" {
			return nil, common.NewCodedErrorMsg(common.ErrCodeLLMNotConfigured,
				"missing config: llm.openai_api_key")
		}
		opts := []openai.Option{
			openai.WithToken(conf.OpenAIAPIKey),
			openai.WithEmbeddingModel(model),
		}
		if conf.OpenAIBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(conf.OpenAIBaseURL))
		}
		client, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai embedding client: %v", err)
		}
		return embeddings.NewEmbedder(client)

	case conf.Provider == "ollama" || (conf.Provider == "" && conf.OllamaHost != ""):
		if conf.OllamaHost == "" {
			return nil, common.NewCodedErrorMsg(common.ErrCodeLLMNotConfigured,
				"missing config: llm.ollama_host")
		}
		client, err := ollama.New(
			ollama.WithServerURL(conf.OllamaHost),
			ollama.WithModel(model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama embedding client: %v", err)
		}
		return embeddings.NewEmbedder(client)

	default:
		return nil, common.NewCodedErrorMsg(common.ErrCodeLLMNotConfigured,
			"no usable embedding provider: set llm.openai_api_key or llm.ollama_host")
	}
}
