/*
*

	@author: shiliang
	@date: 2025/3/18
	@note: LLM能力封装。提供方可互换（openai兼容接口 / ollama），
	      由配置选择，未显式指定时按openai、ollama的顺序取第一个可用的。

*
*/
package llm

import (
	"context"
	"document-service/common"
	"document-service/config"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// Usage 一次调用的token用量
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Client LLM能力接口
type Client interface {
	// Complete 执行一次补全，返回内容与token用量
	Complete(ctx context.Context, prompt string) (string, Usage, error)
	// ModelName 返回使用的模型名
	ModelName() string
}

type langchainClient struct {
	model llms.Model
	name  string
}

// 编译期接口断言
var _ Client = (*langchainClient)(nil)

func (c *langchainClient) ModelName() string {
	return c.name
}

func (c *langchainClient) Complete(ctx context.Context, prompt string) (string, Usage, error) {
	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeHuman, prompt),
	}
	resp, err := c.model.GenerateContent(ctx, messages)
	if err != nil {
		return "", Usage{}, common.NewCodedError(common.ErrCodeLLMRequestFailed, err)
	}
	if len(resp.Choices) == 0 {
		return "", Usage{}, common.NewCodedErrorMsg(common.ErrCodeLLMRequestFailed, "llm returned no choices")
	}

	choice := resp.Choices[0]
	return choice.Content, usageFromGenerationInfo(choice.GenerationInfo), nil
}

func usageFromGenerationInfo(info map[string]any) Usage {
	usage := Usage{}
	if v, ok := info["PromptTokens"].(int); ok {
		usage.InputTokens = v
	}
	if v, ok := info["CompletionTokens"].(int); ok {
		usage.OutputTokens = v
	}
	if v, ok := info["TotalTokens"].(int); ok {
		usage.TotalTokens = v
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	return usage
}

// NewClient 根据配置创建LLM客户端。
// provider显式指定时缺配置直接报错并指明缺的配置项；
// 未指定时按优先级选择第一个配置可用的提供方。
func NewClient(conf *config.LLMConfig) (Client, error) {
	switch conf.Provider {
	case "openai":
		return newOpenAIClient(conf)
	case "ollama":
		return newOllamaClient(conf)
	case "":
		if conf.OpenAIAPIKey != "" {
			return newOpenAIClient(conf)
		}
		if conf.OllamaHost != "" {
			return newOllamaClient(conf)
		}
		return nil, common.NewCodedErrorMsg(common.ErrCodeLLMNotConfigured,
			"no usable llm provider: set llm.openai_api_key or llm.ollama_host")
	default:
		return nil, common.NewCodedErrorMsg(common.ErrCodeLLMNotConfigured,
			fmt.Sprintf("unknown llm provider: %s", conf.Provider))
	}
}

func newOpenAIClient(conf *config.LLMConfig) (Client, error) {
	if conf.OpenAIAPIKey == "" {
		return nil, common.NewCodedErrorMsg(common.ErrCodeLLMNotConfigured,
			"missing config: llm.openai_api_key")
	}
	opts := []openai.Option{
		openai.WithToken(conf.OpenAIAPIKey),
		openai.WithModel(conf.ModelName),
	}
	if conf.OpenAIBaseURL != "" {
		opts = append(opts, openai.WithBaseURL(conf.OpenAIBaseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %v", err)
	}
	return &langchainClient{model: model, name: conf.ModelName}, nil
}

func newOllamaClient(conf *config.LLMConfig) (Client, error) {
	if conf.OllamaHost == "" {
		return nil, common.NewCodedErrorMsg(common.ErrCodeLLMNotConfigured,
			"missing config: llm.ollama_host")
	}
	model, err := ollama.New(
		ollama.WithServerURL(conf.OllamaHost),
		ollama.WithModel(conf.ModelName),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %v", err)
	}
	return &langchainClient{model: model, name: conf.ModelName}, nil
}
