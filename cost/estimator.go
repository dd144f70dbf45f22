/*
*

	@author: shiliang
	@date: 2025/3/14
	@note: LLM处理成本估算。点估计用于展示，最坏情况上界用于限额校验。

*
*/
package cost

import (
	"document-service/common"
	"fmt"
	"strings"
)

// Estimate 一次估算的结果，临时值不落库，每次校验重新计算
type Estimate struct {
	ModelName            string  `json:"model_name"`
	EstimatedInputTokens int     `json:"estimated_input_tokens"`
	TotalEstimatedTokens int     `json:"total_estimated_tokens"`
	EstimatedCostUSD     float64 `json:"estimated_cost_usd"`
	MaxPossibleCostUSD   float64 `json:"max_possible_cost_usd"`
}

// ModelPrice 每千token价格与最大输出token数
type ModelPrice struct {
	InputPerK       float64
	OutputPerK      float64
	MaxOutputTokens int
}

// 价格表。未知模型使用defaultPrice（取偏保守的价格）。
var modelPrices = map[string]ModelPrice{
	"gpt-4":         {InputPerK: 0.03, OutputPerK: 0.06, MaxOutputTokens: 4096},
	"gpt-4o":        {InputPerK: 0.005, OutputPerK: 0.015, MaxOutputTokens: 16384},
	"gpt-4o-mini":   {InputPerK: 0.00015, OutputPerK: 0.0006, MaxOutputTokens: 16384},
	"gpt-3.5-turbo": {InputPerK: 0.0005, OutputPerK: 0.0015, MaxOutputTokens: 4096},
	"qwen-plus":     {InputPerK: 0.0008, OutputPerK: 0.002, MaxOutputTokens: 8192},
	"llama3":        {InputPerK: 0, OutputPerK: 0, MaxOutputTokens: 8192},
}

var defaultPrice = ModelPrice{InputPerK: 0.03, OutputPerK: 0.06, MaxOutputTokens: 4096}

const (
	// 文本类内容约4字节一个token
	bytesPerToken = 4
	// 图片走多模态tokenizer，输入token下限明显更高
	imageBaseTokens = 1000
	textBaseTokens  = 200
	// 点估计使用的典型输出长度
	typicalOutputTokens = 500
)

var imageTypes = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true,
	"webp": true, "bmp": true, "tiff": true,
}

// Estimator 成本估算器
type Estimator struct {
	prices map[string]ModelPrice
}

func NewEstimator() *Estimator {
	return &Estimator{prices: modelPrices}
}

// Estimate 根据文件类型与大小估算token量与成本
func (e *Estimator) Estimate(modelName, fileType string, fileSizeBytes int64) (*Estimate, error) {
	if fileSizeBytes <= 0 {
		return nil, fmt.Errorf("invalid file size: %d", fileSizeBytes)
	}

	price, ok := e.prices[modelName]
	if !ok {
		price = defaultPrice
	}

	ft := strings.ToLower(strings.TrimPrefix(fileType, "."))
	var inputTokens int
	if imageTypes[ft] {
		inputTokens = imageBaseTokens + int(fileSizeBytes/2048)
	} else {
		inputTokens = textBaseTokens + int(fileSizeBytes/bytesPerToken)
	}

	totalTokens := inputTokens + typicalOutputTokens
	estimatedCost := float64(inputTokens)/1000*price.InputPerK +
		float64(typicalOutputTokens)/1000*price.OutputPerK
	// 上界按模型允许的最大输出长度计算，用于限额校验
	maxCost := float64(inputTokens)/1000*price.InputPerK +
		float64(price.MaxOutputTokens)/1000*price.OutputPerK

	return &Estimate{
		ModelName:            modelName,
		EstimatedInputTokens: inputTokens,
		TotalEstimatedTokens: totalTokens,
		EstimatedCostUSD:     estimatedCost,
		MaxPossibleCostUSD:   maxCost,
	}, nil
}

// ActualCost 按实际token用量计算成本
func (e *Estimator) ActualCost(modelName string, inputTokens, outputTokens int) float64 {
	price, ok := e.prices[modelName]
	if !ok {
		price = defaultPrice
	}
	return float64(inputTokens)/1000*price.InputPerK + float64(outputTokens)/1000*price.OutputPerK
}

// Validation 成本校验结果
type Validation struct {
	IsValid  bool      `json:"is_valid"`
	Error    string    `json:"error,omitempty"`
	Estimate *Estimate `json:"estimate,omitempty"`
}

// ValidateCost 按最坏情况上界做限额校验。
// 上界超限直接拒绝；估算本身失败时同样拒绝（fail closed），
// 不允许未经成本核算的任务继续执行。
func (e *Estimator) ValidateCost(modelName, fileType string, fileSizeBytes int64, maxCostLimit float64) *Validation {
	estimate, err := e.Estimate(modelName, fileType, fileSizeBytes)
	if err != nil {
		return &Validation{
			IsValid: false,
			Error:   fmt.Sprintf("%s: %v", common.ErrCodeMessage[common.ErrCodeCostEstimationFailed], err),
		}
	}

	if estimate.MaxPossibleCostUSD > maxCostLimit {
		return &Validation{
			IsValid: false,
			Error: fmt.Sprintf("max possible cost %.4f USD exceeds limit %.4f USD",
				estimate.MaxPossibleCostUSD, maxCostLimit),
			Estimate: estimate,
		}
	}

	return &Validation{IsValid: true, Estimate: estimate}
}
