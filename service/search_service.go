/*
*

	@author: shiliang
	@date: 2025/4/1
	@note: 语义检索服务。查询文本经embedding后在向量库中按
	      余弦相似度检索，可按metadata过滤限定范围。

*
*/
package service

import (
	"context"
	"document-service/common"
	"document-service/vector"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
)

// 检索topK的默认值与上限
const (
	defaultSearchTopK = 5
	maxSearchTopK     = 50
)

// SearchService 语义检索服务
type SearchService struct {
	embedder embeddings.Embedder // 未配置时为nil
	vectors  vector.Store
}

func NewSearchService(embedder embeddings.Embedder, vectors vector.Store) *SearchService {
	return &SearchService{embedder: embedder, vectors: vectors}
}

// Search 对查询文本做语义检索
func (s *SearchService) Search(ctx context.Context, query string, topK int, filter map[string]string) ([]vector.Match, error) {
	if strings.TrimSpace(query) == "" {
		return nil, common.NewCodedErrorMsg(common.ErrCodeInvalidParameterValue, "query must not be empty")
	}
	if s.embedder == nil {
		return nil, common.NewCodedErrorMsg(common.ErrCodeLLMNotConfigured,
			common.ErrCodeMessage[common.ErrCodeLLMNotConfigured])
	}
	if topK <= 0 {
		topK = defaultSearchTopK
	}
	if topK > maxSearchTopK {
		topK = maxSearchTopK
	}

	queryVec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, common.NewCodedError(common.ErrCodeEmbeddingFailed, err)
	}
	matches, err := s.vectors.Search(ctx, queryVec, topK, filter)
	if err != nil {
		return nil, common.NewCodedError(common.ErrCodeVectorStoreFailed, err)
	}
	return matches, nil
}
