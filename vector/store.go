/*
*

	@author: shiliang
	@date: 2025/3/20
	@note: 向量库能力接口。实现可替换，当前提供Redis实现。

*
*/
package vector

import "context"

// Document 待入库的向量化文档分块
type Document struct {
	ID        string            `json:"id"`
	TaskID    string            `json:"task_id"`
	Content   string            `json:"content"`
	Embedding []float32         `json:"embedding"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Match 检索命中结果
type Match struct {
	ID       string            `json:"id"`
	Score    float64           `json:"score"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Store 向量库能力
type Store interface {
	// Upsert 批量写入文档，返回写入的文档ID
	Upsert(ctx context.Context, docs []Document) ([]string, error)
	// Search 按余弦相似度检索topK，filter按metadata精确匹配过滤
	Search(ctx context.Context, embedding []float32, topK int, filter map[string]string) ([]Match, error)
}
