package vector

import (
	"context"
	"document-service/log"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	docKeyPrefix = "vector:doc:"
	docSetKey    = "vector:docs"
)

// RedisStore 基于Redis的向量库实现。文档以JSON存储，
// 检索时全量拉取做余弦相似度排序，适用于中小规模文档集。
type RedisStore struct {
	client redis.Cmdable
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

// Upsert 批量写入文档
func (s *RedisStore) Upsert(ctx context.Context, docs []Document) ([]string, error) {
	ids := make([]string, 0, len(docs))
	pipe := s.client.Pipeline()
	for i := range docs {
		doc := docs[i]
		if doc.ID == "" {
			doc.ID = uuid.New().String()
		}
		payload, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal document %s: %v", doc.ID, err)
		}
		pipe.Set(ctx, docKeyPrefix+doc.ID, payload, 0)
		pipe.SAdd(ctx, docSetKey, doc.ID)
		ids = append(ids, doc.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to upsert documents: %v", err)
	}
	return ids, nil
}

// Search 余弦相似度检索
func (s *RedisStore) Search(ctx context.Context, embedding []float32, topK int, filter map[string]string) ([]Match, error) {
	ids, err := s.client.SMembers(ctx, docSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %v", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var matches []Match
	for _, id := range ids {
		raw, err := s.client.Get(ctx, docKeyPrefix+id).Result()
		if err == redis.Nil {
			continue // 集合与文档键不同步，跳过
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load document %s: %v", id, err)
		}
		var doc Document
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			log.Logger.Warnf("Failed to unmarshal vector document %s: %v", id, err)
			continue
		}
		if !MatchesFilter(doc.Metadata, filter) {
			continue
		}
		matches = append(matches, Match{
			ID:       doc.ID,
			Score:    CosineSimilarity(embedding, doc.Embedding),
			Content:  doc.Content,
			Metadata: doc.Metadata,
		})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// MatchesFilter 按metadata做精确匹配过滤，filter为空时全部通过
func MatchesFilter(metadata, filter map[string]string) bool {
	for k, v := range filter {
		if metadata[k] != v {
			return false
		}
	}
	return true
}

// CosineSimilarity 计算两个向量的余弦相似度，维度不一致或零向量返回0
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
