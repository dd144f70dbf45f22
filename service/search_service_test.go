package service

import (
	"context"
	"document-service/common"
	"document-service/vector"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeEmbedder 返回固定向量的embedding实现
type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

// fakeVectorStore 记录检索参数并返回预置结果
type fakeVectorStore struct {
	gotTopK   int
	gotFilter map[string]string
	matches   []vector.Match
}

func (f *fakeVectorStore) Upsert(ctx context.Context, docs []vector.Document) ([]string, error) {
	return nil, nil
}

func (f *fakeVectorStore) Search(ctx context.Context, embedding []float32, topK int, filter map[string]string) ([]vector.Match, error) {
	f.gotTopK = topK
	f.gotFilter = filter
	return f.matches, nil
}

func TestSearchReturnsMatches(t *testing.T) {
	store := &fakeVectorStore{matches: []vector.Match{{ID: "d1", Score: 0.93, Content: "hello"}}}
	s := NewSearchService(&fakeEmbedder{vec: []float32{0.1, 0.2}}, store)

	matches, err := s.Search(context.Background(), "greeting", 3, map[string]string{"user_id": "u1"})
	assert.NoError(t, err)
	assert.Len(t, matches, 1)
	assert.Equal(t, "d1", matches[0].ID)
	assert.Equal(t, 3, store.gotTopK)
	assert.Equal(t, "u1", store.gotFilter["user_id"])
}

func TestSearchClampsTopK(t *testing.T) {
	store := &fakeVectorStore{}
	s := NewSearchService(&fakeEmbedder{vec: []float32{0.1}}, store)

	_, err := s.Search(context.Background(), "q", 0, nil)
	assert.NoError(t, err)
	assert.Equal(t, defaultSearchTopK, store.gotTopK)

	_, err = s.Search(context.Background(), "q", 500, nil)
	assert.NoError(t, err)
	assert.Equal(t, maxSearchTopK, store.gotTopK)
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	s := NewSearchService(&fakeEmbedder{}, &fakeVectorStore{})

	_, err := s.Search(context.Background(), "   ", 5, nil)
	assert.Error(t, err)
	code, _ := common.GetErrorCode(err)
	assert.Equal(t, common.ErrCodeInvalidParameterValue, code)
}

func TestSearchWithoutEmbedderIsCoded(t *testing.T) {
	s := NewSearchService(nil, &fakeVectorStore{})

	_, err := s.Search(context.Background(), "q", 5, nil)
	assert.Error(t, err)
	code, _ := common.GetErrorCode(err)
	assert.Equal(t, common.ErrCodeLLMNotConfigured, code)
}

func TestSearchEmbeddingFailureIsCoded(t *testing.T) {
	s := NewSearchService(&fakeEmbedder{err: errors.New("model offline")}, &fakeVectorStore{})

	_, err := s.Search(context.Background(), "q", 5, nil)
	assert.Error(t, err)
	code, _ := common.GetErrorCode(err)
	assert.Equal(t, common.ErrCodeEmbeddingFailed, code)
}
