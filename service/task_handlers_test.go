package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkText(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		size       int
		wantChunks int
	}{
		{"empty text", "", 10, 0},
		{"whitespace only", "   \n\t  ", 10, 0},
		{"single short chunk", "hello", 10, 1},
		{"exact boundary", strings.Repeat("a", 20), 10, 2},
		{"remainder chunk", strings.Repeat("a", 25), 10, 3},
		{"non positive size uses default", "short", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := ChunkText(tt.text, tt.size)
			assert.Len(t, chunks, tt.wantChunks)

			// 拼回去等于去除首尾空白的原文
			assert.Equal(t, strings.TrimSpace(tt.text), strings.Join(chunks, ""))
		})
	}
}

func TestChunkTextMultibyteSafe(t *testing.T) {
	text := strings.Repeat("文", 7)
	chunks := ChunkText(text, 3)

	assert.Len(t, chunks, 3)
	for _, chunk := range chunks {
		// 按rune切分，不会把多字节字符劈开
		assert.True(t, strings.HasPrefix(chunk, "文"))
	}
	assert.Equal(t, text, strings.Join(chunks, ""))
}
