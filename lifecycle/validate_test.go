package lifecycle

import (
	"document-service/common"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateInputCollectsAllMissingFields(t *testing.T) {
	payload := map[string]interface{}{
		"file_url": "s3://bucket/key",
		"empty":    "",
	}

	err := ValidateInput(payload, []string{"user_id", "file_url", "task_id", "empty"})
	assert.Error(t, err)

	// 缺失字段一次性全部列出且排序稳定
	assert.Contains(t, err.Error(), "missing required fields: [empty, task_id, user_id]")
	code, ok := common.GetErrorCode(err)
	assert.True(t, ok)
	assert.Equal(t, common.ErrCodeMissingParameter, code)
}

func TestValidateInputUUIDFields(t *testing.T) {
	tests := []struct {
		name     string
		payload  map[string]interface{}
		required []string
		wantCode int
	}{
		{
			name:     "valid uuid passes",
			payload:  map[string]interface{}{"task_id": "0f8fad5b-d9cb-469f-a165-70867728950e"},
			required: []string{"task_id"},
			wantCode: 0,
		},
		{
			name:     "malformed uuid",
			payload:  map[string]interface{}{"task_id": "not-a-uuid"},
			required: []string{"task_id"},
			wantCode: common.ErrCodeInvalidUUID,
		},
		{
			name:     "uuid field with wrong type",
			payload:  map[string]interface{}{"user_id": 12345},
			required: []string{"user_id"},
			wantCode: common.ErrCodeInvalidUUID,
		},
		{
			name:     "plain id field validated",
			payload:  map[string]interface{}{"id": "xyz"},
			required: []string{"id"},
			wantCode: common.ErrCodeInvalidUUID,
		},
		{
			name:     "non identifier field not uuid checked",
			payload:  map[string]interface{}{"filename": "not-a-uuid"},
			required: []string{"filename"},
			wantCode: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInput(tt.payload, tt.required)
			if tt.wantCode == 0 {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			code, ok := common.GetErrorCode(err)
			assert.True(t, ok)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestValidateInputMissingBeforeFormat(t *testing.T) {
	// 同时存在缺失与格式错误时先报缺失
	payload := map[string]interface{}{"task_id": "bad-uuid"}
	err := ValidateInput(payload, []string{"task_id", "user_id"})
	assert.Error(t, err)

	code, _ := common.GetErrorCode(err)
	assert.Equal(t, common.ErrCodeMissingParameter, code)
}
