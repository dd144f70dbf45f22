package dispatch

import (
	"context"
	"document-service/common"
	"document-service/lifecycle"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func noopHandler(ctx context.Context, ec *lifecycle.ExecutionContext, msg *Message) (map[string]interface{}, *float64, error) {
	return nil, nil, nil
}

func TestRegistryRegisterAndResolve(t *testing.T) {
	r := NewRegistry()

	assert.NoError(t, r.Register(common.TaskTypeCleanup, noopHandler))
	assert.NotNil(t, r.Resolve(common.TaskTypeCleanup))
	assert.Nil(t, r.Resolve(common.TaskTypeDocumentParsing))
}

func TestRegistryRejectsDuplicateRegistration(t *testing.T) {
	r := NewRegistry()

	assert.NoError(t, r.Register(common.TaskTypeCleanup, noopHandler))
	err := r.Register(common.TaskTypeCleanup, noopHandler)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistryRejectsInvalidTaskType(t *testing.T) {
	r := NewRegistry()

	err := r.Register(common.TaskType("bogus"), noopHandler)
	assert.Error(t, err)
}

func TestRegistryRegisteredTypesSorted(t *testing.T) {
	r := NewRegistry()
	assert.NoError(t, r.Register(common.TaskTypeVectorization, noopHandler))
	assert.NoError(t, r.Register(common.TaskTypeArchiveProcessing, noopHandler))

	types := r.RegisteredTypes()
	assert.Equal(t, []common.TaskType{common.TaskTypeArchiveProcessing, common.TaskTypeVectorization}, types)
}

func TestMessageEncodeDecode(t *testing.T) {
	msg := &Message{
		TaskID:        "0f8fad5b-d9cb-469f-a165-70867728950e",
		TaskType:      common.TaskTypeArchiveProcessing,
		CorrelationID: "corr-1",
		SubmittedAt:   time.Now().UTC().Truncate(time.Second),
		Attempt:       2,
		Payload:       map[string]interface{}{"dry_run": true},
	}

	raw, err := msg.Encode()
	assert.NoError(t, err)

	decoded, err := DecodeMessage(raw)
	assert.NoError(t, err)
	assert.Equal(t, msg.TaskID, decoded.TaskID)
	assert.Equal(t, msg.TaskType, decoded.TaskType)
	assert.Equal(t, msg.Attempt, decoded.Attempt)
	assert.Equal(t, true, decoded.Payload["dry_run"])
}

func TestDecodeMessageRejectsGarbage(t *testing.T) {
	_, err := DecodeMessage("{not json")
	assert.Error(t, err)
}
