/*
*

	@author: shiliang
	@date: 2025/3/26
	@note: 任务派发消息。关联ID与提交时间随消息本身传递，
	      而不是只出现在日志里，便于端到端还原执行链路。

*
*/
package dispatch

import (
	"document-service/common"
	"encoding/json"
	"time"
)

// Message 队列中流转的工作单元
type Message struct {
	TaskID        string                 `json:"task_id"`
	TaskType      common.TaskType        `json:"task_type"`
	CorrelationID string                 `json:"correlation_id"`
	SubmittedAt   time.Time              `json:"submitted_at"`
	Attempt       int                    `json:"attempt"`
	Payload       map[string]interface{} `json:"payload,omitempty"`
}

// Encode 序列化为队列存储格式
func (m *Message) Encode() (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeMessage 从队列存储格式反序列化
func DecodeMessage(raw string) (*Message, error) {
	var msg Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
