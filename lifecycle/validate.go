package lifecycle

import (
	"document-service/common"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ValidateInput 校验任务载荷的必填字段。
// 缺失字段一次性全部列出，而不是在第一个缺失处停下；
// 约定以id结尾的字段必须是合法UUID，格式错误与缺失是可区分的两类错误。
func ValidateInput(payload map[string]interface{}, required []string) error {
	var missing []string
	for _, field := range required {
		v, ok := payload[field]
		if !ok || v == nil || v == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return common.NewCodedErrorMsg(common.ErrCodeMissingParameter,
			fmt.Sprintf("missing required fields: [%s]", strings.Join(missing, ", ")))
	}

	for _, field := range required {
		if !isIdentifierField(field) {
			continue
		}
		s, ok := payload[field].(string)
		if !ok {
			return common.NewCodedErrorMsg(common.ErrCodeInvalidUUID,
				fmt.Sprintf("field %s must be a uuid string", field))
		}
		if _, err := uuid.Parse(s); err != nil {
			return common.NewCodedErrorMsg(common.ErrCodeInvalidUUID,
				fmt.Sprintf("invalid uuid format for field %s: %q", field, s))
		}
	}
	return nil
}

func isIdentifierField(field string) bool {
	return field == "id" || strings.HasSuffix(field, "_id")
}
