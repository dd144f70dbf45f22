/*
*

	@author: shiliang
	@date: 2025/3/6
	@note: 数据大小格式化工具函数

*
*/
package common

import "fmt"

// FormatBytes 将字节数格式化为人类可读的字符串
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
