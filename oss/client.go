/*
*

	@author: shiliang
	@date: 2025/3/10
	@note: OSS 客户端的请求选项与对象信息

*
*/
package oss

// GetOptions 下载对象时的可选参数
type GetOptions struct {
	ExtraHeaders map[string]string
	QueryParams  map[string]string
}

// PutOptions 上传对象时的可选参数
type PutOptions struct {
	ContentType string
}

// ObjectInfo 对象的基本信息，分页列举时逐条返回
type ObjectInfo struct {
	Key  string
	Size int64
}
