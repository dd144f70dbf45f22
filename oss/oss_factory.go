/*
*

	@author: shiliang
	@date: 2025/3/10
	@note:

*
*/
package oss

import (
	"document-service/config"
	"fmt"
)

type OSSFactory struct {
	conf *config.OSSConfig
}

func NewOSSFactory(conf *config.OSSConfig) *OSSFactory {
	return &OSSFactory{conf: conf}
}

// NewOSSClient 根据传入的类型返回相应的 OSS 客户端实例
func (f *OSSFactory) NewOSSClient() (ClientInterface, error) {
	endpoint := fmt.Sprintf("%s:%d", f.conf.Host, f.conf.Port)
	switch f.conf.Type {
	case "minio":
		return NewMinIOClient(endpoint, f.conf.AccessKey, f.conf.SecretKey, false)
	default:
		return nil, fmt.Errorf("unsupported OSS type: %s", f.conf.Type)
	}
}
