package oss

import (
	"document-service/log"
	"fmt"
)

// InitializeBucket 确保bucket存在，不存在时创建
func InitializeBucket(client ClientInterface, bucketName string) error {
	exists, err := client.BucketExists(bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %v", bucketName, err)
	}
	if exists {
		return nil
	}
	if err := client.MakeBucket(bucketName, ""); err != nil {
		return fmt.Errorf("failed to create bucket %s: %v", bucketName, err)
	}
	log.Logger.Infof("Created bucket %s", bucketName)
	return nil
}
