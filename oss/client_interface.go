//go:generate mockgen -source=client_interface.go -destination=../mocks/mock_client_interface.go -package=mocks
/*
*

	@author: shiliang
	@date: 2025/3/10
	@note: OSS 客户端的基本操作接口

*
*/
package oss

import (
	"context"
	"io"
)

type ClientInterface interface {
	GetObject(ctx context.Context, bucketName, objectName string, opts *GetOptions) (io.ReadCloser, error)

	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts *PutOptions) error

	// StatObject 获取对象大小等信息，对象不存在时返回的错误满足IsNotFound
	StatObject(ctx context.Context, bucketName, objectName string) (*ObjectInfo, error)

	BucketExists(bucketName string) (bool, error)

	MakeBucket(bucketName, location string) error

	// ListObjects 列出指定前缀下的所有对象key与大小
	ListObjects(ctx context.Context, bucketName, prefix string, recursive bool) ([]ObjectInfo, error)

	DeleteObject(ctx context.Context, bucketName, objectName string) error

	PresignedGetObject(bucketName, objectName string) (string, error)
}
