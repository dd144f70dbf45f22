/*
*

	@author: shiliang
	@date: 2025/3/10
	@note:

*
*/
package oss

import (
	"context"
	"document-service/log"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinIOClient struct {
	client *minio.Client
}

// NewMinIOClient 创建一个新的 MinIO 客户端
func NewMinIOClient(endpoint, accessKey, secretKey string, secure bool) (*MinIOClient, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %v", err)
	}
	return &MinIOClient{client: client}, nil
}

func (c *MinIOClient) GetObject(ctx context.Context, bucketName, objectName string, opts *GetOptions) (io.ReadCloser, error) {
	minioOpts := minio.GetObjectOptions{}

	if opts != nil {
		for key, value := range opts.ExtraHeaders {
			minioOpts.Set(key, value)
		}
		for key, value := range opts.QueryParams {
			minioOpts.AddReqParam(key, value)
		}
	}

	return c.client.GetObject(ctx, bucketName, objectName, minioOpts)
}

func (c *MinIOClient) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts *PutOptions) error {
	minioOpts := minio.PutObjectOptions{}
	if opts != nil {
		minioOpts.ContentType = opts.ContentType
	}
	_, err := c.client.PutObject(ctx, bucketName, objectName, reader, objectSize, minioOpts)
	return err
}

func (c *MinIOClient) StatObject(ctx context.Context, bucketName, objectName string) (*ObjectInfo, error) {
	info, err := c.client.StatObject(ctx, bucketName, objectName, minio.StatObjectOptions{})
	if err != nil {
		return nil, err
	}
	return &ObjectInfo{Key: info.Key, Size: info.Size}, nil
}

func (c *MinIOClient) BucketExists(bucketName string) (bool, error) {
	exists, err := c.client.BucketExists(context.Background(), bucketName)
	return exists, err
}

func (c *MinIOClient) MakeBucket(bucketName, location string) error {
	err := c.client.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{
		Region: location,
	})
	return err
}

// ListObjects 列出对象key与大小
func (c *MinIOClient) ListObjects(ctx context.Context, bucketName, prefix string, recursive bool) ([]ObjectInfo, error) {
	ch := c.client.ListObjects(ctx, bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: recursive,
	})
	var objects []ObjectInfo
	for obj := range ch {
		if obj.Err != nil {
			log.Logger.Errorf("failed to list objects in bucket %s with prefix %s: %v", bucketName, prefix, obj.Err)
			return nil, fmt.Errorf("failed to list objects in bucket %s with prefix %s: %v", bucketName, prefix, obj.Err)
		}
		if obj.Key != "" {
			objects = append(objects, ObjectInfo{Key: obj.Key, Size: obj.Size})
		}
	}
	return objects, nil
}

// DeleteObject 删除指定的对象
func (c *MinIOClient) DeleteObject(ctx context.Context, bucketName, objectName string) error {
	return c.client.RemoveObject(ctx, bucketName, objectName, minio.RemoveObjectOptions{})
}

func (c *MinIOClient) PresignedGetObject(bucketName, objectName string) (string, error) {
	// 将过期时间设置为 24 小时
	expiration := 24 * time.Hour
	presignedURL, err := c.client.PresignedGetObject(context.Background(), bucketName, objectName, expiration, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %v", err)
	}
	return presignedURL.String(), nil
}

// IsNotFound 判断错误是否为对象/桶不存在
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" || resp.StatusCode == 404
}
