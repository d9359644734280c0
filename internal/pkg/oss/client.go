package oss

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"github.com/qs3c/rollbowl_go_server/config"
)

const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Client struct {
	client     *oss.Client
	bucket     *oss.Bucket
	bucketName string
	cdnDomain  string
}

// Enabled 判断 OSS 是否已配置，未配置时报表落本地目录
func Enabled(cfg *config.OSSConfig) bool {
	return cfg != nil && cfg.Endpoint != "" && cfg.BucketName != ""
}

func NewClient(cfg *config.OSSConfig) (*Client, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}

	return &Client{
		client:     client,
		bucket:     bucket,
		bucketName: cfg.BucketName,
		cdnDomain:  cfg.CDNDomain,
	}, nil
}

// ReportObjectKey 厨房报表的对象路径，同一天多次生成互不覆盖
func ReportObjectKey(serviceDate string, at time.Time) string {
	return fmt.Sprintf("reports/%s/kitchen_%d.xlsx", serviceDate, at.Unix())
}

// UploadReport 上传厨房报表，返回访问 URL
func (c *Client) UploadReport(serviceDate string, data []byte) (string, error) {
	objectKey := ReportObjectKey(serviceDate, time.Now())

	err := c.bucket.PutObject(objectKey, bytes.NewReader(data), oss.ContentType(ContentTypeXLSX))
	if err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}

	return c.GetURL(objectKey), nil
}

// UploadReportWithRetry 带重试的上传，失败后按 1s、2s、4s 退避
func (c *Client) UploadReportWithRetry(serviceDate string, data []byte, maxRetries int) (string, error) {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			time.Sleep(time.Duration(1<<(i-1)) * time.Second)
		}
		url, err := c.UploadReport(serviceDate, data)
		if err == nil {
			return url, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("upload failed after %d retries: %w", maxRetries, lastErr)
}

// Delete 删除文件
func (c *Client) Delete(objectKey string) error {
	if err := c.bucket.DeleteObject(objectKey); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// GetURL 获取文件访问 URL
func (c *Client) GetURL(objectKey string) string {
	if c.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", c.cdnDomain, objectKey)
	}
	return fmt.Sprintf("https://%s.%s/%s", c.bucketName, c.client.Config.Endpoint, objectKey)
}

// GetSignedURL 生成带签名的临时下载地址，默认 1 小时有效
func (c *Client) GetSignedURL(objectKey string, expireSeconds int64) (string, error) {
	if expireSeconds <= 0 {
		expireSeconds = 3600
	}

	signedURL, err := c.bucket.SignURL(objectKey, oss.HTTPGet, expireSeconds)
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}
	return signedURL, nil
}

// ExtractObjectKey 从 URL 中提取 object key
func (c *Client) ExtractObjectKey(url string) string {
	return extractObjectKey(url, c.cdnDomain)
}

func extractObjectKey(url, cdnDomain string) string {
	if cdnDomain != "" {
		prefix := fmt.Sprintf("https://%s/", cdnDomain)
		if strings.HasPrefix(url, prefix) {
			return url[len(prefix):]
		}
	}

	// https://bucket.endpoint/reports/...
	parts := strings.Split(url, "/")
	if len(parts) >= 4 {
		return strings.Join(parts[3:], "/")
	}
	return path.Base(url)
}
