package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/qs3c/rollbowl_go_server/internal/pkg/oss"
)

// LocalScheme 本地存储的报表 URL 前缀
const LocalScheme = "local://"

// ReportStorage 保存生成好的报表，返回下载地址
type ReportStorage interface {
	Save(ctx context.Context, serviceDate string, data []byte) (string, error)
}

// OSSStorage 报表上传到 OSS
type OSSStorage struct {
	client *oss.Client
}

func NewOSSStorage(client *oss.Client) *OSSStorage {
	return &OSSStorage{client: client}
}

func (s *OSSStorage) Save(_ context.Context, serviceDate string, data []byte) (string, error) {
	return s.client.UploadReport(serviceDate, data)
}

// LocalStorage OSS 未配置时报表写到本地目录
type LocalStorage struct {
	dir string
	now func() time.Time
}

func NewLocalStorage(dir string) *LocalStorage {
	return &LocalStorage{dir: dir, now: time.Now}
}

func (s *LocalStorage) Save(_ context.Context, serviceDate string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report dir: %w", err)
	}

	name := fmt.Sprintf("%s_%d.xlsx", serviceDate, s.now().UnixNano())
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0644); err != nil {
		return "", fmt.Errorf("failed to save report locally: %w", err)
	}
	return LocalScheme + name, nil
}

// LocalPath 把 local:// 地址还原为文件路径，非本地地址返回 false
func LocalPath(dir, fileURL string) (string, bool) {
	if !strings.HasPrefix(fileURL, LocalScheme) {
		return "", false
	}
	name := filepath.Base(strings.TrimPrefix(fileURL, LocalScheme))
	if name == "." || name == string(filepath.Separator) {
		return "", false
	}
	return filepath.Join(dir, name), true
}

// NewStorage OSS 可用时走 OSS，否则落本地
func NewStorage(client *oss.Client, dir string) ReportStorage {
	if client != nil {
		return NewOSSStorage(client)
	}
	return NewLocalStorage(dir)
}
