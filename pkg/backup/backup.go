// Package backup 提供文档备份归档的存储抽象
// 支持本地文件系统和 AWS S3 两种后端
package backup

import (
	"context"

	"github.com/haierkeys/collab-doc-service/pkg/backup/aws_s3"
	"github.com/haierkeys/collab-doc-service/pkg/backup/local_fs"

	"github.com/pkg/errors"
)

type Type = string

const LOCAL Type = "localfs"
const S3 Type = "s3"

var TypeMap = map[Type]bool{
	LOCAL: true,
	S3:    true,
}

// Config Unified backup storage configuration
// Config 统一备份存储配置
type Config struct {
	Type Type `yaml:"type" default:"localfs"`

	IsEnabled  bool   `yaml:"is-enable"`
	CustomPath string `yaml:"custom-path"`

	// Cloud Storage (S3)
	Region          string `yaml:"region"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`

	// Local FS
	SavePath string `yaml:"save-path" default:"storage/backups"`
}

// Uploader 备份上传接口
type Uploader interface {
	PutContent(ctx context.Context, fileKey string, content []byte) (string, error)
	DeleteFile(ctx context.Context, fileKey string) error
}

// NewClient 根据配置创建备份存储客户端
func NewClient(config *Config) (Uploader, error) {
	if config == nil {
		return nil, errors.New("backup: nil config")
	}

	switch config.Type {
	case LOCAL:
		return local_fs.NewClient(&local_fs.Config{
			SavePath:   config.SavePath,
			CustomPath: config.CustomPath,
		})
	case S3:
		return aws_s3.NewClient(&aws_s3.Config{
			Region:          config.Region,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
		})
	}
	return nil, errors.Errorf("backup: unsupported storage type %q", config.Type)
}
