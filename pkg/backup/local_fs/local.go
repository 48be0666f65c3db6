package local_fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/haierkeys/collab-doc-service/pkg/fileurl"

	"github.com/pkg/errors"
)

type Config struct {
	SavePath   string `yaml:"save-path" default:"storage/backups"`
	CustomPath string `yaml:"custom-path"`
}

type LocalFS struct {
	Config *Config
}

func NewClient(cf *Config) (*LocalFS, error) {
	if cf.SavePath == "" {
		cf.SavePath = "storage/backups"
	}
	return &LocalFS{Config: cf}, nil
}

// PutContent 写入备份内容到本地文件系统
func (p *LocalFS) PutContent(ctx context.Context, fileKey string, content []byte) (string, error) {
	fileKey = fileurl.PathSuffixCheckAdd(p.Config.CustomPath, "/") + fileKey
	fullPath := filepath.Join(p.Config.SavePath, fileKey)

	if err := fileurl.CreatePath(fullPath, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "local_fs")
	}
	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		return "", errors.Wrap(err, "local_fs")
	}
	return fileKey, nil
}

// DeleteFile 删除本地备份文件
func (p *LocalFS) DeleteFile(ctx context.Context, fileKey string) error {
	fileKey = fileurl.PathSuffixCheckAdd(p.Config.CustomPath, "/") + fileKey
	fullPath := filepath.Join(p.Config.SavePath, fileKey)

	if !fileurl.IsExist(fullPath) {
		return nil
	}
	if err := os.Remove(fullPath); err != nil {
		return errors.Wrap(err, "local_fs")
	}
	return nil
}
