// Package fileurl 提供文件和路径相关的工具函数
package fileurl

import (
	"os"
	"path/filepath"
	"strings"
)

// IsFile 判断路径是否为文件
func IsFile(path string) bool {
	f, e := os.Stat(path)
	if e != nil {
		return false
	}
	return !f.IsDir()
}

// IsDir 判断路径是否为目录
func IsDir(path string) bool {
	s, err := os.Stat(path)
	if err != nil {
		return false
	}
	return s.IsDir()
}

// IsExist 判断文件或目录是否存在
func IsExist(dst string) bool {
	_, err := os.Stat(dst)
	return err == nil || os.IsExist(err)
}

// IsPermission 判断是否有权限访问
func IsPermission(dst string) bool {
	_, err := os.Stat(dst)
	return os.IsPermission(err)
}

// CreatePath 创建目标文件所在的目录
// dst: 目标文件路径
// perm: 目录权限
func CreatePath(dst string, perm os.FileMode) error {
	dir := filepath.Dir(dst)
	if IsExist(dir) {
		return nil
	}
	return os.MkdirAll(dir, perm)
}

// GetExePath 获取可执行文件所在目录
func GetExePath() string {
	exePath, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Dir(exePath)
}

// PathSuffixCheckAdd 确保路径以指定后缀结尾
func PathSuffixCheckAdd(path string, suffix string) string {
	if !strings.HasSuffix(path, suffix) {
		path = path + suffix
	}
	return path
}

// IsAbsPath 判断是否为绝对路径
func IsAbsPath(path string) bool {
	return filepath.IsAbs(path)
}

// GetAbsPath 获取路径的绝对形式，相对路径基于 root 解析
func GetAbsPath(path string, root string) (string, error) {
	if IsAbsPath(path) {
		return path, nil
	}
	if root == "" {
		return filepath.Abs(path)
	}
	return filepath.Join(root, path), nil
}
