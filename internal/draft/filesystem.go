package draft

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore 文件系统存储，每个键一个 JSON 文件
//
// 目录结构: {basePath}/{hex(key)}.json
type FileStore struct {
	basePath string
}

// NewFileStore 创建文件系统存储实例
func NewFileStore(basePath string) (*FileStore, error) {
	if basePath == "" {
		return nil, fmt.Errorf("drafts path is empty")
	}
	// 检查路径遍历
	if strings.Contains(basePath, "..") {
		return nil, fmt.Errorf("invalid drafts path: path traversal detected: %s", basePath)
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("invalid drafts path: %w", err)
	}
	absPath = filepath.Clean(absPath)

	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create drafts directory: %w", err)
	}

	return &FileStore{basePath: absPath}, nil
}

// Path 返回存储根目录
func (s *FileStore) Path() string {
	return s.basePath
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	file, err := s.file(key)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read draft: %w", err)
	}
	return data, true, nil
}

// Set 先写临时文件再重命名，读取方不会看到写了一半的草稿
func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	file, err := s.file(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.basePath, ".draft-*")
	if err != nil {
		return fmt.Errorf("failed to create temp draft file: %w", err)
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write draft: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write draft: %w", err)
	}
	if err := os.Rename(tmp.Name(), file); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	file, err := s.file(key)
	if err != nil {
		return err
	}
	if err := os.Remove(file); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

// Health 检查目录是否仍可写
func (s *FileStore) Health(context.Context) error {
	info, err := os.Stat(s.basePath)
	if err != nil {
		return fmt.Errorf("drafts directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("drafts path %s is not a directory", s.basePath)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// 文件名上限，超过时改用哈希
const maxEncodedName = 200

// file 不同的键必须映射到不同的文件
//
// 短键使用 hex 编码，长键使用 sha256，两者后缀不同。
func (s *FileStore) file(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	name := hex.EncodeToString([]byte(key))
	if len(name) > maxEncodedName {
		sum := sha256.Sum256([]byte(key))
		return filepath.Join(s.basePath, hex.EncodeToString(sum[:])+".sha256.json"), nil
	}
	return filepath.Join(s.basePath, name+".json"), nil
}
