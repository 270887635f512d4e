// Package localfile 客户端本地文件持久化
package localfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xiebiao/bookmarket/internal/domain/cart"
)

// CartFile 以JSON文件保存购物车，写入先落临时文件再rename
type CartFile struct {
	path string
}

var _ cart.Persistence = (*CartFile)(nil)

// NewCartFile path所在目录不存在时在首次保存时创建
func NewCartFile(path string) *CartFile {
	return &CartFile{path: path}
}

// DefaultCartPath 用户配置目录下的bookmarket/cart.json
func DefaultCartPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("获取用户配置目录失败: %w", err)
	}
	return filepath.Join(dir, "bookmarket", "cart.json"), nil
}

// Load 文件不存在时返回空购物车
func (f *CartFile) Load() ([]cart.Item, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("读取购物车文件失败: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var items []cart.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("解析购物车文件失败: %w", err)
	}
	return items, nil
}

// Save 覆盖写入
func (f *CartFile) Save(items []cart.Item) error {
	if items == nil {
		items = []cart.Item{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化购物车失败: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("创建购物车目录失败: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("写入购物车文件失败: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("保存购物车文件失败: %w", err)
	}
	return nil
}
