package menu

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Store 提供菜单查询能力
type Store interface {
	Catalog() Catalog
	Items() []Item
	Resolve(name string) (Item, bool)
	Product(id string) (Product, bool)
}

// MemoryStore 基于内存的 Store 实现，重新加载时整体替换
type MemoryStore struct {
	mu      sync.RWMutex
	catalog Catalog
}

// NewMemoryStore 使用给定菜单创建 MemoryStore
func NewMemoryStore(catalog Catalog) *MemoryStore {
	return &MemoryStore{catalog: catalog.clone()}
}

// Catalog 返回当前菜单的副本
func (s *MemoryStore) Catalog() Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.clone()
}

// Items 返回所有饮品
func (s *MemoryStore) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Item(nil), s.catalog.Menu...)
}

// Replace 整体替换菜单
func (s *MemoryStore) Replace(catalog Catalog) {
	s.mu.Lock()
	s.catalog = catalog.clone()
	s.mu.Unlock()
}

// Product 按id查找商品
func (s *MemoryStore) Product(id string) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, product := range s.catalog.Products {
		if product.ID == id {
			return product, true
		}
	}
	return Product{}, false
}

// minCoverage 是模糊匹配时查询至少要覆盖的候选名称比例
const minCoverage = 0.6

// Resolve 按法文或英文名称查找饮品。
// 先做忽略大小写和重音的精确匹配，再做模糊匹配；模糊匹配必须覆盖候选名称的大部分，
// 并且最佳结果唯一，否则视为找不到，让模型向客人确认。
func (s *MemoryStore) Resolve(name string) (Item, bool) {
	query := foldName(name)
	if query == "" {
		return Item{}, false
	}

	items := s.Items()
	targets := make([]string, 0, len(items)*2)
	owners := make([]int, 0, len(items)*2)
	for idx, item := range items {
		for _, candidate := range []string{item.Name, item.NameEn} {
			if candidate == "" {
				continue
			}
			folded := foldName(candidate)
			if folded == query {
				return item, true
			}
			targets = append(targets, folded)
			owners = append(owners, idx)
		}
	}

	best := -1
	bestScore := 0
	tied := false
	for _, match := range fuzzy.Find(query, targets) {
		coverage := float64(utf8.RuneCountInString(query)) / float64(utf8.RuneCountInString(match.Str))
		if coverage < minCoverage {
			continue
		}
		owner := owners[match.Index]
		switch {
		case best == -1:
			best, bestScore = owner, match.Score
		case match.Score == bestScore && owner != best:
			tied = true
		}
	}
	if best == -1 || tied {
		return Item{}, false
	}
	return items[best], true
}

// foldName 统一大小写、重音和弯引号，便于比较饮品名称
func foldName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "’", "'")
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, name)
	if err != nil {
		return name
	}
	return folded
}
