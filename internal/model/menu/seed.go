package menu

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed menu.toml
var seedTOML string

// Seed 返回内置的菜单
func Seed() Catalog {
	catalog, err := Decode(seedTOML)
	if err != nil {
		// 内置文件随编译打包，解析失败属于程序错误
		panic(fmt.Sprintf("menu: invalid embedded catalog: %v", err))
	}
	return catalog
}

// Decode 解析 TOML 菜单文档
func Decode(data string) (Catalog, error) {
	var catalog Catalog
	if _, err := toml.Decode(data, &catalog); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	if err := catalog.validate(); err != nil {
		return Catalog{}, err
	}
	return catalog, nil
}

// LoadFile 从磁盘读取 TOML 菜单
func LoadFile(path string) (Catalog, error) {
	if _, err := os.Stat(path); err != nil {
		return Catalog{}, fmt.Errorf("stat catalog %s: %w", path, err)
	}

	var catalog Catalog
	if _, err := toml.DecodeFile(path, &catalog); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	if err := catalog.validate(); err != nil {
		return Catalog{}, err
	}
	return catalog, nil
}

func (c Catalog) validate() error {
	if len(c.Menu) == 0 {
		return fmt.Errorf("catalog has no menu items")
	}
	for idx, item := range c.Menu {
		if item.Name == "" {
			return fmt.Errorf("menu item %d has no name", idx)
		}
		if item.Price == "" {
			return fmt.Errorf("menu item %q has no price", item.Name)
		}
	}
	seen := make(map[string]bool, len(c.Products))
	for idx, product := range c.Products {
		if product.ID == "" {
			return fmt.Errorf("product %d has no id", idx)
		}
		if seen[product.ID] {
			return fmt.Errorf("duplicate product id %q", product.ID)
		}
		seen[product.ID] = true
		if product.Price == "" {
			return fmt.Errorf("product %q has no price", product.ID)
		}
	}
	return nil
}
