package menu

import "github.com/lejockey/concierge/backend/internal/i18n"

// Item 菜单上的饮品，价格保留印刷格式（"16,00$"）
type Item struct {
	Name               string   `json:"name" toml:"name"`
	NameEn             string   `json:"nameEn,omitempty" toml:"name_en"`
	Price              string   `json:"price" toml:"price"`
	Description        string   `json:"description,omitempty" toml:"description"`
	DescriptionEn      string   `json:"descriptionEn,omitempty" toml:"description_en"`
	Category           string   `json:"category" toml:"category"`
	CategoryEn         string   `json:"categoryEn,omitempty" toml:"category_en"`
	Tags               []string `json:"tags,omitempty" toml:"tags"`
	Image              string   `json:"image,omitempty" toml:"image"`
	BaseSpirit         string   `json:"baseSpirit,omitempty" toml:"base_spirit"`
	BaseSpiritEn       string   `json:"baseSpiritEn,omitempty" toml:"base_spirit_en"`
	TastingProfile     string   `json:"tastingProfile,omitempty" toml:"tasting_profile"`
	TastingProfileEn   string   `json:"tastingProfileEn,omitempty" toml:"tasting_profile_en"`
	NeedsCustomization bool     `json:"needsCustomization,omitempty" toml:"needs_customization"`
}

// DisplayName 返回对应语言的饮品名称
func (i Item) DisplayName(lang i18n.Language) string {
	return lang.Pick(i.Name, i.NameEn)
}

// Event 酒吧的固定活动
type Event struct {
	Name          string `json:"name" toml:"name"`
	NameEn        string `json:"nameEn,omitempty" toml:"name_en"`
	Date          string `json:"date" toml:"date"`
	DateEn        string `json:"dateEn,omitempty" toml:"date_en"`
	Time          string `json:"time" toml:"time"`
	Description   string `json:"description" toml:"description"`
	DescriptionEn string `json:"descriptionEn,omitempty" toml:"description_en"`
}

// Product 网站出售的周边商品
type Product struct {
	ID         string `json:"id" toml:"id"`
	Name       string `json:"name" toml:"name"`
	NameEn     string `json:"nameEn,omitempty" toml:"name_en"`
	Price      string `json:"price" toml:"price"`
	SalePrice  string `json:"salePrice,omitempty" toml:"sale_price"`
	Image      string `json:"image" toml:"image"`
	IsOnSale   bool   `json:"isOnSale" toml:"is_on_sale"`
	Category   string `json:"category,omitempty" toml:"category"`
	CategoryEn string `json:"categoryEn,omitempty" toml:"category_en"`
}

// DisplayName 返回对应语言的商品名称
func (p Product) DisplayName(lang i18n.Language) string {
	return lang.Pick(p.Name, p.NameEn)
}

// EffectivePrice 返回实际售价，设置了促销价时优先使用促销价
func (p Product) EffectivePrice() string {
	if p.SalePrice != "" {
		return p.SalePrice
	}
	return p.Price
}

// Catalog groups everything the bar publishes.
type Catalog struct {
	Menu     []Item    `json:"menu" toml:"menu"`
	Events   []Event   `json:"events" toml:"events"`
	Products []Product `json:"products" toml:"products"`
}

func (c Catalog) clone() Catalog {
	return Catalog{
		Menu:     append([]Item(nil), c.Menu...),
		Events:   append([]Event(nil), c.Events...),
		Products: append([]Product(nil), c.Products...),
	}
}
