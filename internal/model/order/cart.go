package order

import (
	"strconv"
	"strings"
)

// ItemType 区分订单行是饮品还是周边商品
type ItemType string

const (
	TypeMenu    ItemType = "menu"
	TypeProduct ItemType = "product"
)

// CartItem 购物车中的一行，饮品或商品
type CartItem struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    string   `json:"price"`
	Image    string   `json:"image,omitempty"`
	Quantity int      `json:"quantity"`
	Type     ItemType `json:"type"`
}

// Cart 客人待下单的购物车
type Cart struct {
	SessionID string     `json:"sessionId"`
	Items     []CartItem `json:"items"`
}

// ItemID 生成购物车行id，同名同价共用一行
func ItemID(name, price string) string {
	return name + "-" + price
}

// Add 合并到已有行或追加新行。id 由名称和价格生成，类型为空时视为饮品
func (c *Cart) Add(line CartItem) CartItem {
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	if line.Type == "" {
		line.Type = TypeMenu
	}
	line.ID = ItemID(line.Name, line.Price)
	for idx := range c.Items {
		if c.Items[idx].ID == line.ID {
			c.Items[idx].Quantity += line.Quantity
			return c.Items[idx]
		}
	}
	c.Items = append(c.Items, line)
	return line
}

// Remove 按id删除一行，返回该行是否存在
func (c *Cart) Remove(id string) bool {
	for idx := range c.Items {
		if c.Items[idx].ID == id {
			c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
			return true
		}
	}
	return false
}

// Total 计算购物车总价
func (c Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += ParsePrice(item.Price) * float64(item.Quantity)
	}
	return total
}

// Count 返回购物车中的件数
func (c Cart) Count() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// ParsePrice 解析菜单上的价格，如 "16,00$" 或 "9$ / 50$"。
// 只取第一个斜杠之前的部分，无法解析时返回0
func ParsePrice(raw string) float64 {
	head := strings.SplitN(raw, "/", 2)[0]
	head = strings.ReplaceAll(head, "$", "")
	head = strings.ReplaceAll(head, ",", ".")
	value, err := strconv.ParseFloat(strings.TrimSpace(head), 64)
	if err != nil {
		return 0
	}
	return value
}
