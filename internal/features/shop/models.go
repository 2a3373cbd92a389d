// Package shop — магазин, где очки обмениваются на товары.
// Каталог задаётся в конфигурации, плюс ссылка на внешнюю форму заказа.
package shop

import (
	"fmt"
	"strconv"
	"strings"
)

// Item — товар магазина.
type Item struct {
	ID    string
	Name  string
	Price int64
}

// Catalog — список товаров в порядке из конфигурации.
type Catalog struct {
	Items []Item
	URL   string // Внешняя форма обмена (может быть пустой)
}

// Find ищет товар по id без учёта регистра.
func (c Catalog) Find(id string) (Item, bool) {
	for _, it := range c.Items {
		if strings.EqualFold(it.ID, id) {
			return it, true
		}
	}
	return Item{}, false
}

// ParseCatalog разбирает SHOP_ITEMS вида "sticker:Стикерпак:300,role:Роль в чате:1000".
// Название может содержать двоеточия: id — до первого, цена — после последнего.
func ParseCatalog(raw, url string) (Catalog, error) {
	c := Catalog{URL: strings.TrimSpace(url)}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return c, nil
	}

	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		first := strings.Index(part, ":")
		last := strings.LastIndex(part, ":")
		if first <= 0 || first == last {
			return Catalog{}, fmt.Errorf("ожидается id:название:цена, получено %q", part)
		}

		item := Item{
			ID:   strings.TrimSpace(part[:first]),
			Name: strings.TrimSpace(part[first+1 : last]),
		}
		price, err := strconv.ParseInt(strings.TrimSpace(part[last+1:]), 10, 64)
		if err != nil || price <= 0 {
			return Catalog{}, fmt.Errorf("некорректная цена в %q", part)
		}
		item.Price = price

		if item.Name == "" {
			return Catalog{}, fmt.Errorf("пустое название в %q", part)
		}
		key := strings.ToLower(item.ID)
		if seen[key] {
			return Catalog{}, fmt.Errorf("товар %q указан дважды", item.ID)
		}
		seen[key] = true
		c.Items = append(c.Items, item)
	}
	return c, nil
}
