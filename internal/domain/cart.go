package domain

import "github.com/shopspring/decimal"

// LineItem: позиция корзины. Один товар встречается в корзине не более одного раза.
type LineItem struct {
	ID        string
	Name      string
	ImageRef  string
	UnitPrice decimal.Decimal
	Quantity  Quantity
}

// LineTotal возвращает цену позиции без округления: unitPrice * quantity.
func (i LineItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity.Units())))
}

// Cart: упорядоченный список позиций в порядке добавления.
type Cart []LineItem

// Index возвращает индекс позиции с данным id или -1.
func (c Cart) Index(id string) int {
	for i := range c {
		if c[i].ID == id {
			return i
		}
	}
	return -1
}

// Find возвращает позицию по id.
func (c Cart) Find(id string) (LineItem, bool) {
	if i := c.Index(id); i >= 0 {
		return c[i], true
	}
	return LineItem{}, false
}

// AddOrIncrement увеличивает количество существующей позиции на 1
// или добавляет новую позицию в конец с количеством 1.
func (c Cart) AddOrIncrement(item LineItem) Cart {
	if i := c.Index(item.ID); i >= 0 {
		c[i].Quantity = c[i].Quantity.Increment()
		return c
	}
	item.Quantity = QuantityOf(1)
	return append(c, item)
}

// SetQuantity перезаписывает количество позиции без каких-либо ограничений.
// Второе значение false, если позиции с таким id нет.
func (c Cart) SetQuantity(id string, q Quantity) (Cart, bool) {
	i := c.Index(id)
	if i < 0 {
		return c, false
	}
	c[i].Quantity = q
	return c, true
}

// Remove возвращает новую корзину без позиций с данным id.
func (c Cart) Remove(id string) Cart {
	out := make(Cart, 0, len(c))
	for _, item := range c {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out
}

// ItemCount: сумма количеств всех позиций.
func (c Cart) ItemCount() int {
	total := 0
	for _, item := range c {
		total += item.Quantity.Units()
	}
	return total
}

// GrandTotal: сумма LineTotal всех позиций.
func (c Cart) GrandTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c {
		total = total.Add(item.LineTotal())
	}
	return total
}
