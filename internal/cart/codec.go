package cart

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/carrinho/internal/domain"
)

// wireItem: формат позиции в хранилище. Имена полей совпадают с корзинами,
// которые уже лежат в localStorage у пользователей витрины.
type wireItem struct {
	ID         string          `json:"id"`
	Nome       string          `json:"nome"`
	Imagem     string          `json:"imagem"`
	Preco      json.Number     `json:"preco"`
	Quantidade domain.Quantity `json:"quantidade"`
}

// Encode сериализует корзину в JSON-массив.
func Encode(c domain.Cart) (string, error) {
	items := make([]wireItem, 0, len(c))
	for _, item := range c {
		items = append(items, wireItem{
			ID:         item.ID,
			Nome:       item.Name,
			Imagem:     item.ImageRef,
			Preco:      json.Number(item.UnitPrice.String()),
			Quantidade: item.Quantity,
		})
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode cart: %w", err)
	}
	return string(data), nil
}

// Decode разбирает JSON-массив позиций. Всё, что не является массивом
// (включая null), считается повреждённой корзиной.
func Decode(raw string) (domain.Cart, error) {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) == 0 || data[0] != '[' {
		return nil, fmt.Errorf("%w: expected JSON array", domain.ErrCartMalformed)
	}

	var items []wireItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCartMalformed, err)
	}

	c := make(domain.Cart, 0, len(items))
	for i, w := range items {
		price := decimal.Zero
		if w.Preco != "" {
			p, err := decimal.NewFromString(w.Preco.String())
			if err != nil {
				return nil, fmt.Errorf("%w: item %d price %q: %v", domain.ErrCartMalformed, i, w.Preco, err)
			}
			price = p
		}
		c = append(c, domain.LineItem{
			ID:        w.ID,
			Name:      w.Nome,
			ImageRef:  w.Imagem,
			UnitPrice: price,
			Quantity:  w.Quantidade,
		})
	}
	return c, nil
}
