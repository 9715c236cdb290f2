package kafka

import (
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/carrinho/internal/domain"
)

// EventType определяет тип события
type EventType string

const (
	EventTypeItemAdded   EventType = "cart.item_added"
	EventTypeQuantitySet EventType = "cart.quantity_set"
	EventTypeItemRemoved EventType = "cart.item_removed"
)

// Topics для Kafka
const (
	TopicCartEvents = "carrinho.cart.events"
)

// CartLine: позиция корзины в событии.
type CartLine struct {
	ID         string `json:"id"`
	Nome       string `json:"nome"`
	Preco      string `json:"preco"`
	Quantidade *int   `json:"quantidade"`
}

// CartEvent представляет сохранённое изменение корзины
type CartEvent struct {
	EventID    string     `json:"event_id"`
	EventType  EventType  `json:"event_type"`
	SessionID  string     `json:"session_id,omitempty"`
	ItemID     string     `json:"item_id"`
	ItemCount  int        `json:"item_count"`
	GrandTotal string     `json:"grand_total"`
	Lines      []CartLine `json:"lines"`
	Timestamp  time.Time  `json:"timestamp"`
}

var eventTypeByOp = map[domain.CartOp]EventType{
	domain.CartOpAdd:         EventTypeItemAdded,
	domain.CartOpSetQuantity: EventTypeQuantitySet,
	domain.CartOpRemove:      EventTypeItemRemoved,
}

// NewCartEvent создает событие из изменения корзины
func NewCartEvent(change domain.CartChange) *CartEvent {
	lines := make([]CartLine, 0, len(change.Cart))
	for _, item := range change.Cart {
		line := CartLine{ID: item.ID, Nome: item.Name, Preco: item.UnitPrice.String()}
		if n, ok := item.Quantity.Int(); ok {
			line.Quantidade = &n
		}
		lines = append(lines, line)
	}

	return &CartEvent{
		EventID:    uuid.NewString(),
		EventType:  eventTypeByOp[change.Op],
		SessionID:  change.Scope,
		ItemID:     change.ItemID,
		ItemCount:  change.Cart.ItemCount(),
		GrandTotal: change.Cart.GrandTotal().StringFixed(2),
		Lines:      lines,
		Timestamp:  time.Now().UTC(),
	}
}
