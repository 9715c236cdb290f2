// Пакет presenter выводит корзину в области страницы: счётчик, таблицу и итог.
package presenter

import (
	"context"
	"strconv"

	"github.com/vladislavdragonenkov/carrinho/internal/domain"
	"github.com/vladislavdragonenkov/carrinho/internal/money"
)

// Row: строка таблицы корзины в уже отформатированном виде.
type Row struct {
	ID        string `json:"id"`
	ImageRef  string `json:"imagem"`
	Name      string `json:"nome"`
	UnitPrice string `json:"preco_unitario"`
	Quantity  string `json:"quantidade"`
	LineTotal string `json:"preco_total"`
}

// Regions: области страницы, в которые пишет Presenter.
type Regions interface {
	SetCounter(text string)
	ReplaceRows(rows []Row) error
	SetTotal(text string)
}

// CartSource источник корзины для Presenter.
type CartSource interface {
	Current(ctx context.Context) (domain.Cart, error)
}

// Presenter полностью перерисовывает корзину на каждое изменение.
type Presenter struct {
	source  CartSource
	regions Regions
	locale  money.Locale
}

// New создаёт Presenter; nil locale означает BRL.
func New(source CartSource, regions Regions, locale money.Locale) *Presenter {
	if locale == nil {
		locale = money.BRL{}
	}
	return &Presenter{source: source, regions: regions, locale: locale}
}

// Refresh по очереди обновляет счётчик, таблицу и итог. Каждый шаг читает
// корзину заново; ошибка чтения прерывает перерисовку на этом шаге.
func (p *Presenter) Refresh(ctx context.Context) error {
	if err := p.refreshCounter(ctx); err != nil {
		return err
	}
	if err := p.refreshTable(ctx); err != nil {
		return err
	}
	return p.refreshTotal(ctx)
}

func (p *Presenter) refreshCounter(ctx context.Context) error {
	c, err := p.source.Current(ctx)
	if err != nil {
		return err
	}
	p.regions.SetCounter(strconv.Itoa(c.ItemCount()))
	return nil
}

func (p *Presenter) refreshTable(ctx context.Context) error {
	c, err := p.source.Current(ctx)
	if err != nil {
		return err
	}
	return p.regions.ReplaceRows(p.Rows(c))
}

func (p *Presenter) refreshTotal(ctx context.Context) error {
	c, err := p.source.Current(ctx)
	if err != nil {
		return err
	}
	p.regions.SetTotal(p.locale.Format(c.GrandTotal()))
	return nil
}

// Rows форматирует позиции корзины в порядке корзины.
func (p *Presenter) Rows(c domain.Cart) []Row {
	rows := make([]Row, 0, len(c))
	for _, item := range c {
		rows = append(rows, Row{
			ID:        item.ID,
			ImageRef:  item.ImageRef,
			Name:      item.Name,
			UnitPrice: p.locale.Format(item.UnitPrice),
			Quantity:  item.Quantity.String(),
			LineTotal: p.locale.Format(item.LineTotal()),
		})
	}
	return rows
}
