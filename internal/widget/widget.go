// Пакет widget связывает события страницы с корзиной и перерисовкой.
package widget

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"github.com/vladislavdragonenkov/carrinho/internal/catalog"
	"github.com/vladislavdragonenkov/carrinho/internal/domain"
	"github.com/vladislavdragonenkov/carrinho/internal/presenter"
)

// Названия событий для метрик и логов.
const (
	EventAddClick   = "add_click"
	EventTableInput = "table_input"
	EventTableClick = "table_click"
)

// CartMutator: операции корзины, которые вызывают слушатели.
type CartMutator interface {
	AddOrIncrement(ctx context.Context, item domain.LineItem) error
	SetQuantity(ctx context.Context, id string, q domain.Quantity) error
	Remove(ctx context.Context, id string) error
}

// CartStore: корзина, которую и меняют слушатели, и читает Presenter.
type CartStore interface {
	CartMutator
	presenter.CartSource
}

// Refresher перерисовывает корзину.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Recorder фиксирует метрики событий.
type Recorder interface {
	RecordEvent(event string, handled bool)
	RecordRefresh(duration time.Duration, err error)
}

// Widget держит слушатели: кнопки "добавить", и два делегированных
// слушателя на tbody (ввод количества и клик по удалению).
type Widget struct {
	page      *catalog.Page
	store     CartMutator
	presenter Refresher
	extractor *catalog.Extractor
	metrics   Recorder
	logger    *log.Entry
}

// New создаёт Widget. metrics может быть nil.
func New(page *catalog.Page, store CartMutator, p Refresher, extractor *catalog.Extractor, metrics Recorder, logger *log.Entry) *Widget {
	if logger == nil {
		logger = log.WithField("component", "widget")
	}
	if extractor == nil {
		extractor = catalog.NewExtractor(nil, logger)
	}
	return &Widget{
		page:      page,
		store:     store,
		presenter: p,
		extractor: extractor,
		metrics:   metrics,
		logger:    logger,
	}
}

// Assemble собирает Widget поверх документа страницы: области вывода
// ищутся в документе, Presenter пишет прямо в него.
func Assemble(page *catalog.Page, store CartStore, metrics Recorder, logger *log.Entry) (*Widget, *presenter.DocumentRegions, error) {
	regions, err := presenter.NewDocumentRegions(page.Document())
	if err != nil {
		return nil, nil, err
	}
	p := presenter.New(store, regions, nil)
	return New(page, store, p, nil, metrics, logger), regions, nil
}

// AddTriggers: кнопки "добавить в корзину", к которым привязан OnAddClick.
func (w *Widget) AddTriggers() []*html.Node {
	return w.page.AddTriggers()
}

// Mount выполняет первоначальную перерисовку при загрузке страницы.
func (w *Widget) Mount(ctx context.Context) error {
	return w.refresh(ctx)
}

// OnAddClick: клик по кнопке "добавить": ищем карточку, читаем товар,
// добавляем в корзину и перерисовываем. Кнопка вне карточки игнорируется.
func (w *Widget) OnAddClick(ctx context.Context, target *html.Node) error {
	card := catalog.Closest(target, catalog.CardClass)
	if card == nil {
		w.recordEvent(EventAddClick, false)
		w.logger.Debug("add trigger outside of a product card ignored")
		return nil
	}
	w.recordEvent(EventAddClick, true)

	res := w.extractor.Extract(card)
	if err := w.store.AddOrIncrement(ctx, res.Item); err != nil {
		return err
	}
	return w.refresh(ctx)
}

// OnTableInput: делегированный слушатель ввода на tbody. Реагирует только на
// поле количества; значение разбирается как parseInt и записывается как есть.
func (w *Widget) OnTableInput(ctx context.Context, target *html.Node, value string) error {
	if !catalog.HasClass(target, presenter.QuantityInputClass) {
		w.recordEvent(EventTableInput, false)
		return nil
	}
	w.recordEvent(EventTableInput, true)

	id, _ := catalog.Attr(target, catalog.IDAttr)
	catalog.SetAttr(target, "value", value)

	q, err := domain.ParseQuantity(value)
	if err != nil {
		w.logger.WithError(err).WithField("item_id", id).Debug("quantity input is not a number")
	}
	if err := w.store.SetQuantity(ctx, id, q); err != nil {
		return err
	}
	return w.refresh(ctx)
}

// OnTableClick: делегированный слушатель кликов на tbody. Реагирует только на кнопку удаления.
func (w *Widget) OnTableClick(ctx context.Context, target *html.Node) error {
	if !catalog.HasClass(target, presenter.RemoveButtonClass) {
		w.recordEvent(EventTableClick, false)
		return nil
	}
	w.recordEvent(EventTableClick, true)

	id, _ := catalog.Attr(target, catalog.IDAttr)
	if err := w.store.Remove(ctx, id); err != nil {
		return err
	}
	return w.refresh(ctx)
}

func (w *Widget) refresh(ctx context.Context) error {
	start := time.Now()
	err := w.presenter.Refresh(ctx)
	if w.metrics != nil {
		w.metrics.RecordRefresh(time.Since(start), err)
	}
	if err != nil {
		w.logger.WithError(err).Error("cart refresh failed")
	}
	return err
}

func (w *Widget) recordEvent(event string, handled bool) {
	if w.metrics != nil {
		w.metrics.RecordEvent(event, handled)
	}
}
