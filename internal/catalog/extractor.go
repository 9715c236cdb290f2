package catalog

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"github.com/vladislavdragonenkov/carrinho/internal/domain"
	"github.com/vladislavdragonenkov/carrinho/internal/money"
)

// Result: позиция, прочитанная из карточки, и список полей,
// которые пришлось заменить значениями по умолчанию.
type Result struct {
	Item    domain.LineItem
	Coerced []error
}

// Extractor читает товар из карточки витрины.
type Extractor struct {
	locale money.Locale
	logger *log.Entry
}

// NewExtractor создаёт Extractor; nil locale означает BRL.
func NewExtractor(locale money.Locale, logger *log.Entry) *Extractor {
	if locale == nil {
		locale = money.BRL{}
	}
	if logger == nil {
		logger = log.WithField("component", "catalog")
	}
	return &Extractor{locale: locale, logger: logger}
}

// Extract строит позицию с количеством 1. Отсутствующие поля дают пустые строки,
// нечитаемая цена: ноль; ошибок наружу не возвращается, только Coerced.
func (e *Extractor) Extract(card *html.Node) Result {
	var res Result

	id, ok := Attr(card, IDAttr)
	if !ok {
		res.Coerced = append(res.Coerced, fmt.Errorf("%w: %s", domain.ErrFieldMissing, IDAttr))
	}

	var name string
	if n := FindByClass(card, NameClass); n != nil {
		name = TextContent(n)
	} else {
		res.Coerced = append(res.Coerced, fmt.Errorf("%w: .%s", domain.ErrFieldMissing, NameClass))
	}

	var image string
	if img := FindByTag(card, "img"); img != nil {
		var ok bool
		if image, ok = Attr(img, "src"); !ok {
			res.Coerced = append(res.Coerced, fmt.Errorf("%w: img[src]", domain.ErrFieldMissing))
		}
	} else {
		res.Coerced = append(res.Coerced, fmt.Errorf("%w: img", domain.ErrFieldMissing))
	}

	res.Item = domain.LineItem{
		ID:       id,
		Name:     name,
		ImageRef: image,
		Quantity: domain.QuantityOf(1),
	}

	priceNode := FindByClass(card, PriceClass)
	if priceNode == nil {
		res.Coerced = append(res.Coerced, fmt.Errorf("%w: .%s", domain.ErrFieldMissing, PriceClass))
		return e.report(res)
	}
	price, err := e.locale.Parse(TextContent(priceNode))
	if err != nil {
		res.Coerced = append(res.Coerced, err)
	}
	res.Item.UnitPrice = price

	return e.report(res)
}

func (e *Extractor) report(res Result) Result {
	for _, err := range res.Coerced {
		e.logger.WithError(err).WithField("item_id", res.Item.ID).Debug("product card field coerced to default")
	}
	return res
}
