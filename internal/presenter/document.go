package presenter

import (
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vladislavdragonenkov/carrinho/internal/catalog"
	"github.com/vladislavdragonenkov/carrinho/internal/domain"
)

// Идентификаторы областей в разметке витрины.
const (
	CounterID          = "contador-carrinho"
	ModalContentID     = "modal-1-content"
	TotalClass         = "total-carrinho"
	QuantityInputClass = "input-quantidade"
	RemoveButtonClass  = "btn-remover"
)

// DocumentRegions пишет корзину прямо в HTML-документ витрины.
type DocumentRegions struct {
	counter *html.Node
	tbody   *html.Node
	total   *html.Node
}

var _ Regions = (*DocumentRegions)(nil)

// NewDocumentRegions находит области в документе: #contador-carrinho,
// #modal-1-content table tbody и .total-carrinho.
func NewDocumentRegions(doc *html.Node) (*DocumentRegions, error) {
	r := &DocumentRegions{
		counter: catalog.FindByID(doc, CounterID),
		total:   catalog.FindByClass(doc, TotalClass),
	}
	if modal := catalog.FindByID(doc, ModalContentID); modal != nil {
		if table := catalog.FindByTag(modal, "table"); table != nil {
			r.tbody = catalog.FindByTag(table, "tbody")
		}
	}

	switch {
	case r.counter == nil:
		return nil, fmt.Errorf("%w: #%s", domain.ErrRegionMissing, CounterID)
	case r.tbody == nil:
		return nil, fmt.Errorf("%w: #%s table tbody", domain.ErrRegionMissing, ModalContentID)
	case r.total == nil:
		return nil, fmt.Errorf("%w: .%s", domain.ErrRegionMissing, TotalClass)
	}
	return r, nil
}

// TableBody возвращает tbody, на котором висят делегированные слушатели.
func (r *DocumentRegions) TableBody() *html.Node {
	return r.tbody
}

// QuantityEditor возвращает поле количества строки с данным id.
func (r *DocumentRegions) QuantityEditor(id string) *html.Node {
	return r.control(QuantityInputClass, id)
}

// RemoveControl возвращает кнопку удаления строки с данным id.
func (r *DocumentRegions) RemoveControl(id string) *html.Node {
	return r.control(RemoveButtonClass, id)
}

func (r *DocumentRegions) control(class, id string) *html.Node {
	found := catalog.FindAll(r.tbody, func(n *html.Node) bool {
		if !catalog.HasClass(n, class) {
			return false
		}
		v, ok := catalog.Attr(n, catalog.IDAttr)
		return ok && v == id
	})
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

func (r *DocumentRegions) SetCounter(text string) {
	catalog.SetTextContent(r.counter, text)
}

func (r *DocumentRegions) SetTotal(text string) {
	catalog.SetTextContent(r.total, text)
}

// ReplaceRows очищает tbody и строит строки заново.
func (r *DocumentRegions) ReplaceRows(rows []Row) error {
	catalog.RemoveChildren(r.tbody)
	for _, row := range rows {
		r.tbody.AppendChild(rowNode(row))
	}
	return nil
}

func rowNode(row Row) *html.Node {
	return element(atom.Tr, nil,
		element(atom.Td, attrs("class", "td-produto"),
			element(atom.Img, attrs("src", row.ImageRef, "alt", row.Name)),
		),
		element(atom.Td, nil, text(row.Name)),
		element(atom.Td, attrs("class", "td-preco-unitario"), text(row.UnitPrice)),
		element(atom.Td, attrs("class", "td-quantidade"),
			element(atom.Input, attrs(
				"type", "number",
				"class", QuantityInputClass,
				catalog.IDAttr, row.ID,
				"value", row.Quantity,
				"min", "1",
			)),
		),
		element(atom.Td, attrs("class", "td-preco-total"), text(row.LineTotal)),
		element(atom.Td, nil,
			element(atom.Button, attrs("class", RemoveButtonClass, catalog.IDAttr, row.ID, "id", "deletar")),
		),
	)
}

func element(a atom.Atom, attr []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attr}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func attrs(kv ...string) []html.Attribute {
	out := make([]html.Attribute, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return out
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
