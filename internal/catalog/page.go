package catalog

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"golang.org/x/net/html"

	"github.com/vladislavdragonenkov/carrinho/internal/domain"
)

// Template хранит исходную разметку витрины; каждая сессия получает свою копию документа.
type Template struct {
	src []byte
}

// NewTemplate проверяет, что разметка разбирается, и запоминает её.
func NewTemplate(src []byte) (*Template, error) {
	if _, err := html.Parse(bytes.NewReader(src)); err != nil {
		return nil, fmt.Errorf("parse catalog markup: %w", err)
	}
	return &Template{src: bytes.Clone(src)}, nil
}

// LoadTemplate читает разметку витрины из файла.
func LoadTemplate(path string) (*Template, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return NewTemplate(src)
}

// Page возвращает новый документ витрины.
func (t *Template) Page() *Page {
	doc, err := html.Parse(bytes.NewReader(t.src))
	if err != nil {
		// Разметка уже разбиралась в NewTemplate.
		panic(fmt.Sprintf("catalog template became unparsable: %v", err))
	}
	return &Page{doc: doc}
}

// Page документ витрины с карточками товаров и областями корзины.
type Page struct {
	doc *html.Node
}

// ParsePage разбирает документ витрины.
func ParsePage(r io.Reader) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse catalog page: %w", err)
	}
	return &Page{doc: doc}, nil
}

// Document возвращает корневой узел.
func (p *Page) Document() *html.Node {
	return p.doc
}

// AddTriggers возвращает кнопки "добавить в корзину" в порядке документа.
func (p *Page) AddTriggers() []*html.Node {
	return FindAll(p.doc, func(n *html.Node) bool { return HasClass(n, AddTriggerClass) })
}

// Trigger возвращает кнопку с номером index (с нуля).
func (p *Page) Trigger(index int) (*html.Node, error) {
	triggers := p.AddTriggers()
	if index < 0 || index >= len(triggers) {
		return nil, fmt.Errorf("%w: #%d of %d", domain.ErrTriggerNotFound, index, len(triggers))
	}
	return triggers[index], nil
}

// Render сериализует документ.
func (p *Page) Render(w io.Writer) error {
	return html.Render(w, p.doc)
}
