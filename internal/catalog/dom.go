package catalog

import (
	"strings"

	"golang.org/x/net/html"
)

// Классы и атрибуты разметки витрины.
const (
	CardClass       = "produto"
	NameClass       = "nome"
	PriceClass      = "preco"
	AddTriggerClass = "adicionar-ao-carrinho"
	IDAttr          = "data-id"
)

// Attr возвращает значение атрибута элемента.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr задаёт значение атрибута, добавляя его при необходимости.
func SetAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// HasClass проверяет наличие класса в атрибуте class.
func HasClass(n *html.Node, class string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	classes, _ := Attr(n, "class")
	for _, c := range strings.Fields(classes) {
		if c == class {
			return true
		}
	}
	return false
}

// Closest ищет ближайший элемент с классом, начиная с самого n.
func Closest(n *html.Node, class string) *html.Node {
	for ; n != nil; n = n.Parent {
		if HasClass(n, class) {
			return n
		}
	}
	return nil
}

// FindAll возвращает потомков n (без самого n), подходящих под match, в порядке документа.
func FindAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(p *html.Node) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			if match(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return out
}

// find возвращает первого потомка, подходящего под match.
func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if match(c) {
			return c
		}
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

// FindByClass: аналог querySelector(".class").
func FindByClass(n *html.Node, class string) *html.Node {
	return find(n, func(c *html.Node) bool { return HasClass(c, class) })
}

// FindByTag: аналог querySelector("tag").
func FindByTag(n *html.Node, tag string) *html.Node {
	return find(n, func(c *html.Node) bool { return c.Type == html.ElementNode && c.Data == tag })
}

// FindByID: аналог getElementById.
func FindByID(n *html.Node, id string) *html.Node {
	return find(n, func(c *html.Node) bool {
		if c.Type != html.ElementNode {
			return false
		}
		v, ok := Attr(c, "id")
		return ok && v == id
	})
}

// TextContent склеивает текстовые узлы поддерева, как Node.textContent.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(p *html.Node) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				b.WriteString(c.Data)
			case html.ElementNode:
				walk(c)
			}
		}
	}
	walk(n)
	return b.String()
}

// SetTextContent заменяет всех детей n одним текстовым узлом.
func SetTextContent(n *html.Node, text string) {
	RemoveChildren(n)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// RemoveChildren отсоединяет всех детей n.
func RemoveChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}
