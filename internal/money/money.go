// Пакет money содержит пару "разбор/форматирование" денежных строк.
// Логика корзины работает только с decimal.Decimal и не знает о локали.
package money

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/carrinho/internal/domain"
)

// Locale разбирает цену из текста карточки и форматирует суммы для вывода.
type Locale interface {
	Parse(text string) (decimal.Decimal, error)
	Format(amount decimal.Decimal) string
}

const brlPrefix = "R$ "

// BRL: формат "R$ 1.234,56" на входе и "R$ 1234,56" на выходе.
type BRL struct{}

var _ Locale = BRL{}

// Parse убирает первое вхождение "R$ ", первую точку (разделитель тысяч),
// заменяет первую запятую на точку и берёт самый длинный числовой префикс,
// как parseFloat. При неудаче возвращает ноль и ErrPriceUnparsable.
func (BRL) Parse(text string) (decimal.Decimal, error) {
	s := strings.Replace(text, brlPrefix, "", 1)
	s = strings.Replace(s, ".", "", 1)
	s = strings.Replace(s, ",", ".", 1)

	literal := floatPrefix(domain.TrimJSSpace(s))
	if literal == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrPriceUnparsable, text)
	}
	amount, err := decimal.NewFromString(literal)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q: %v", domain.ErrPriceUnparsable, text, err)
	}
	return amount, nil
}

// Format выводит сумму с двумя знаками после запятой, без разделителя тысяч.
// Округляется двоичное значение суммы, как у toFixed(2) в браузере:
// 1000.005 хранится как 1000.00499... и выводится "R$ 1000,00".
func (BRL) Format(amount decimal.Decimal) string {
	return brlPrefix + strings.Replace(binaryValue(amount).StringFixed(2), ".", ",", 1)
}

// binaryValue возвращает точное десятичное значение ближайшего к amount float64.
func binaryValue(amount decimal.Decimal) decimal.Decimal {
	f := amount.InexactFloat64()
	if f == 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return amount
	}
	_, exp := math.Frexp(f)
	digits := max(53-exp, 0)
	exact, err := decimal.NewFromString(new(big.Float).SetFloat64(f).Text('f', digits))
	if err != nil {
		return amount
	}
	return exact
}

// floatPrefix возвращает самый длинный префикс s, который parseFloat считает числом:
// [+-] digits [. digits] [(e|E) [+-] digits]. Пустая строка: числа нет.
func floatPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	intStart := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	digits := i - intStart

	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if fracDigits := j - i - 1; digits > 0 || fracDigits > 0 {
			digits += fracDigits
			i = j
		}
	}
	if digits == 0 {
		return ""
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expStart := j
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > expStart {
			i = j
		}
	}

	literal := strings.TrimPrefix(strings.TrimSuffix(s[:i], "."), "+")
	switch {
	case strings.HasPrefix(literal, "."):
		literal = "0" + literal
	case strings.HasPrefix(literal, "-."):
		literal = "-0" + literal[1:]
	}
	return literal
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
