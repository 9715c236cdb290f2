package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Quantity: количество единиц товара в корзине.
//
// Значение либо целое (в том числе 0 и отрицательное: подсказка min=1 у поля
// ввода ничего не ограничивает), либо невалидное. Невалидное количество
// появляется, когда пользователь ввёл не число; оно хранится как есть и
// сериализуется в JSON как null.
type Quantity struct {
	value int
	valid bool
}

// MaxSafeQuantity наибольшее по модулю количество, которое число браузера
// хранит точно (2^53-1). Всё, что дальше, считается невалидным.
const MaxSafeQuantity = 1<<53 - 1

func inSafeRange(n int64) bool {
	return n >= -MaxSafeQuantity && n <= MaxSafeQuantity
}

// QuantityOf возвращает валидное количество n.
func QuantityOf(n int) Quantity {
	return Quantity{value: n, valid: true}
}

// InvalidQuantity возвращает количество "не число".
func InvalidQuantity() Quantity {
	return Quantity{}
}

// Valid сообщает, является ли количество числом.
func (q Quantity) Valid() bool { return q.valid }

// Int возвращает значение и признак валидности.
func (q Quantity) Int() (int, bool) { return q.value, q.valid }

// Units: вклад позиции в счётчик и суммы: невалидное количество считается нулём.
func (q Quantity) Units() int {
	if !q.valid {
		return 0
	}
	return q.value
}

// Increment увеличивает количество на единицу; невалидное становится 1.
func (q Quantity) Increment() Quantity {
	return QuantityOf(q.Units() + 1)
}

// String возвращает значение для поля ввода; у невалидного количества оно пустое.
func (q Quantity) String() string {
	if !q.valid {
		return ""
	}
	return strconv.Itoa(q.value)
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	if !q.valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(q.value)), nil
}

func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*q = InvalidQuantity()
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("decode quantity: %w", err)
	}
	if n, err := strconv.ParseInt(num.String(), 10, 64); err == nil {
		if !inSafeRange(n) {
			return fmt.Errorf("decode quantity %q: out of range", num.String())
		}
		*q = QuantityOf(int(n))
		return nil
	}
	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > MaxSafeQuantity {
		return fmt.Errorf("decode quantity %q: not an integer", num.String())
	}
	*q = QuantityOf(int(f))
	return nil
}

// ParseQuantity разбирает значение поля количества так же, как parseInt в браузере:
// пробелы в начале пропускаются, берётся самый длинный целый префикс
// ("2.5" -> 2, "3abc" -> 3). Если цифр нет, возвращается невалидное
// количество вместе с ErrQuantityInvalid.
func ParseQuantity(raw string) (Quantity, error) {
	s := strings.TrimLeftFunc(raw, isJSSpace)

	sign := 1
	switch {
	case strings.HasPrefix(s, "-"):
		sign = -1
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	base := 10
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}

	end := 0
	for end < len(s) && isDigit(s[end], base) {
		end++
	}
	if end == 0 {
		return InvalidQuantity(), fmt.Errorf("%w: %q", ErrQuantityInvalid, raw)
	}

	n, err := strconv.ParseInt(s[:end], base, 64)
	if err != nil || !inSafeRange(n) {
		return InvalidQuantity(), fmt.Errorf("%w: %q out of range", ErrQuantityInvalid, raw)
	}
	return QuantityOf(sign * int(n)), nil
}

func isDigit(c byte, base int) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case base == 16 && (c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'):
		return true
	default:
		return false
	}
}

// isJSSpace повторяет набор пробельных символов, которые пропускают parseInt/parseFloat.
func isJSSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// TrimJSSpace убирает ведущие пробелы по правилам parseFloat.
func TrimJSSpace(s string) string {
	return strings.TrimLeftFunc(s, isJSSpace)
}
