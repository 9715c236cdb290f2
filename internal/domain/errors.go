package domain

import "errors"

var (
	// ErrCartMalformed: сохранённая корзина не разбирается как JSON-массив позиций.
	ErrCartMalformed = errors.New("persisted cart is malformed")
	// ErrPriceUnparsable: текст цены не содержит числа.
	ErrPriceUnparsable = errors.New("price text is not a number")
	// ErrQuantityInvalid: введённое количество не является целым числом.
	ErrQuantityInvalid = errors.New("quantity is not a number")
	// ErrFieldMissing: в карточке товара нет ожидаемого элемента или атрибута.
	ErrFieldMissing = errors.New("product card field is missing")
	// ErrKeyNotFound возвращается KVStore, если ключ отсутствует.
	ErrKeyNotFound = errors.New("key not found")
	// ErrRegionMissing: в документе нет области для вывода корзины.
	ErrRegionMissing = errors.New("display region is missing")
	// ErrTriggerNotFound: кнопки "добавить в корзину" с таким номером нет.
	ErrTriggerNotFound = errors.New("add-to-cart trigger not found")
	// ErrRowNotFound: в таблице корзины нет строки с таким id.
	ErrRowNotFound = errors.New("cart row not found")
)

// IsMalformedCart проверяет, является ли ошибка ошибкой разбора сохранённой корзины.
func IsMalformedCart(err error) bool {
	return errors.Is(err, ErrCartMalformed)
}
