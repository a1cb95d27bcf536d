package models

// Cart представляет корзину: product_id -> количество.
// Строки с нулевым количеством в корзине не хранятся.
type Cart map[string]int

// IsEmpty сообщает, пуста ли корзина
func (c Cart) IsEmpty() bool {
	return len(c) == 0
}

// TotalQuantity возвращает суммарное количество товаров в корзине
func (c Cart) TotalQuantity() int {
	total := 0
	for _, qty := range c {
		total += qty
	}
	return total
}

// AddCartItemRequest представляет запрос на добавление товара в корзину
type AddCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity,omitempty"` // 0 трактуется как 1
}

// SetCartQuantityRequest представляет запрос на установку количества
type SetCartQuantityRequest struct {
	Quantity int `json:"quantity"`
}
