package models

// Category представляет категорию товара
type Category string

const (
	CategoryGiftCard  Category = "giftcard"
	CategoryGame      Category = "game"
	CategoryAccessory Category = "accessory"
	CategoryBundle    Category = "bundle"
)

// Digital сообщает, относится ли категория к цифровым товарам
// с мгновенной доставкой (без физической отправки).
func (c Category) Digital() bool {
	return c == CategoryGiftCard
}

// Product представляет товар каталога
type Product struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	UnitPrice     float64  `json:"unit_price"`
	OriginalPrice *float64 `json:"original_price,omitempty"`
	Category      Category `json:"category"`
}
