package catalog

import "github.com/IanyTech/iany-gaming/internal/models"

// Catalog предоставляет доступ к статическому каталогу товаров.
// Каталог неизменен на протяжении жизни процесса.
type Catalog struct {
	products []models.Product
	byID     map[string]*models.Product
}

// New создает каталог из набора товаров
func New(products []models.Product) *Catalog {
	c := &Catalog{
		products: products,
		byID:     make(map[string]*models.Product, len(products)),
	}
	for i := range c.products {
		c.byID[c.products[i].ID] = &c.products[i]
	}
	return c
}

// Default создает каталог со стандартным ассортиментом магазина
func Default() *Catalog {
	return New(defaultProducts())
}

// GetProduct возвращает товар по идентификатору или nil, если товара нет
func (c *Catalog) GetProduct(id string) *models.Product {
	return c.byID[id]
}

// List возвращает все товары каталога
func (c *Catalog) List() []models.Product {
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}

func price(v float64) *float64 { return &v }

func defaultProducts() []models.Product {
	return []models.Product{
		{ID: "xbox-gift-10", Name: "Carta Regalo Xbox 10€", UnitPrice: 9.00, OriginalPrice: price(10.00), Category: models.CategoryGiftCard},
		{ID: "xbox-gift-20", Name: "Carta Regalo Xbox 20€", UnitPrice: 19.15, OriginalPrice: price(20.00), Category: models.CategoryGiftCard},
		{ID: "xbox-gift-50", Name: "Carta Regalo Xbox 50€", UnitPrice: 47.50, OriginalPrice: price(50.00), Category: models.CategoryGiftCard},
		{ID: "psn-gift-10", Name: "Carta Regalo PlayStation 10€", UnitPrice: 9.00, OriginalPrice: price(10.00), Category: models.CategoryGiftCard},
		{ID: "psn-gift-20", Name: "Carta Regalo PlayStation 20€", UnitPrice: 19.15, OriginalPrice: price(20.00), Category: models.CategoryGiftCard},
		{ID: "psn-gift-50", Name: "Carta Regalo PlayStation 50€", UnitPrice: 47.50, OriginalPrice: price(50.00), Category: models.CategoryGiftCard},
		{ID: "steam-gift-10", Name: "Carta Regalo Steam 10€", UnitPrice: 9.00, OriginalPrice: price(10.00), Category: models.CategoryGiftCard},
		{ID: "steam-gift-20", Name: "Carta Regalo Steam 20€", UnitPrice: 23.50, OriginalPrice: price(25.00), Category: models.CategoryGiftCard},
		{ID: "steam-gift-50", Name: "Carta Regalo Steam 50€", UnitPrice: 47.50, OriginalPrice: price(50.00), Category: models.CategoryGiftCard},
		{ID: "valorant-1000", Name: "1000 Valorant Points", UnitPrice: 9.00, OriginalPrice: price(10.00), Category: models.CategoryGiftCard},
		{ID: "valorant-2050", Name: "2050 Valorant Points", UnitPrice: 18.80, OriginalPrice: price(20.00), Category: models.CategoryGiftCard},
		{ID: "valorant-5350", Name: "5350 Valorant Points", UnitPrice: 47.50, OriginalPrice: price(50.00), Category: models.CategoryGiftCard},
		{ID: "vbucks-1000", Name: "1000 V-bucks Fortnite", UnitPrice: 7.59, OriginalPrice: price(8.00), Category: models.CategoryGiftCard},
		{ID: "vbucks-2800", Name: "2800 V-bucks Fortnite", UnitPrice: 21.99, OriginalPrice: price(23.00), Category: models.CategoryGiftCard},
		{ID: "vbucks-5000", Name: "5000 V-bucks Fortnite", UnitPrice: 34.99, OriginalPrice: price(35.00), Category: models.CategoryGiftCard},
		{ID: "vbucks-13500", Name: "13500 V-bucks Fortnite", UnitPrice: 88.59, OriginalPrice: price(90.00), Category: models.CategoryGiftCard},
		{ID: "headset", Name: "Cuffie Gaming 7.1", UnitPrice: 89.90, OriginalPrice: price(103.39), Category: models.CategoryAccessory},
		{ID: "keyboard", Name: "Tastiera Meccanica RGB", UnitPrice: 79.90, OriginalPrice: price(91.89), Category: models.CategoryAccessory},
		{ID: "gt7", Name: "Gran Turismo 7 (PS5)", UnitPrice: 49.99, OriginalPrice: price(57.49), Category: models.CategoryGame},
		{ID: "fc24", Name: "EA Sports FC 24", UnitPrice: 44.99, OriginalPrice: price(51.74), Category: models.CategoryGame},
		{ID: "ps5-bundle", Name: "PS5 + 2 Giochi", UnitPrice: 629.99, OriginalPrice: price(699.99), Category: models.CategoryBundle},
		{ID: "xbox-bundle", Name: "Xbox X + Game Pass", UnitPrice: 589.99, OriginalPrice: price(649.99), Category: models.CategoryBundle},
	}
}
