package models

import "time"

// DefaultOrderStatus — статус нового заказа до действий администратора
const DefaultOrderStatus = "Food Processing"

// OrderItem — снимок позиции на момент оформления заказа.
// Это копия данных блюда, а не ссылка на Food: последующие изменения цены
// на размещенные заказы не влияют.
type OrderItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Order представляет заказ пользователя
type Order struct {
	ID        int64          `json:"id"`
	UserID    int64          `json:"userId"`
	Items     []OrderItem    `json:"items"`
	Amount    float64        `json:"amount"`
	Address   map[string]any `json:"address"` // адрес доставки, произвольная структура
	Status    string         `json:"status"`
	Payment   bool           `json:"payment"`
	CreatedAt time.Time      `json:"createdAt"`
}
