package models

// User представляет пользователя. Регистрация и аутентификация живут во
// внешнем сервисе, здесь от пользователя нужна только корзина.
type User struct {
	ID       int64
	Email    string
	CartData map[int64]int // id блюда -> количество
}
