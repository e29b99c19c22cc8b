package models

// Account представляет денежный счет, ровно один на пользователя
type Account struct {
	ID      int64   // Уникальный идентификатор счета
	UserID  int64   // Ссылка на владельца (таблица users)
	Balance float64 // Текущий баланс счета
}
