package models

// User представляет пользователя, username — это email, он же логин
type User struct {
	ID        int64
	Username  string
	PassHash  []byte
	FirstName string
	LastName  string
}
