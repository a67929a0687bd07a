package models

// User представляет покупателя магазина
type User struct {
	ID        int64
	Email     string
	PassHash  []byte
	FirstName string
	LastName  string
	Phone     string
	Role      string
}
