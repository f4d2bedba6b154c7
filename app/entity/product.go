package entity

// Price is stored in minor currency units (paise for INR).
type Product struct {
	ID                uint64
	ProductID         string
	Title             string
	Description       string
	Price             int64
	QuantityAvailable int64
}
