package http

// UserResponse carries the public user fields only; the password hash never
// leaves the service layer.
type UserResponse struct {
	ID          uint64 `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	IsSuperuser bool   `json:"is_superuser"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

type RefreshResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ProductResponse struct {
	ProductID         string `json:"product_id"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	Price             int64  `json:"price"`
	QuantityAvailable int64  `json:"quantity_available"`
}

type CreateOrderResponse struct {
	OrderID string `json:"order_id"`
}

type VerifyPaymentResponse struct {
	Status    string `json:"status"`
	PaymentID string `json:"payment_id,omitempty"`
}

type OrderResponse struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id,omitempty"`
	Email     string `json:"email"`
	Status    string `json:"status"`
}

type OrdersResponse struct {
	Orders []OrderResponse `json:"orders"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
