package api

import "encoding/json"

// Envelope is the response shape every companion REST resource uses. Data is
// left raw until the caller knows the concrete type.
type Envelope struct {
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
}

type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Product struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

type CartItem struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

type Order struct {
	ID     int        `json:"id"`
	Items  []CartItem `json:"items"`
	Total  float64    `json:"total"`
	Status string     `json:"status"`
}
