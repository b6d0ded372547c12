package domain

import "time"

// Order is a grading order: the cards a customer submitted, the computed
// total in euro cents and the shipping details. StatusID references the
// grading-status catalog and is advanced by back-office staff.
type Order struct {
	OrderID      string       `json:"id" dynamodbav:"order_id"`
	UserID       string       `json:"user_id" dynamodbav:"user_id"`
	Items        []OrderItem  `json:"items" dynamodbav:"items"`
	Total        int64        `json:"total" dynamodbav:"total"`
	StatusID     string       `json:"status_id" dynamodbav:"status_id"`
	CustomerInfo CustomerInfo `json:"customer_info" dynamodbav:"customer_info"`
	CreatedAt    time.Time    `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time    `json:"updated" dynamodbav:"updated_at"`
}

// OrderItem is one card plus the grading service bought for it.
// UnitPrice is in euro cents.
type OrderItem struct {
	CardName  string `json:"card_name" dynamodbav:"card_name"`
	Quantity  int64  `json:"quantity" dynamodbav:"quantity"`
	UnitPrice int64  `json:"unit_price" dynamodbav:"unit_price"`
}

type CustomerInfo struct {
	FirstName  string `json:"first_name" dynamodbav:"first_name"`
	LastName   string `json:"last_name" dynamodbav:"last_name"`
	Address    string `json:"address" dynamodbav:"address"`
	City       string `json:"city" dynamodbav:"city"`
	PostalCode string `json:"postal_code" dynamodbav:"postal_code"`
	Country    string `json:"country" dynamodbav:"country"`
}

type CreateOrderRequest struct {
	Items        []OrderItemInput  `json:"items" validate:"required,min=1,dive"`
	Total        int64             `json:"total" validate:"required,gt=0"`
	CustomerInfo CustomerInfoInput `json:"customerInfo" validate:"required"`
}

type OrderItemInput struct {
	CardName  string `json:"card_name" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
	UnitPrice int64  `json:"unit_price" validate:"required,gt=0"`
}

type CustomerInfoInput struct {
	FirstName  string `json:"firstName" validate:"required"`
	LastName   string `json:"lastName" validate:"required"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
}
