package domain

import "time"

// Notification is a grading update shown to the customer ("order received",
// "your card was graded", ...). OrderID is set when the update concerns a
// specific order.
type Notification struct {
	NotificationID string    `json:"id" dynamodbav:"notification_id"`
	UserID         string    `json:"user_id" dynamodbav:"user_id"`
	OrderID        *string   `json:"order_id,omitempty" dynamodbav:"order_id"`
	Message        string    `json:"message" dynamodbav:"message"`
	Read           int       `json:"read" dynamodbav:"is_read"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updated" dynamodbav:"updated_at"`
}
