package domain

import "time"

// CardImage is the metadata record for a photo of a card submitted for
// grading. The bytes live in S3 under Object; this record owns access
// control (uploader or admin only).
type CardImage struct {
	ImageID          string    `json:"id" dynamodbav:"image_id"`
	Object           string    `json:"object" dynamodbav:"object"`
	Size             int64     `json:"size" dynamodbav:"size"`
	Type             string    `json:"type" dynamodbav:"type"`
	Name             string    `json:"name" dynamodbav:"name"`
	Hash             string    `json:"hash" dynamodbav:"hash"`
	OrderID          *string   `json:"order_id,omitempty" dynamodbav:"order_id"`
	UploadedByUserID string    `json:"uploaded_by_user_id" dynamodbav:"uploaded_by_user_id"`
	Enable           bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt        time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time `json:"updated" dynamodbav:"updated_at"`
}
