package domain

// Status is one step of the grading pipeline an order moves through
// (received, grading, graded, shipped). Sequence orders the steps for
// display; it carries no transition rules.
type Status struct {
	StatusID    string `json:"id" dynamodbav:"status_id"`
	Description string `json:"description" dynamodbav:"description"`
	Sequence    int    `json:"sequence" dynamodbav:"sequence"`
}

type StatusInput struct {
	Description string `json:"description" validate:"required"`
	Sequence    int    `json:"sequence"`
}
