package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cardvault-api/internal/domain"
)

// CardImageRepo provides typed DynamoDB operations for the card-images table.
type CardImageRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewCardImageRepo(client *dynamodb.Client, tableName string) *CardImageRepo {
	return &CardImageRepo{client: client, tableName: tableName}
}

func (r *CardImageRepo) Put(ctx context.Context, img *domain.CardImage) error {
	item, err := attributevalue.MarshalMap(img)
	if err != nil {
		return fmt.Errorf("marshal card image: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *CardImageRepo) Get(ctx context.Context, imageID string) (*domain.CardImage, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("image_id", imageID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("card image not found: %w", domain.ErrNotFound)
	}
	var img domain.CardImage
	if err := attributevalue.UnmarshalMap(out.Item, &img); err != nil {
		return nil, err
	}
	return &img, nil
}

// ListByUser queries the uploaded_by_user_id GSI.
func (r *CardImageRepo) ListByUser(ctx context.Context, userID string) ([]domain.CardImage, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("uploaded_by_user_id-index"),
		KeyConditionExpression: aws.String("uploaded_by_user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, err
	}
	var images []domain.CardImage
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &images); err != nil {
		return nil, err
	}
	return images, nil
}

func (r *CardImageRepo) SoftDelete(ctx context.Context, imageID string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldEnable: false})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("image_id", imageID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}
