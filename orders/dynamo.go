package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/craftandcart/storefront/models"
)

// DynamoHistoryAdapter is a DynamoDB-backed HistoryRepository. Table
// primary key: `email` (string).
type DynamoHistoryAdapter struct {
	client *dynamodb.Client
	table  string
}

func NewDynamoHistoryAdapter(client *dynamodb.Client, table string) *DynamoHistoryAdapter {
	return &DynamoHistoryAdapter{client: client, table: table}
}

type ddbHistory struct {
	Email       string         `dynamodbav:"email"`
	Orders      []models.Order `dynamodbav:"orders"`
	TotalOrders int            `dynamodbav:"total_orders"`
	CreatedAt   time.Time      `dynamodbav:"created_at"`
	UpdatedAt   time.Time      `dynamodbav:"updated_at"`
}

func (d *DynamoHistoryAdapter) Get(ctx context.Context, email string) (*models.OrderHistory, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"email": email})
	if err != nil {
		return nil, fmt.Errorf("marshal key: %w", err)
	}
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{TableName: aws.String(d.table), Key: key})
	if err != nil {
		return nil, fmt.Errorf("dynamodb GetItem failed: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var dh ddbHistory
	if err := attributevalue.UnmarshalMap(out.Item, &dh); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return &models.OrderHistory{
		Email:       dh.Email,
		Orders:      dh.Orders,
		TotalOrders: dh.TotalOrders,
		CreatedAt:   dh.CreatedAt,
		UpdatedAt:   dh.UpdatedAt,
	}, nil
}

func (d *DynamoHistoryAdapter) Create(ctx context.Context, history *models.OrderHistory) error {
	item, err := attributevalue.MarshalMap(ddbHistory{
		Email:       history.Email,
		Orders:      history.Orders,
		TotalOrders: history.TotalOrders,
		CreatedAt:   history.CreatedAt,
		UpdatedAt:   history.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: aws.String(d.table), Item: item})
	if err != nil {
		return fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return nil
}

// Append uses list_append with if_not_exists so the update is atomic
// and creates the history record on first order.
func (d *DynamoHistoryAdapter) Append(ctx context.Context, email string, order models.Order) error {
	key, err := attributevalue.MarshalMap(map[string]string{"email": email})
	if err != nil {
		return fmt.Errorf("marshal key: %w", err)
	}
	orderAttr, err := attributevalue.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}
	nowAttr, err := attributevalue.Marshal(time.Now().UTC())
	if err != nil {
		return fmt.Errorf("marshal timestamp: %w", err)
	}

	_, err = d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(d.table),
		Key:       key,
		UpdateExpression: aws.String(
			"SET #orders = list_append(if_not_exists(#orders, :empty), :order), " +
				"#count = if_not_exists(#count, :zero) + :one, " +
				"#updated = :now, " +
				"#created = if_not_exists(#created, :now)",
		),
		ExpressionAttributeNames: map[string]string{
			"#orders":  "orders",
			"#count":   "total_orders",
			"#updated": "updated_at",
			"#created": "created_at",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			":order": &types.AttributeValueMemberL{Value: []types.AttributeValue{orderAttr}},
			":zero":  &types.AttributeValueMemberN{Value: "0"},
			":one":   &types.AttributeValueMemberN{Value: "1"},
			":now":   nowAttr,
		},
	})
	if err != nil {
		return fmt.Errorf("dynamodb UpdateItem failed: %w", err)
	}
	return nil
}
