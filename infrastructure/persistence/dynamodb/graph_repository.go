package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"mediagraph/application/dto"
	"mediagraph/application/ports"
	"mediagraph/domain/core/valueobjects"
	appErrors "mediagraph/pkg/errors"
	"mediagraph/pkg/utils"
)

const (
	entityTypeGraph = "GRAPH"
	metadataSK      = "METADATA"
	listPartition   = "GRAPHS"

	// DefaultListIndex is the GSI holding every graph ordered by creation
	DefaultListIndex = "GSI1"
)

// API is the subset of the DynamoDB client used by the repository
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// GraphRepository stores graphs in a single DynamoDB table.
// Each graph is one item: PK=GRAPH#<id>, SK=METADATA.
type GraphRepository struct {
	client    API
	tableName string
	listIndex string
	logger    *zap.Logger
	now       func() time.Time
}

// NewGraphRepository creates a new GraphRepository
func NewGraphRepository(client API, tableName string, logger *zap.Logger) *GraphRepository {
	return &GraphRepository{
		client:    client,
		tableName: tableName,
		listIndex: DefaultListIndex,
		logger:    logger,
		now:       time.Now,
	}
}

// graphItem represents the DynamoDB item structure for a graph
type graphItem struct {
	PK         string     `dynamodbav:"PK"`
	SK         string     `dynamodbav:"SK"`
	GSI1PK     string     `dynamodbav:"GSI1PK"`
	GSI1SK     string     `dynamodbav:"GSI1SK"`
	EntityType string     `dynamodbav:"EntityType"`
	GraphID    string     `dynamodbav:"GraphID"`
	Name       string     `dynamodbav:"Name"`
	Nodes      []dto.Node `dynamodbav:"Nodes"`
	Edges      []dto.Edge `dynamodbav:"Edges"`
	CreatedAt  string     `dynamodbav:"CreatedAt"`
	UpdatedAt  string     `dynamodbav:"UpdatedAt"`
}

func graphKey(id valueobjects.GraphID) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("GRAPH#%s", id.String())},
		"SK": &types.AttributeValueMemberS{Value: metadataSK},
	}
}

// Create stores a new, empty graph. An existing id is a conflict.
func (r *GraphRepository) Create(ctx context.Context, id valueobjects.GraphID, name string) (*ports.GraphRecord, error) {
	now := r.now().UTC()
	stamp := utils.FormatTimestamp(now)

	item := graphItem{
		PK:         fmt.Sprintf("GRAPH#%s", id.String()),
		SK:         metadataSK,
		GSI1PK:     listPartition,
		GSI1SK:     fmt.Sprintf("%s#%s", stamp, id.String()),
		EntityType: entityTypeGraph,
		GraphID:    id.String(),
		Name:       name,
		Nodes:      []dto.Node{},
		Edges:      []dto.Edge{},
		CreatedAt:  stamp,
		UpdatedAt:  stamp,
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal graph: %w", err)
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.Name("PK").AttributeNotExists()).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.tableName),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, appErrors.NewConflictError("graph already exists")
		}
		return nil, appErrors.NewDatabaseError("create graph", err)
	}

	r.logger.Debug("Graph created in DynamoDB", zap.String("graphID", id.String()))
	return &ports.GraphRecord{
		ID:        id,
		Name:      name,
		Nodes:     []dto.Node{},
		Edges:     []dto.Edge{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Get retrieves a graph by its ID
func (r *GraphRepository) Get(ctx context.Context, id valueobjects.GraphID) (*ports.GraphRecord, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            graphKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, appErrors.NewDatabaseError("get graph", err)
	}
	if len(result.Item) == 0 {
		return nil, appErrors.NewNotFoundError("graph")
	}

	var item graphItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph: %w", err)
	}
	return item.toRecord(), nil
}

// List returns every graph in creation order, without content
func (r *GraphRepository) List(ctx context.Context) ([]ports.GraphRecord, error) {
	keyExpr := expression.Key("GSI1PK").Equal(expression.Value(listPartition))
	projection := expression.NamesList(
		expression.Name("GraphID"),
		expression.Name("Name"),
		expression.Name("CreatedAt"),
		expression.Name("UpdatedAt"),
	)

	expr, err := expression.NewBuilder().
		WithKeyCondition(keyExpr).
		WithProjection(projection).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.listIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(true),
	}

	var out []ports.GraphRecord
	for {
		result, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, appErrors.NewDatabaseError("list graphs", err)
		}
		for _, raw := range result.Items {
			var item graphItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to parse graph item", zap.Error(err))
				continue
			}
			rec := item.toRecord()
			rec.Nodes, rec.Edges = nil, nil
			out = append(out, *rec)
		}
		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
	return out, nil
}

// Replace swaps the content of an existing graph
func (r *GraphRepository) Replace(ctx context.Context, id valueobjects.GraphID, nodes []dto.Node, edges []dto.Edge) (time.Time, error) {
	if nodes == nil {
		nodes = []dto.Node{}
	}
	if edges == nil {
		edges = []dto.Edge{}
	}
	now := r.now().UTC()

	update := expression.
		Set(expression.Name("Nodes"), expression.Value(nodes)).
		Set(expression.Name("Edges"), expression.Value(edges)).
		Set(expression.Name("UpdatedAt"), expression.Value(utils.FormatTimestamp(now)))

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.Name("PK").AttributeExists()).
		Build()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       graphKey(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return time.Time{}, appErrors.NewNotFoundError("graph")
		}
		return time.Time{}, appErrors.NewDatabaseError("replace graph", err)
	}

	r.logger.Debug("Graph replaced in DynamoDB",
		zap.String("graphID", id.String()),
		zap.Int("nodes", len(nodes)),
		zap.Int("edges", len(edges)),
	)
	return now, nil
}

func (item graphItem) toRecord() *ports.GraphRecord {
	rec := &ports.GraphRecord{
		ID:    valueobjects.GraphID(item.GraphID),
		Name:  item.Name,
		Nodes: item.Nodes,
		Edges: item.Edges,
	}
	rec.CreatedAt, _ = utils.ParseTimestamp(item.CreatedAt)
	rec.UpdatedAt, _ = utils.ParseTimestamp(item.UpdatedAt)
	return rec
}
