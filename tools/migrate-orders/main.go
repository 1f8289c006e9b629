// Command migrate-orders copies order histories from MongoDB into
// DynamoDB, for switching ORDER_BACKEND without losing history.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/craftandcart/storefront/models"
	"github.com/craftandcart/storefront/orders"
)

func main() {
	var mongoURL, dbName, table string
	flag.StringVar(&mongoURL, "mongo", os.Getenv("MONGO_URL"), "MongoDB URL")
	flag.StringVar(&dbName, "db", os.Getenv("MONGO_DB"), "MongoDB database name")
	flag.StringVar(&table, "table", os.Getenv("DYNAMO_ORDER_TABLE"), "DynamoDB table name")
	flag.Parse()

	if mongoURL == "" || dbName == "" {
		log.Fatal("MONGO_URL and MONGO_DB must be set or provided via flags")
	}
	if table == "" {
		table = "order-histories"
	}

	ctx := context.Background()
	mclient, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURL))
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	defer mclient.Disconnect(ctx)

	coll := mclient.Database(dbName).Collection("order_histories")

	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatalf("aws config: %v", err)
	}
	repo := orders.NewDynamoHistoryAdapter(dynamodb.NewFromConfig(awsCfg), table)

	batchSize := int32(500)
	cur, err := coll.Find(ctx, bson.M{}, &options.FindOptions{BatchSize: &batchSize})
	if err != nil {
		log.Fatalf("mongo find: %v", err)
	}
	defer cur.Close(ctx)

	var count int
	for cur.Next(ctx) {
		var history models.OrderHistory
		if err := cur.Decode(&history); err != nil {
			log.Printf("decode error: %v", err)
			continue
		}
		if history.CreatedAt.IsZero() {
			history.CreatedAt = time.Now().UTC()
		}
		if history.UpdatedAt.IsZero() {
			history.UpdatedAt = history.CreatedAt
		}
		if err := repo.Create(ctx, &history); err != nil {
			log.Printf("failed to write history for %s: %v", history.Email, err)
			continue
		}
		count++
		if count%100 == 0 {
			log.Printf("migrated %d histories", count)
		}
	}
	if err := cur.Err(); err != nil {
		log.Fatalf("cursor error: %v", err)
	}
	fmt.Printf("Migration complete. migrated=%d\n", count)
}
