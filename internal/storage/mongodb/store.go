package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"
	"todoKeeper/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const disconnectTimeout = 5 * time.Second

type item struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func New(ctx context.Context, uri, database, collection string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		logger.Error("Store: Ошибка подключения к MongoDB", err)
		return nil, fmt.Errorf("подключение к mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		logger.Error("Store: Неудачная проверка ping MongoDB", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Store: Подключение к MongoDB",
		zap.String("database", database),
		zap.String("collection", collection))

	return &Store{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

func (s *Store) GetItem(ctx context.Context, key string) (string, bool, error) {
	var doc item
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("чтение ключа %s: %w", key, err)
	}
	return doc.Value, true, nil
}

func (s *Store) SetItem(ctx context.Context, key, value string) error {
	update := bson.M{"$set": bson.M{"value": value, "updated_at": time.Now().UTC()}}
	_, err := s.collection.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("запись ключа %s: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()

	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("отключение от mongo: %w", err)
	}
	logger.Info("Store: Соединение с MongoDB закрыто")
	return nil
}
