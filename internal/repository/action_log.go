package repository

import (
	"context"

	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ActionLogRepository is the append-only audit trail of dispatched actions.
// Without a mongo deployment writes are dropped and reads are empty.
type ActionLogRepository interface {
	Insert(ctx context.Context, entry *model.ActionLog) error
	ListRecent(ctx context.Context, cluster string, limit int64) ([]*model.ActionLog, error)
}

func NewActionLogRepository(r *Repository) ActionLogRepository {
	return &actionLogRepository{Repository: r}
}

type actionLogRepository struct {
	*Repository
}

func (r *actionLogRepository) Insert(ctx context.Context, entry *model.ActionLog) error {
	if r.mongo == nil {
		return nil
	}
	res, err := r.mongo.Collection(entry.CollectionName()).InsertOne(ctx, entry)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		entry.ID = id
	}
	return nil
}

func (r *actionLogRepository) ListRecent(ctx context.Context, cluster string, limit int64) ([]*model.ActionLog, error) {
	entries := []*model.ActionLog{}
	if r.mongo == nil {
		return entries, nil
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "create_time", Value: -1}}).
		SetLimit(limit)
	cur, err := r.mongo.Collection(model.ActionLog{}.CollectionName()).Find(ctx, bson.M{"cluster": cluster}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
