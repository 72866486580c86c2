package mongo

import (
	"context"
	"fmt"

	"github.com/appetiteclub/serving/pkg"
	"github.com/appetiteclub/serving/services/serving/internal/serving"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GroupRepo stores each serving group, items and prep list included, as one
// document so a write never splits a group.
type GroupRepo struct {
	base *BaseRepo
}

func NewGroupRepo(base *BaseRepo) *GroupRepo {
	return &GroupRepo{base: base}
}

func (r *GroupRepo) collection() (*mongo.Collection, error) {
	db := r.base.GetDatabase()
	if db == nil {
		return nil, fmt.Errorf("mongo not started")
	}
	return db.Collection(pkg.TableServingGroups), nil
}

func (r *GroupRepo) List(ctx context.Context) ([]*serving.Group, error) {
	coll, err := r.collection()
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list serving groups: %w", err)
	}
	defer cursor.Close(ctx)

	groups := []*serving.Group{}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("cannot decode serving groups: %w", err)
	}
	return groups, nil
}

// Upsert replaces the whole row. The last writer wins.
func (r *GroupRepo) Upsert(ctx context.Context, g *serving.Group) error {
	if g == nil {
		return fmt.Errorf("serving group is nil")
	}
	coll, err := r.collection()
	if err != nil {
		return err
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := coll.ReplaceOne(ctx, bson.M{"_id": g.ID}, g, opts); err != nil {
		return fmt.Errorf("cannot upsert serving group: %w", err)
	}
	return nil
}

// Delete removes the row. A row already gone is not an error: another
// client may have deleted it first.
func (r *GroupRepo) Delete(ctx context.Context, id uuid.UUID) error {
	coll, err := r.collection()
	if err != nil {
		return err
	}

	if _, err := coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("cannot delete serving group: %w", err)
	}
	return nil
}
