// Package item is the marketplace catalog.
package item

import (
	"context"
	"fmt"

	"github.com/dorhakim100/Sell-It-Backend/internal/apperr"
	"github.com/dorhakim100/Sell-It-Backend/internal/db"
	"github.com/dorhakim100/Sell-It-Backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// PageSize matches the chat listing convention.
const PageSize = 3

type Filter struct {
	Text    string
	SoldBy  string
	PageIdx int
}

type Repository struct {
	gw  db.Collections
	log *zap.SugaredLogger
}

func NewRepository(gw db.Collections, log *zap.SugaredLogger) *Repository {
	return &Repository{gw: gw, log: log}
}

func buildCriteria(f Filter) bson.M {
	criteria := bson.M{}
	if f.Text != "" {
		txt := bson.M{"$regex": f.Text, "$options": "i"}
		criteria["$or"] = []bson.M{{"label": txt}, {"description": txt}}
	}
	if f.SoldBy != "" {
		criteria["sellingUser.id"] = f.SoldBy
	}
	return criteria
}

// sellerJoin resolves the selling user's profile onto each item.
func sellerJoin() []bson.M {
	return []bson.M{
		{"$addFields": bson.M{
			"sellerId": bson.M{"$toObjectId": "$sellingUser.id"},
		}},
		{"$lookup": bson.M{
			"from":         db.UserCollection,
			"localField":   "sellerId",
			"foreignField": "_id",
			"as":           "userDetails",
		}},
		{"$addFields": bson.M{
			"userDetails": bson.M{"$arrayElemAt": []interface{}{"$userDetails", 0}},
		}},
		{"$project": bson.M{"sellerId": 0, "userDetails.password": 0}},
	}
}

func (r *Repository) Query(ctx context.Context, f Filter) ([]bson.M, error) {
	coll, err := r.gw.Collection(ctx, db.ItemCollection)
	if err != nil {
		return nil, err
	}
	pipeline := []bson.M{
		{"$match": buildCriteria(f)},
		{"$sort": bson.M{"_id": -1}},
		{"$skip": f.PageIdx * PageSize},
		{"$limit": PageSize},
	}
	pipeline = append(pipeline, sellerJoin()...)

	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		r.log.Errorw("list items failed", "op", "Query", "err", err)
		return nil, err
	}
	defer cur.Close(ctx)
	var items []bson.M
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Repository) MaxPage(ctx context.Context, f Filter) (int, error) {
	coll, err := r.gw.Collection(ctx, db.ItemCollection)
	if err != nil {
		return 0, err
	}
	n, err := coll.CountDocuments(ctx, buildCriteria(f))
	if err != nil {
		return 0, err
	}
	return int((n + PageSize - 1) / PageSize), nil
}

func (r *Repository) GetByID(ctx context.Context, itemID string) (bson.M, error) {
	id, err := models.ParseID(itemID)
	if err != nil {
		return nil, err
	}
	coll, err := r.gw.Collection(ctx, db.ItemCollection)
	if err != nil {
		return nil, err
	}
	pipeline := []bson.M{{"$match": bson.M{"_id": id.ObjectID()}}}
	pipeline = append(pipeline, sellerJoin()...)
	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var items []bson.M
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: item %s", apperr.ErrNotFound, itemID)
	}
	item := items[0]
	// creation time lives in the id, not a separate field
	item["createdAt"] = id.Timestamp()
	return item, nil
}

func (r *Repository) Add(ctx context.Context, it models.Item) (*models.Item, error) {
	if it.Label == "" || it.SellingUser.ID == "" {
		return nil, fmt.Errorf("%w: item requires label and seller", apperr.ErrBadRequest)
	}
	coll, err := r.gw.Collection(ctx, db.ItemCollection)
	if err != nil {
		return nil, err
	}
	res, err := coll.InsertOne(ctx, it)
	if err != nil {
		r.log.Errorw("insert item failed", "op", "Add", "err", err)
		return nil, err
	}
	it.ID = res.InsertedID.(primitive.ObjectID)
	return &it, nil
}

func (r *Repository) Update(ctx context.Context, it models.Item) error {
	if it.ID.IsZero() {
		return fmt.Errorf("%w: item id required", apperr.ErrBadRequest)
	}
	coll, err := r.gw.Collection(ctx, db.ItemCollection)
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{
		"label":       it.Label,
		"description": it.Description,
		"price":       it.Price,
		"images":      it.Images,
		"isSold":      it.IsSold,
	}}
	res, err := coll.UpdateOne(ctx, bson.M{"_id": it.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: item %s", apperr.ErrNotFound, it.ID.Hex())
	}
	return nil
}

func (r *Repository) Remove(ctx context.Context, itemID string) (string, error) {
	id, err := models.ParseID(itemID)
	if err != nil {
		return "", err
	}
	coll, err := r.gw.Collection(ctx, db.ItemCollection)
	if err != nil {
		return "", err
	}
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id.ObjectID()})
	if err != nil {
		return "", err
	}
	if res.DeletedCount == 0 {
		return "", fmt.Errorf("%w: item %s", apperr.ErrNotFound, itemID)
	}
	return itemID, nil
}

// Owner check for updates: admins may touch anything.
func CanEdit(identity *models.Identity, sellerID string) error {
	if identity.IsAdmin || identity.ID == sellerID {
		return nil
	}
	return fmt.Errorf("%w: not your item", apperr.ErrForbidden)
}
