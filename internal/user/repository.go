// Package user owns the user collection: account CRUD plus the expo push
// token registry the chat fan-out reads from.
package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/dorhakim100/Sell-It-Backend/internal/apperr"
	"github.com/dorhakim100/Sell-It-Backend/internal/db"
	"github.com/dorhakim100/Sell-It-Backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Filter struct {
	Text string
}

type Repository struct {
	gw  db.Collections
	log *zap.SugaredLogger
}

func NewRepository(gw db.Collections, log *zap.SugaredLogger) *Repository {
	return &Repository{gw: gw, log: log}
}

func (r *Repository) Query(ctx context.Context, f Filter) ([]models.User, error) {
	criteria := bson.M{}
	if f.Text != "" {
		txt := bson.M{"$regex": f.Text, "$options": "i"}
		criteria["$or"] = []bson.M{{"username": txt}, {"fullname": txt}}
	}
	coll, err := r.gw.Collection(ctx, db.UserCollection)
	if err != nil {
		return nil, err
	}
	cur, err := coll.Find(ctx, criteria)
	if err != nil {
		r.log.Errorw("find users failed", "op", "Query", "err", err)
		return nil, err
	}
	defer cur.Close(ctx)
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

func (r *Repository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	id, err := models.ParseID(userID)
	if err != nil {
		return nil, err
	}
	coll, err := r.gw.Collection(ctx, db.UserCollection)
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := coll.FindOne(ctx, bson.M{"_id": id.ObjectID()}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: user %s", apperr.ErrNotFound, userID)
		}
		return nil, err
	}
	u.Password = ""
	return &u, nil
}

// GetByLogin finds an account by username, phone or email — whichever the
// user typed into the login form.
func (r *Repository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	coll, err := r.gw.Collection(ctx, db.UserCollection)
	if err != nil {
		return nil, err
	}
	var u models.User
	criteria := bson.M{"$or": []bson.M{
		{"username": login}, {"phone": login}, {"email": login},
	}}
	if err := coll.FindOne(ctx, criteria).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: user %s", apperr.ErrNotFound, login)
		}
		return nil, err
	}
	return &u, nil
}

// GetByAny finds an account whose username, email or phone equals the
// corresponding given value. Empty values are skipped so a signup without a
// phone never collides with other phone-less accounts.
func (r *Repository) GetByAny(ctx context.Context, username, email, phone string) (*models.User, error) {
	var or []bson.M
	if username != "" {
		or = append(or, bson.M{"username": username})
	}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if phone != "" {
		or = append(or, bson.M{"phone": phone})
	}
	if len(or) == 0 {
		return nil, fmt.Errorf("%w: no lookup values", apperr.ErrNotFound)
	}
	coll, err := r.gw.Collection(ctx, db.UserCollection)
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := coll.FindOne(ctx, bson.M{"$or": or}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: user %s", apperr.ErrNotFound, username)
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) Add(ctx context.Context, u models.User) (*models.User, error) {
	coll, err := r.gw.Collection(ctx, db.UserCollection)
	if err != nil {
		return nil, err
	}
	res, err := coll.InsertOne(ctx, u)
	if err != nil {
		r.log.Errorw("insert user failed", "op", "Add", "err", err)
		return nil, err
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return &u, nil
}

// Update saves only the whitelisted profile fields.
func (r *Repository) Update(ctx context.Context, u models.User) error {
	if u.ID.IsZero() {
		return fmt.Errorf("%w: user id required", apperr.ErrBadRequest)
	}
	coll, err := r.gw.Collection(ctx, db.UserCollection)
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{
		"fullname": u.Fullname,
		"image":    u.Image,
		"items":    u.Items,
		"phone":    u.Phone,
		"email":    u.Email,
		"username": u.Username,
		"messages": u.Messages,
	}}
	res, err := coll.UpdateOne(ctx, bson.M{"_id": u.ID}, update)
	if err != nil {
		r.log.Errorw("update user failed", "op", "Update", "userId", u.ID.Hex(), "err", err)
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: user %s", apperr.ErrNotFound, u.ID.Hex())
	}
	return nil
}

func (r *Repository) Remove(ctx context.Context, userID string) error {
	id, err := models.ParseID(userID)
	if err != nil {
		return err
	}
	coll, err := r.gw.Collection(ctx, db.UserCollection)
	if err != nil {
		return err
	}
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id.ObjectID()})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: user %s", apperr.ErrNotFound, userID)
	}
	return nil
}

// AddExpoToken registers a device token; $addToSet keeps the set
// deduplicated no matter how often a device re-registers.
func (r *Repository) AddExpoToken(ctx context.Context, userID, token string) error {
	if token == "" {
		return fmt.Errorf("%w: empty push token", apperr.ErrBadRequest)
	}
	id, err := models.ParseID(userID)
	if err != nil {
		return err
	}
	coll, err := r.gw.Collection(ctx, db.UserCollection)
	if err != nil {
		return err
	}
	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": id.ObjectID()},
		bson.M{"$addToSet": bson.M{"expoPushTokens": token}},
	)
	if err != nil {
		r.log.Errorw("add expo token failed", "op", "AddExpoToken", "userId", userID, "err", err)
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: user %s", apperr.ErrNotFound, userID)
	}
	return nil
}

// PushTokens is the read-only lookup the chat service uses for fan-out.
// An unknown user yields no tokens rather than an error: the message is
// already persisted by the time this runs.
func (r *Repository) PushTokens(ctx context.Context, userID string) ([]string, error) {
	u, err := r.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return u.ExpoPushTokens, nil
}
