// Package chat holds the conversation core: the repository owning the chat
// and message collections, and the service that sequences writes with push
// notification fan-out.
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dorhakim100/Sell-It-Backend/internal/apperr"
	"github.com/dorhakim100/Sell-It-Backend/internal/db"
	"github.com/dorhakim100/Sell-It-Backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// PageSize is the fixed number of chats per listing page.
const PageSize = 3

// Filter selects chats for listing and page counting. Text is reserved and
// not matched against anything yet.
type Filter struct {
	Text          string
	ParticipantID string
	ChatIDs       []string
	PageIdx       int
}

type Repository struct {
	gw  db.Collections
	log *zap.SugaredLogger
}

func NewRepository(gw db.Collections, log *zap.SugaredLogger) *Repository {
	return &Repository{gw: gw, log: log}
}

// buildCriteria mirrors the listing match: restrict by participant and/or an
// explicit id set. A malformed chat id is a validation error.
func buildCriteria(f Filter) (bson.M, error) {
	criteria := bson.M{}
	if f.ParticipantID != "" {
		criteria["users"] = bson.M{"$in": []string{f.ParticipantID}}
	}
	if len(f.ChatIDs) > 0 {
		oids := make([]primitive.ObjectID, 0, len(f.ChatIDs))
		for _, hex := range f.ChatIDs {
			id, err := models.ParseID(hex)
			if err != nil {
				return nil, err
			}
			oids = append(oids, id.ObjectID())
		}
		criteria["_id"] = bson.M{"$in": oids}
	}
	return criteria, nil
}

// pairCriteria matches the single 1:1 chat between two users, regardless of
// the order they are given in.
func pairCriteria(userA, userB string) bson.M {
	return bson.M{"users": bson.M{"$all": []string{userA, userB}, "$size": 2}}
}

// ListChats returns one page of chat summaries with the latest message and
// the joined participant details attached. Ordering is by the latest
// message's sentAt, most recent first; chats with no messages sort last.
// The latest message is the last element of the messages array — insertion
// order is authoritative, not timestamps.
func (r *Repository) ListChats(ctx context.Context, f Filter) ([]models.ChatSummary, error) {
	criteria, err := buildCriteria(f)
	if err != nil {
		return nil, err
	}
	coll, err := r.gw.Collection(ctx, db.ChatCollection)
	if err != nil {
		return nil, err
	}

	skip := f.PageIdx * PageSize
	pipeline := []bson.M{
		{"$match": criteria},
		{"$addFields": bson.M{
			"latestMessageId": bson.M{"$arrayElemAt": []interface{}{"$messages", -1}},
		}},
		{"$lookup": bson.M{
			"from":         db.MessageCollection,
			"localField":   "latestMessageId",
			"foreignField": "_id",
			"as":           "latestMessage",
		}},
		{"$addFields": bson.M{
			"latestMessage": bson.M{"$arrayElemAt": []interface{}{"$latestMessage", 0}},
		}},
		// Zero time pushes message-less chats to the end of the listing.
		{"$addFields": bson.M{
			"lastActivity": bson.M{"$ifNull": []interface{}{"$latestMessage.sentAt", time.Unix(0, 0).UTC()}},
		}},
		{"$sort": bson.M{"lastActivity": -1}},
		{"$skip": skip},
		{"$limit": PageSize},
		{"$addFields": bson.M{
			"userIds": bson.M{"$map": bson.M{
				"input": "$users",
				"as":    "userId",
				"in":    bson.M{"$toObjectId": "$$userId"},
			}},
		}},
		{"$lookup": bson.M{
			"from":         db.UserCollection,
			"localField":   "userIds",
			"foreignField": "_id",
			"as":           "userDetails",
		}},
		{"$project": bson.M{
			"_id":           1,
			"messages":      1,
			"latestMessage": 1,
			"userDetails": bson.M{"$map": bson.M{
				"input": "$userDetails",
				"as":    "user",
				"in": bson.M{
					"_id":            "$$user._id",
					"fullname":       "$$user.fullname",
					"username":       "$$user.username",
					"email":          "$$user.email",
					"image":          "$$user.image",
					"phone":          "$$user.phone",
					"expoPushTokens": "$$user.expoPushTokens",
				},
			}},
		}},
	}

	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		r.log.Errorw("list chats aggregation failed", "op", "ListChats", "err", err)
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ChatSummary
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MaxPage counts the chats matching the filter with the same criteria as
// ListChats and returns ceil(count / PageSize).
func (r *Repository) MaxPage(ctx context.Context, f Filter) (int, error) {
	criteria, err := buildCriteria(f)
	if err != nil {
		return 0, err
	}
	coll, err := r.gw.Collection(ctx, db.ChatCollection)
	if err != nil {
		return 0, err
	}
	n, err := coll.CountDocuments(ctx, criteria)
	if err != nil {
		r.log.Errorw("count chats failed", "op", "MaxPage", "err", err)
		return 0, err
	}
	return maxPage(n), nil
}

func maxPage(count int64) int {
	return int((count + PageSize - 1) / PageSize)
}

// ChatExists looks up the 1:1 chat between two users. The match is
// symmetric: the order of the arguments does not matter.
func (r *Repository) ChatExists(ctx context.Context, userA, userB string) (*models.Chat, error) {
	coll, err := r.gw.Collection(ctx, db.ChatCollection)
	if err != nil {
		return nil, err
	}
	var chat models.Chat
	if err := coll.FindOne(ctx, pairCriteria(userA, userB)).Decode(&chat); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: chat between %s and %s", apperr.ErrNotFound, userA, userB)
		}
		return nil, err
	}
	return &chat, nil
}

// GetChatByID returns the full chat: every participant summary and the
// complete message history, in messages-array order. As a side effect it
// marks every message addressed to the requester as read; re-fetching a chat
// is a no-op on already-read messages.
func (r *Repository) GetChatByID(ctx context.Context, chatID, requesterID string) (*models.FullChat, error) {
	id, err := models.ParseID(chatID)
	if err != nil {
		return nil, err
	}
	chatColl, err := r.gw.Collection(ctx, db.ChatCollection)
	if err != nil {
		return nil, err
	}

	var chat models.Chat
	if err := chatColl.FindOne(ctx, bson.M{"_id": id.ObjectID()}).Decode(&chat); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: chat %s", apperr.ErrNotFound, chatID)
		}
		return nil, err
	}

	msgColl, err := r.gw.Collection(ctx, db.MessageCollection)
	if err != nil {
		return nil, err
	}
	if requesterID != "" && len(chat.Messages) > 0 {
		_, err := msgColl.UpdateMany(ctx,
			bson.M{"_id": bson.M{"$in": chat.Messages}, "to": requesterID},
			bson.M{"$set": bson.M{"isRead": true}},
		)
		if err != nil {
			r.log.Errorw("mark messages read failed", "op", "GetChatByID", "chatId", chatID, "err", err)
			return nil, err
		}
	}

	msgs, err := r.messagesInOrder(ctx, msgColl, chat.Messages)
	if err != nil {
		return nil, err
	}
	details, err := r.userDetails(ctx, chat.Users)
	if err != nil {
		return nil, err
	}

	return &models.FullChat{
		ID:          chat.ID,
		Users:       chat.Users,
		UserDetails: details,
		Messages:    msgs,
	}, nil
}

// messagesInOrder resolves message documents and restores the chat's
// insertion order; a $in find returns them in whatever order mongo likes.
func (r *Repository) messagesInOrder(ctx context.Context, coll db.Collection, ids []primitive.ObjectID) ([]models.Message, error) {
	if len(ids) == 0 {
		return []models.Message{}, nil
	}
	cur, err := coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var fetched []models.Message
	if err := cur.All(ctx, &fetched); err != nil {
		return nil, err
	}
	return orderMessages(ids, fetched), nil
}

func orderMessages(ids []primitive.ObjectID, msgs []models.Message) []models.Message {
	byID := make(map[primitive.ObjectID]models.Message, len(msgs))
	for _, m := range msgs {
		byID[m.ID] = m
	}
	ordered := make([]models.Message, 0, len(ids))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			ordered = append(ordered, m)
		}
	}
	return ordered
}

func (r *Repository) userDetails(ctx context.Context, userIDs []string) ([]models.UserSummary, error) {
	oids := make([]primitive.ObjectID, 0, len(userIDs))
	for _, hex := range userIDs {
		id, err := models.ParseID(hex)
		if err != nil {
			return nil, err
		}
		oids = append(oids, id.ObjectID())
	}
	coll, err := r.gw.Collection(ctx, db.UserCollection)
	if err != nil {
		return nil, err
	}
	cur, err := coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var details []models.UserSummary
	if err := cur.All(ctx, &details); err != nil {
		return nil, err
	}
	return details, nil
}

// CreateChat inserts a fresh chat between two users with an empty message
// list. It does not check for an existing pair — callers that care go
// through ChatExists first.
func (r *Repository) CreateChat(ctx context.Context, userA, userB string) (string, error) {
	coll, err := r.gw.Collection(ctx, db.ChatCollection)
	if err != nil {
		return "", err
	}
	res, err := coll.InsertOne(ctx, models.Chat{
		Users:    []string{userA, userB},
		Messages: []primitive.ObjectID{},
	})
	if err != nil {
		r.log.Errorw("insert chat failed", "op", "CreateChat", "err", err)
		return "", err
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

// AppendMessage persists the message document first, then pushes its id onto
// the owning chat, so the chat never references a message that does not
// exist. A chat id that matches nothing is a NotFound, never a silent drop.
func (r *Repository) AppendMessage(ctx context.Context, chatID string, msg models.Message) (*models.Message, error) {
	if msg.Content == "" || msg.From == "" || msg.To == "" {
		return nil, fmt.Errorf("%w: message requires content, from and to", apperr.ErrBadRequest)
	}
	id, err := models.ParseID(chatID)
	if err != nil {
		return nil, err
	}

	msg.ID = primitive.NewObjectID()
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}
	msg.IsRead = false

	msgColl, err := r.gw.Collection(ctx, db.MessageCollection)
	if err != nil {
		return nil, err
	}
	if _, err := msgColl.InsertOne(ctx, msg); err != nil {
		r.log.Errorw("insert message failed", "op", "AppendMessage", "chatId", chatID, "err", err)
		return nil, err
	}

	chatColl, err := r.gw.Collection(ctx, db.ChatCollection)
	if err != nil {
		return nil, err
	}
	res, err := chatColl.UpdateOne(ctx,
		bson.M{"_id": id.ObjectID()},
		bson.M{"$push": bson.M{"messages": msg.ID}},
	)
	if err != nil {
		r.log.Errorw("append message id failed", "op", "AppendMessage", "chatId", chatID, "err", err)
		return nil, err
	}
	if res.MatchedCount == 0 {
		// The chat vanished between insert and append; drop the orphan.
		_, _ = msgColl.DeleteOne(ctx, bson.M{"_id": msg.ID})
		return nil, fmt.Errorf("%w: chat %s", apperr.ErrNotFound, chatID)
	}
	return &msg, nil
}

// RemoveMessage deletes the message document and pulls its id from the chat.
// A message that was already gone is a NotFound and the chat is untouched.
func (r *Repository) RemoveMessage(ctx context.Context, messageID, chatID string) (string, error) {
	msgID, err := models.ParseID(messageID)
	if err != nil {
		return "", err
	}
	cID, err := models.ParseID(chatID)
	if err != nil {
		return "", err
	}

	msgColl, err := r.gw.Collection(ctx, db.MessageCollection)
	if err != nil {
		return "", err
	}
	res, err := msgColl.DeleteOne(ctx, bson.M{"_id": msgID.ObjectID()})
	if err != nil {
		r.log.Errorw("delete message failed", "op", "RemoveMessage", "messageId", messageID, "err", err)
		return "", err
	}
	if res.DeletedCount == 0 {
		return "", fmt.Errorf("%w: message %s", apperr.ErrNotFound, messageID)
	}

	chatColl, err := r.gw.Collection(ctx, db.ChatCollection)
	if err != nil {
		return "", err
	}
	if _, err := chatColl.UpdateOne(ctx,
		bson.M{"_id": cID.ObjectID()},
		bson.M{"$pull": bson.M{"messages": msgID.ObjectID()}},
	); err != nil {
		r.log.Errorw("pull message id failed", "op", "RemoveMessage", "chatId", chatID, "err", err)
		return "", err
	}
	return messageID, nil
}

// RemoveChat deletes the chat document only. Its messages are left behind;
// cleanup of orphans is a known gap, kept as-is on purpose.
func (r *Repository) RemoveChat(ctx context.Context, chatID string) (string, error) {
	id, err := models.ParseID(chatID)
	if err != nil {
		return "", err
	}
	coll, err := r.gw.Collection(ctx, db.ChatCollection)
	if err != nil {
		return "", err
	}
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id.ObjectID()})
	if err != nil {
		r.log.Errorw("delete chat failed", "op", "RemoveChat", "chatId", chatID, "err", err)
		return "", err
	}
	if res.DeletedCount == 0 {
		return "", fmt.Errorf("%w: chat %s", apperr.ErrNotFound, chatID)
	}
	return chatID, nil
}
