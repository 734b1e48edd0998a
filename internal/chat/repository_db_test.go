package chat

import (
	"context"
	"testing"

	"github.com/dorhakim100/Sell-It-Backend/internal/apperr"
	"github.com/dorhakim100/Sell-It-Backend/internal/db"
	"github.com/dorhakim100/Sell-It-Backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// stubColl fails loudly on any collection call a test did not wire.
type stubColl struct{ t *testing.T }

func (s stubColl) FindOne(context.Context, interface{}, ...*options.FindOneOptions) *mongo.SingleResult {
	s.t.Fatal("unexpected FindOne")
	return nil
}

func (s stubColl) Find(context.Context, interface{}, ...*options.FindOptions) (*mongo.Cursor, error) {
	s.t.Fatal("unexpected Find")
	return nil, nil
}

func (s stubColl) Aggregate(context.Context, interface{}, ...*options.AggregateOptions) (*mongo.Cursor, error) {
	s.t.Fatal("unexpected Aggregate")
	return nil, nil
}

func (s stubColl) CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error) {
	s.t.Fatal("unexpected CountDocuments")
	return 0, nil
}

func (s stubColl) InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	s.t.Fatal("unexpected InsertOne")
	return nil, nil
}

func (s stubColl) UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	s.t.Fatal("unexpected UpdateOne")
	return nil, nil
}

func (s stubColl) UpdateMany(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	s.t.Fatal("unexpected UpdateMany")
	return nil, nil
}

func (s stubColl) DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	s.t.Fatal("unexpected DeleteOne")
	return nil, nil
}

// fakeChatColl keeps chat documents in a map and answers the exact filters
// the repository issues against the chat collection.
type fakeChatColl struct {
	stubColl
	docs  map[primitive.ObjectID]models.Chat
	pulls int
}

func (f *fakeChatColl) FindOne(_ context.Context, filter interface{}, _ ...*options.FindOneOptions) *mongo.SingleResult {
	id := filter.(bson.M)["_id"].(primitive.ObjectID)
	if chat, ok := f.docs[id]; ok {
		return mongo.NewSingleResultFromDocument(chat, nil, nil)
	}
	return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
}

func (f *fakeChatColl) UpdateOne(_ context.Context, filter, update interface{}, _ ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	id := filter.(bson.M)["_id"].(primitive.ObjectID)
	chat, ok := f.docs[id]
	if !ok {
		return &mongo.UpdateResult{}, nil
	}
	u := update.(bson.M)
	if push, ok := u["$push"]; ok {
		chat.Messages = append(chat.Messages, push.(bson.M)["messages"].(primitive.ObjectID))
	}
	if pull, ok := u["$pull"]; ok {
		f.pulls++
		gone := pull.(bson.M)["messages"].(primitive.ObjectID)
		kept := make([]primitive.ObjectID, 0, len(chat.Messages))
		for _, m := range chat.Messages {
			if m != gone {
				kept = append(kept, m)
			}
		}
		chat.Messages = kept
	}
	f.docs[id] = chat
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (f *fakeChatColl) DeleteOne(_ context.Context, filter interface{}, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	id := filter.(bson.M)["_id"].(primitive.ObjectID)
	if _, ok := f.docs[id]; !ok {
		return &mongo.DeleteResult{}, nil
	}
	delete(f.docs, id)
	return &mongo.DeleteResult{DeletedCount: 1}, nil
}

// fakeMsgColl mirrors the message collection. lastModified records the
// modified count of the most recent UpdateMany so tests can observe whether
// a read-mark pass actually changed anything.
type fakeMsgColl struct {
	stubColl
	docs         map[primitive.ObjectID]models.Message
	lastModified int64
}

func (f *fakeMsgColl) InsertOne(_ context.Context, document interface{}, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	msg := document.(models.Message)
	f.docs[msg.ID] = msg
	return &mongo.InsertOneResult{InsertedID: msg.ID}, nil
}

func (f *fakeMsgColl) UpdateMany(_ context.Context, filter, update interface{}, _ ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	q := filter.(bson.M)
	to := q["to"].(string)
	ids := q["_id"].(bson.M)["$in"].([]primitive.ObjectID)
	read := update.(bson.M)["$set"].(bson.M)["isRead"].(bool)
	var matched, modified int64
	for _, id := range ids {
		m, ok := f.docs[id]
		if !ok || m.To != to {
			continue
		}
		matched++
		if m.IsRead != read {
			m.IsRead = read
			f.docs[id] = m
			modified++
		}
	}
	f.lastModified = modified
	return &mongo.UpdateResult{MatchedCount: matched, ModifiedCount: modified}, nil
}

func (f *fakeMsgColl) DeleteOne(_ context.Context, filter interface{}, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	id := filter.(bson.M)["_id"].(primitive.ObjectID)
	if _, ok := f.docs[id]; !ok {
		return &mongo.DeleteResult{}, nil
	}
	delete(f.docs, id)
	return &mongo.DeleteResult{DeletedCount: 1}, nil
}

func (f *fakeMsgColl) Find(_ context.Context, filter interface{}, _ ...*options.FindOptions) (*mongo.Cursor, error) {
	ids := filter.(bson.M)["_id"].(bson.M)["$in"].([]primitive.ObjectID)
	docs := make([]interface{}, 0, len(ids))
	// Map iteration order stands in for mongo's unordered $in result.
	for id, m := range f.docs {
		for _, want := range ids {
			if id == want {
				docs = append(docs, m)
			}
		}
	}
	return mongo.NewCursorFromDocuments(docs, nil, nil)
}

// fakeUserColl serves the participant-details join with a fixed result.
type fakeUserColl struct {
	stubColl
	docs []interface{}
}

func (f *fakeUserColl) Find(context.Context, interface{}, ...*options.FindOptions) (*mongo.Cursor, error) {
	return mongo.NewCursorFromDocuments(f.docs, nil, nil)
}

type fakeGateway struct {
	chats db.Collection
	msgs  db.Collection
	users db.Collection
}

func (g *fakeGateway) Collection(_ context.Context, name string) (db.Collection, error) {
	switch name {
	case db.ChatCollection:
		return g.chats, nil
	case db.MessageCollection:
		return g.msgs, nil
	case db.UserCollection:
		return g.users, nil
	}
	return nil, nil
}

func newRepoFixture(t *testing.T) (*Repository, *fakeChatColl, *fakeMsgColl) {
	chats := &fakeChatColl{stubColl: stubColl{t}, docs: map[primitive.ObjectID]models.Chat{}}
	msgs := &fakeMsgColl{stubColl: stubColl{t}, docs: map[primitive.ObjectID]models.Message{}}
	users := &fakeUserColl{stubColl: stubColl{t}}
	gw := &fakeGateway{chats: chats, msgs: msgs, users: users}
	return NewRepository(gw, zap.NewNop().Sugar()), chats, msgs
}

func seedChat(chats *fakeChatColl, users []string, msgIDs ...primitive.ObjectID) primitive.ObjectID {
	id := primitive.NewObjectID()
	chats.docs[id] = models.Chat{ID: id, Users: users, Messages: append([]primitive.ObjectID{}, msgIDs...)}
	return id
}

func TestGetChatByIDMarksRecipientMessagesRead(t *testing.T) {
	repo, chats, msgs := newRepoFixture(t)
	alice := primitive.NewObjectID().Hex()
	bob := primitive.NewObjectID().Hex()

	toBob := models.Message{ID: primitive.NewObjectID(), Content: "hi", From: alice, To: bob}
	toAlice := models.Message{ID: primitive.NewObjectID(), Content: "hey", From: bob, To: alice}
	msgs.docs[toBob.ID] = toBob
	msgs.docs[toAlice.ID] = toAlice
	chatID := seedChat(chats, []string{alice, bob}, toBob.ID, toAlice.ID)

	full, err := repo.GetChatByID(context.Background(), chatID.Hex(), bob)
	require.NoError(t, err)
	require.Len(t, full.Messages, 2)

	// Insertion order survives the unordered fetch.
	assert.Equal(t, toBob.ID, full.Messages[0].ID)
	assert.Equal(t, toAlice.ID, full.Messages[1].ID)

	// Only messages addressed to the requester flip to read.
	assert.True(t, full.Messages[0].IsRead)
	assert.False(t, full.Messages[1].IsRead)
	assert.True(t, msgs.docs[toBob.ID].IsRead)
	assert.False(t, msgs.docs[toAlice.ID].IsRead)
	assert.Equal(t, int64(1), msgs.lastModified)
}

func TestGetChatByIDReadMarkIsIdempotent(t *testing.T) {
	repo, chats, msgs := newRepoFixture(t)
	alice := primitive.NewObjectID().Hex()
	bob := primitive.NewObjectID().Hex()

	msg := models.Message{ID: primitive.NewObjectID(), Content: "hi", From: alice, To: bob}
	msgs.docs[msg.ID] = msg
	chatID := seedChat(chats, []string{alice, bob}, msg.ID)

	_, err := repo.GetChatByID(context.Background(), chatID.Hex(), bob)
	require.NoError(t, err)
	assert.Equal(t, int64(1), msgs.lastModified)

	full, err := repo.GetChatByID(context.Background(), chatID.Hex(), bob)
	require.NoError(t, err)
	assert.Equal(t, int64(0), msgs.lastModified)
	assert.True(t, full.Messages[0].IsRead)
}

func TestGetChatByIDUnknownChat(t *testing.T) {
	repo, _, _ := newRepoFixture(t)
	_, err := repo.GetChatByID(context.Background(), primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAppendMessageLinksIntoChat(t *testing.T) {
	repo, chats, msgs := newRepoFixture(t)
	alice := primitive.NewObjectID().Hex()
	bob := primitive.NewObjectID().Hex()
	chatID := seedChat(chats, []string{alice, bob})

	sent, err := repo.AppendMessage(context.Background(), chatID.Hex(), models.Message{
		Content: "offer accepted", From: alice, To: bob,
	})
	require.NoError(t, err)
	assert.False(t, sent.IsRead)
	assert.False(t, sent.SentAt.IsZero())

	_, ok := msgs.docs[sent.ID]
	assert.True(t, ok)
	require.Len(t, chats.docs[chatID].Messages, 1)
	assert.Equal(t, sent.ID, chats.docs[chatID].Messages[0])
}

func TestAppendMessageUnknownChatDropsOrphan(t *testing.T) {
	repo, _, msgs := newRepoFixture(t)

	_, err := repo.AppendMessage(context.Background(), primitive.NewObjectID().Hex(), models.Message{
		Content: "hello?", From: primitive.NewObjectID().Hex(), To: primitive.NewObjectID().Hex(),
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// The persisted message must not outlive the failed append.
	assert.Empty(t, msgs.docs)
}

func TestRemoveMessageUnknownLeavesChatUntouched(t *testing.T) {
	repo, chats, msgs := newRepoFixture(t)
	alice := primitive.NewObjectID().Hex()
	bob := primitive.NewObjectID().Hex()

	msg := models.Message{ID: primitive.NewObjectID(), Content: "hi", From: alice, To: bob}
	msgs.docs[msg.ID] = msg
	chatID := seedChat(chats, []string{alice, bob}, msg.ID)

	_, err := repo.RemoveMessage(context.Background(), primitive.NewObjectID().Hex(), chatID.Hex())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, 0, chats.pulls)
	assert.Len(t, chats.docs[chatID].Messages, 1)
}

func TestRemoveMessagePullsFromChat(t *testing.T) {
	repo, chats, msgs := newRepoFixture(t)
	alice := primitive.NewObjectID().Hex()
	bob := primitive.NewObjectID().Hex()

	msg := models.Message{ID: primitive.NewObjectID(), Content: "hi", From: alice, To: bob}
	msgs.docs[msg.ID] = msg
	chatID := seedChat(chats, []string{alice, bob}, msg.ID)

	removed, err := repo.RemoveMessage(context.Background(), msg.ID.Hex(), chatID.Hex())
	require.NoError(t, err)
	assert.Equal(t, msg.ID.Hex(), removed)
	assert.Empty(t, msgs.docs)
	assert.Empty(t, chats.docs[chatID].Messages)
}

func TestRemoveChatUnknown(t *testing.T) {
	repo, _, _ := newRepoFixture(t)
	_, err := repo.RemoveChat(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
