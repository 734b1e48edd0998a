package models

import (
	"fmt"
	"time"

	"github.com/dorhakim100/Sell-It-Backend/internal/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ID wraps a mongo ObjectID so hex strings from the outside world are parsed
// exactly once, at the storage boundary. A malformed id is a validation
// error, never a panic.
type ID struct {
	oid primitive.ObjectID
}

func NewID() ID {
	return ID{oid: primitive.NewObjectID()}
}

func ParseID(hex string) (ID, error) {
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return ID{}, fmt.Errorf("%w: invalid id %q", apperr.ErrBadRequest, hex)
	}
	return ID{oid: oid}, nil
}

func FromObjectID(oid primitive.ObjectID) ID { return ID{oid: oid} }

func (id ID) ObjectID() primitive.ObjectID { return id.oid }
func (id ID) Hex() string                  { return id.oid.Hex() }
func (id ID) IsZero() bool                 { return id.oid.IsZero() }

// Timestamp is the creation time encoded in the id, used where documents
// carry no createdAt field of their own.
func (id ID) Timestamp() time.Time { return id.oid.Timestamp() }
