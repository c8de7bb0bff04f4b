package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/enersim/energy-simulator/internal/core/domain"
)

const authEventsCollection = "auth_events"

// AuditRepository stores the auth audit trail.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(authEventsCollection)}
}

type mongoAuthEvent struct {
	Username  string `bson:"username"`
	Action    string `bson:"action"`
	Outcome   string `bson:"outcome"`
	ClientIP  string `bson:"client_ip,omitempty"`
	Timestamp int64  `bson:"timestamp"`
}

func (r *AuditRepository) Insert(ctx context.Context, event domain.AuthEvent) error {
	doc := mongoAuthEvent{
		Username:  event.Username,
		Action:    event.Action,
		Outcome:   event.Outcome,
		ClientIP:  event.ClientIP,
		Timestamp: event.Timestamp.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}
