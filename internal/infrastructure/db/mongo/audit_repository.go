package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nutridata/portal/internal/core/domain"
	"github.com/nutridata/portal/internal/core/ports"
)

const (
	auditCollection       = "auth_events"
	defaultAuditRetention = 90 * 24 * time.Hour
)

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	coll      *mongo.Collection
	retention time.Duration
}

// NewAuditRepository creates a new AuditRepository. Events older than
// retention are expired by a TTL index created in EnsureIndexes.
func NewAuditRepository(db *mongo.Database, retention time.Duration) *AuditRepository {
	if retention <= 0 {
		retention = defaultAuditRetention
	}
	return &AuditRepository{coll: db.Collection(auditCollection), retention: retention}
}

var _ ports.AuditRepository = (*AuditRepository)(nil)

type mongoAuthEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Kind      string             `bson:"kind"`
	Email     string             `bson:"email,omitempty"`
	UserID    string             `bson:"user_id,omitempty"`
	Role      string             `bson:"role,omitempty"`
	Reason    string             `bson:"reason,omitempty"`
	RemoteIP  string             `bson:"remote_ip,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
}

// EnsureIndexes creates the lookup and retention indexes. Safe to call on every start.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels(r.retention)); err != nil {
		return fmt.Errorf("audit indexes: %w", err)
	}
	return nil
}

// InsertEvent appends one entry to the auth_events collection.
func (r *AuditRepository) InsertEvent(ctx context.Context, event *domain.AuthEvent) error {
	if _, err := r.coll.InsertOne(ctx, toDocument(event, time.Now())); err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}

// indexModels lists the email lookup index and the TTL index that expires
// events after retention.
func indexModels(retention time.Duration) []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}, {Key: "created_at", Value: -1}}},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(retention.Seconds())),
		},
	}
}

// toDocument maps an event onto its stored form. Events without a
// timestamp are stamped with now.
func toDocument(event *domain.AuthEvent, now time.Time) mongoAuthEvent {
	created := event.CreatedAt
	if created.IsZero() {
		created = now
	}
	return mongoAuthEvent{
		Kind:      string(event.Kind),
		Email:     event.Email,
		UserID:    event.UserID.String(),
		Role:      string(event.Role),
		Reason:    event.Reason,
		RemoteIP:  event.RemoteIP,
		CreatedAt: created.UTC(),
	}
}
