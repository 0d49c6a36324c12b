package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/nutridata/portal/internal/core/domain"
)

func TestToDocument_MapsEvent(t *testing.T) {
	madrid := time.FixedZone("CEST", 2*60*60)
	event := &domain.AuthEvent{
		Kind:      domain.EventLoginSucceeded,
		Email:     "doc@example.com",
		UserID:    "7",
		Role:      domain.RoleAdmin,
		RemoteIP:  "10.0.0.1",
		CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, madrid),
	}

	doc := toDocument(event, time.Now())

	assert.Equal(t, "login_succeeded", doc.Kind)
	assert.Equal(t, "doc@example.com", doc.Email)
	assert.Equal(t, "7", doc.UserID)
	assert.Equal(t, "admin", doc.Role)
	assert.Equal(t, "10.0.0.1", doc.RemoteIP)
	assert.Equal(t, time.UTC, doc.CreatedAt.Location())
	assert.True(t, doc.CreatedAt.Equal(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)))
	assert.True(t, doc.ID.IsZero(), "the server assigns _id")
}

func TestToDocument_StampsMissingTime(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	doc := toDocument(&domain.AuthEvent{Kind: domain.EventLogout}, now)
	assert.True(t, doc.CreatedAt.Equal(now))
}

func TestToDocument_BSONShape(t *testing.T) {
	doc := toDocument(&domain.AuthEvent{
		Kind:   domain.EventLoginFailed,
		Email:  "a@b.com",
		Reason: "rejected",
	}, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	assert.Equal(t, "login_failed", m["kind"])
	assert.Equal(t, "a@b.com", m["email"])
	assert.Equal(t, "rejected", m["reason"])
	assert.Contains(t, m, "created_at")
	for _, absent := range []string{"_id", "user_id", "role", "remote_ip"} {
		assert.NotContains(t, m, absent)
	}
}

func TestIndexModels(t *testing.T) {
	models := indexModels(48 * time.Hour)
	require.Len(t, models, 2)

	assert.Equal(t, bson.D{{Key: "email", Value: 1}, {Key: "created_at", Value: -1}}, models[0].Keys)
	assert.Nil(t, models[0].Options)

	assert.Equal(t, bson.D{{Key: "created_at", Value: 1}}, models[1].Keys)
	require.NotNil(t, models[1].Options)
	require.NotNil(t, models[1].Options.ExpireAfterSeconds)
	assert.Equal(t, int32(48*60*60), *models[1].Options.ExpireAfterSeconds)
}
