package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/openroomhq/openroom/internal/models"
)

// MongoStore handles MongoDB operations. Documents keep the original wire
// field names (name/lastStatus, from/to/text/type/time) so an existing
// database can be pointed at directly.
type MongoStore struct {
	client       *mongo.Client
	participants *mongo.Collection
	messages     *mongo.Collection
}

// NewMongoStore connects to MongoDB and returns a store bound to the given
// database name.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(dbName)
	return &MongoStore{
		client:       client,
		participants: db.Collection("participants"),
		messages:     db.Collection("messages"),
	}, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() {
	_ = s.client.Disconnect(context.Background())
}

// Ping checks the MongoDB connection.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// ListParticipants returns all participants.
func (s *MongoStore) ListParticipants(ctx context.Context) ([]models.Participant, error) {
	cursor, err := s.participants.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var participants []models.Participant
	if err := cursor.All(ctx, &participants); err != nil {
		return nil, err
	}
	return participants, nil
}

// GetParticipant retrieves a participant by name.
func (s *MongoStore) GetParticipant(ctx context.Context, name string) (*models.Participant, error) {
	var p models.Participant
	err := s.participants.FindOne(ctx, bson.M{"name": name}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// InsertParticipant inserts a participant record.
func (s *MongoStore) InsertParticipant(ctx context.Context, p *models.Participant) error {
	_, err := s.participants.InsertOne(ctx, p)
	return err
}

// UpdateParticipantStatus sets a participant's lastStatus.
func (s *MongoStore) UpdateParticipantStatus(ctx context.Context, name string, lastStatus int64) error {
	_, err := s.participants.UpdateOne(ctx,
		bson.M{"name": name},
		bson.M{"$set": bson.M{"lastStatus": lastStatus}},
	)
	return err
}

// DeleteParticipant removes a participant by name.
func (s *MongoStore) DeleteParticipant(ctx context.Context, name string) error {
	_, err := s.participants.DeleteOne(ctx, bson.M{"name": name})
	return err
}

// InsertMessage inserts a message, assigning an ObjectID-derived ID.
func (s *MongoStore) InsertMessage(ctx context.Context, m *models.Message) error {
	if m.ID == "" {
		m.ID = primitive.NewObjectID().Hex()
	}
	_, err := s.messages.InsertOne(ctx, m)
	return err
}

// GetMessage retrieves a message by ID.
func (s *MongoStore) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	var m models.Message
	err := s.messages.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// ListVisibleMessages returns messages visible to the viewer in natural
// (insertion) order: public posts, broadcast audience, addressed to the
// viewer, or sent by the viewer.
func (s *MongoStore) ListVisibleMessages(ctx context.Context, viewer, broadcast string) ([]models.Message, error) {
	filter := bson.M{"$or": []bson.M{
		{"type": models.TypeMessage},
		{"to": broadcast},
		{"to": viewer},
		{"from": viewer},
	}}

	cursor, err := s.messages.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// UpdateMessage replaces to/text/type in place. From and ID are immutable.
func (s *MongoStore) UpdateMessage(ctx context.Context, id, to, text, msgType string) error {
	_, err := s.messages.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"to": to, "text": text, "type": msgType}},
	)
	return err
}

// DeleteMessage removes a message by ID.
func (s *MongoStore) DeleteMessage(ctx context.Context, id string) error {
	_, err := s.messages.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
