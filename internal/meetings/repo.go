package meetings

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jatinupadhyay27/my-meet/internal/domain"
)

// Repo persists meeting metadata. GetByCode returns (nil, nil) when the
// code is unknown.
type Repo interface {
	Create(ctx context.Context, m *Meeting) error
	GetByCode(ctx context.Context, code domain.RoomID) (*Meeting, error)
}

type mongoRepo struct {
	collection *mongo.Collection
}

func NewMongoRepo(client *mongo.Client, database string) Repo {
	return &mongoRepo{collection: client.Database(database).Collection("meetings")}
}

func (r *mongoRepo) Create(ctx context.Context, m *Meeting) error {
	_, err := r.collection.InsertOne(ctx, m)
	return err
}

func (r *mongoRepo) GetByCode(ctx context.Context, code domain.RoomID) (*Meeting, error) {
	var m Meeting
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// memoryRepo backs dev mode and tests when no mongo is configured.
type memoryRepo struct {
	mu       sync.RWMutex
	meetings map[domain.RoomID]*Meeting
}

func NewMemoryRepo() Repo {
	return &memoryRepo{meetings: make(map[domain.RoomID]*Meeting)}
}

func (r *memoryRepo) Create(_ context.Context, m *Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meetings[m.Code] = m
	return nil
}

func (r *memoryRepo) GetByCode(_ context.Context, code domain.RoomID) (*Meeting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.meetings[code]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}
