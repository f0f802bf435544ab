package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"lessons/internal/domain"
)

// MongoStore implements domain.Store over MongoDB: one document per node,
// with the serialized block sequence embedded. Useful when the authoring
// backend already lives in a Mongo deployment.
type MongoStore struct {
	client   *mongo.Client
	sessions *mongo.Collection
	nodes    *mongo.Collection
}

var _ domain.Store = (*MongoStore)(nil)

// OpenMongo connects to uri and uses database dbName.
func OpenMongo(uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	log.Printf("[MONGO] connected, database %s", dbName)
	db := client.Database(dbName)
	return &MongoStore{
		client:   client,
		sessions: db.Collection("sessions"),
		nodes:    db.Collection("nodes"),
	}, nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type mongoSession struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type mongoNode struct {
	ID        string       `bson:"_id"` // "<sessionID>/<nodeID>"
	NodeID    string       `bson:"node_id"`
	SessionID string       `bson:"session_id"`
	Title     string       `bson:"title"`
	Position  int          `bson:"position"`
	Blocks    []mongoBlock `bson:"blocks"`
	CreatedAt time.Time    `bson:"created_at"`
	UpdatedAt time.Time    `bson:"updated_at"`
}

type mongoBlock struct {
	Type  string           `bson:"type"`
	Order int              `bson:"order"`
	Data  domain.BlockData `bson:"data"`
}

func (s *MongoStore) CreateSession(ctx context.Context, name string) (*domain.Session, error) {
	now := time.Now().UTC()
	doc := mongoSession{ID: uuid.NewString(), Name: name, CreatedAt: now, UpdatedAt: now}
	if _, err := s.sessions.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &domain.Session{ID: doc.ID, Name: doc.Name, CreatedAt: doc.CreatedAt, UpdatedAt: doc.UpdatedAt}, nil
}

func (s *MongoStore) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	var doc mongoSession
	if err := s.sessions.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return &domain.Session{ID: doc.ID, Name: doc.Name, CreatedAt: doc.CreatedAt, UpdatedAt: doc.UpdatedAt}, nil
}

func (s *MongoStore) ListSessions(ctx context.Context) ([]domain.Session, error) {
	cur, err := s.sessions.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var sessions []domain.Session
	for cur.Next(ctx) {
		var doc mongoSession
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		sessions = append(sessions, domain.Session{ID: doc.ID, Name: doc.Name, CreatedAt: doc.CreatedAt, UpdatedAt: doc.UpdatedAt})
	}
	return sessions, cur.Err()
}

func (s *MongoStore) CreateNode(ctx context.Context, sessionID, title string) (*domain.Node, error) {
	count, err := s.nodes.CountDocuments(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		return nil, fmt.Errorf("count nodes: %w", err)
	}
	now := time.Now().UTC()
	node := mongoNode{
		NodeID:    fmt.Sprintf("N%03d", count+1),
		SessionID: sessionID,
		Title:     title,
		Position:  int(count),
		CreatedAt: now,
		UpdatedAt: now,
	}
	node.ID = sessionID + "/" + node.NodeID
	if _, err := s.nodes.InsertOne(ctx, node); err != nil {
		return nil, fmt.Errorf("create node: %w", err)
	}
	return nodeToDomain(node), nil
}

func (s *MongoStore) GetNode(ctx context.Context, sessionID, nodeID string) (*domain.Node, error) {
	var doc mongoNode
	if err := s.nodes.FindOne(ctx, bson.M{"_id": sessionID + "/" + nodeID}).Decode(&doc); err != nil {
		return nil, fmt.Errorf("get node %s/%s: %w", sessionID, nodeID, err)
	}
	return nodeToDomain(doc), nil
}

func (s *MongoStore) ListNodes(ctx context.Context, sessionID string) ([]domain.Node, error) {
	cur, err := s.nodes.Find(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var nodes []domain.Node
	for cur.Next(ctx) {
		var doc mongoNode
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		nodes = append(nodes, *nodeToDomain(doc))
	}
	return nodes, cur.Err()
}

// SaveDocument upserts the full block sequence of a node in one write.
func (s *MongoStore) SaveDocument(ctx context.Context, sessionID, nodeID string, doc domain.SerializedDocument) error {
	blocks := make([]mongoBlock, len(doc.Blocks))
	for i, b := range doc.Blocks {
		blocks[i] = mongoBlock{Type: b.Type, Order: b.Order, Data: b.Data}
	}
	_, err := s.nodes.UpdateOne(ctx,
		bson.M{"_id": sessionID + "/" + nodeID},
		bson.M{
			"$set": bson.M{
				"node_id":    nodeID,
				"session_id": sessionID,
				"blocks":     blocks,
				"updated_at": time.Now().UTC(),
			},
			"$setOnInsert": bson.M{"created_at": time.Now().UTC()},
		},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save document %s/%s: %w", sessionID, nodeID, err)
	}
	return nil
}

func (s *MongoStore) LoadDocument(ctx context.Context, sessionID, nodeID string) (domain.SerializedDocument, error) {
	var node mongoNode
	err := s.nodes.FindOne(ctx, bson.M{"_id": sessionID + "/" + nodeID}).Decode(&node)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.SerializedDocument{}, nil
	}
	if err != nil {
		return domain.SerializedDocument{}, fmt.Errorf("load document %s/%s: %w", sessionID, nodeID, err)
	}
	out := domain.SerializedDocument{Blocks: make([]domain.SerializedBlock, len(node.Blocks))}
	for i, b := range node.Blocks {
		out.Blocks[i] = domain.SerializedBlock{Type: b.Type, Order: b.Order, Data: b.Data}
	}
	return out, nil
}

func nodeToDomain(n mongoNode) *domain.Node {
	return &domain.Node{
		ID:        n.NodeID,
		SessionID: n.SessionID,
		Title:     n.Title,
		Position:  n.Position,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}
