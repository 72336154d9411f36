package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"github.com/fulluproar/backoffice/internal/domain/designer"
	"github.com/fulluproar/backoffice/internal/domain/shared"
	"github.com/fulluproar/backoffice/internal/infrastructure/config"
)

// cardTemplateDocument is the MongoDB shape of a template. The snapshot is
// kept as a nested document so it can be inspected with mongo tooling.
type cardTemplateDocument struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Version      int       `bson:"version"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
	Dimension    string    `bson:"dimension"`
	ElementCount int       `bson:"element_count"`
	Snapshot     bson.Raw  `bson:"snapshot"`
}

// MongoTemplateRepository implements designer.TemplateRepository on a
// MongoDB collection
type MongoTemplateRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	timeout    time.Duration
	logger     *zap.Logger
}

// NewMongoTemplateRepository connects to MongoDB and ensures the save-order index
func NewMongoTemplateRepository(ctx context.Context, cfg *config.MongoConfig, logger *zap.Logger) (*MongoTemplateRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI).SetTimeout(cfg.Timeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	repo := &MongoTemplateRepository{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		timeout:    cfg.Timeout,
		logger:     logger,
	}

	_, err = repo.collection.Indexes().CreateOne(pingCtx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create template index: %w", err)
	}

	logger.Info("Template store connected",
		zap.String("driver", config.DriverMongo),
		zap.String("database", cfg.Database),
		zap.String("collection", cfg.Collection),
	)
	return repo, nil
}

// Close disconnects the client
func (r *MongoTemplateRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// Ping checks if the connection is alive
func (r *MongoTemplateRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

// List returns every template in save order
func (r *MongoTemplateRepository) List(ctx context.Context) ([]designer.Template, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list card templates: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []cardTemplateDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode card templates: %w", err)
	}

	templates := make([]designer.Template, 0, len(docs))
	for i := range docs {
		t, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		templates = append(templates, *t)
	}
	return templates, nil
}

// Append inserts a new template document
func (r *MongoTemplateRepository) Append(ctx context.Context, template *designer.Template) error {
	doc, err := cardTemplateDocumentFromDomain(template)
	if err != nil {
		return err
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return shared.NewDomainError("ALREADY_EXISTS", "template already exists")
		}
		return fmt.Errorf("failed to append card template: %w", err)
	}
	return nil
}

// FindByID finds a template by ID
func (r *MongoTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*designer.Template, error) {
	var doc cardTemplateDocument
	err := r.collection.FindOne(ctx, bson.D{{Key: "_id", Value: id.String()}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find card template: %w", err)
	}
	return doc.toDomain()
}

func cardTemplateDocumentFromDomain(t *designer.Template) (*cardTemplateDocument, error) {
	raw, err := encodeSnapshot(t.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot of template %s: %w", t.ID, err)
	}
	return &cardTemplateDocument{
		ID:           t.ID.String(),
		Name:         t.Name,
		Version:      t.Version,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		Dimension:    t.Snapshot.Dimension.Name.String(),
		ElementCount: t.ElementCount(),
		Snapshot:     raw,
	}, nil
}

func (d *cardTemplateDocument) toDomain() (*designer.Template, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid template id %q: %w", d.ID, err)
	}
	snapshot, err := decodeSnapshot(d.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot of template %s: %w", d.ID, err)
	}
	return &designer.Template{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        id,
				CreatedAt: d.CreatedAt.UTC(),
				UpdatedAt: d.UpdatedAt.UTC(),
			},
			Version: d.Version,
		},
		Name:     d.Name,
		Snapshot: snapshot,
	}, nil
}

// encodeSnapshot goes through the snapshot's JSON form so the stored
// document uses the same field names as the HTTP API and the SQL stores.
func encodeSnapshot(s designer.SceneSnapshot) (bson.Raw, error) {
	js, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var doc bson.D
	if err := bson.UnmarshalExtJSON(js, false, &doc); err != nil {
		return nil, err
	}
	return bson.Marshal(doc)
}

func decodeSnapshot(raw bson.Raw) (designer.SceneSnapshot, error) {
	var s designer.SceneSnapshot
	js, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return s, err
	}
	err = json.Unmarshal(js, &s)
	return s, err
}

var _ designer.TemplateRepository = (*MongoTemplateRepository)(nil)
