// Package mongo implements the metadata store on a MongoDB database.
//
// Records live in the "files" collection and users in "users", both keyed
// by ObjectID. This is the primary deployment target: the document model
// maps one-to-one onto FileRecord with no schema migrations.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/filedepot/filedepot/pkg/metadata"
)

// MongoStoreConfig configures the MongoDB metadata store.
type MongoStoreConfig struct {
	// URI is the mongodb:// connection string.
	URI string

	// Database is the database name holding the files and users collections.
	Database string

	// ConnectTimeout bounds the initial connect and ping. Zero means 10s.
	ConnectTimeout time.Duration
}

// MongoStore implements metadata.Store on MongoDB.
type MongoStore struct {
	client *mongo.Client
	files  *mongo.Collection
	users  *mongo.Collection
}

// fileDoc is the persisted shape of a FileRecord.
//
// ParentID is stored as the canonical string form (RootParentID or a hex
// object id) so listing filters compare the same representation the
// creation path stored.
type fileDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId"`
	Name      string             `bson:"name"`
	Type      string             `bson:"type"`
	IsPublic  bool               `bson:"isPublic"`
	ParentID  string             `bson:"parentId"`
	LocalPath string             `bson:"localPath,omitempty"`
}

type userDoc struct {
	ID    primitive.ObjectID `bson:"_id"`
	Email string             `bson:"email"`
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, cfg MongoStoreConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo metadata store: uri is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("mongo metadata store: database is required")
	}

	timeout := cfg.ConnectTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(cfg.Database)
	return &MongoStore{
		client: client,
		files:  db.Collection("files"),
		users:  db.Collection("users"),
	}, nil
}

func (d fileDoc) toRecord() *metadata.FileRecord {
	return &metadata.FileRecord{
		ID:        d.ID.Hex(),
		UserID:    d.UserID.Hex(),
		Name:      d.Name,
		Type:      metadata.FileType(d.Type),
		IsPublic:  d.IsPublic,
		ParentID:  d.ParentID,
		LocalPath: metadata.BlobID(d.LocalPath),
	}
}

// objectID parses a hex id, mapping malformed values to ErrNotFound: an id
// that can never exist is indistinguishable from one that doesn't.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, metadata.NotFound("file " + id + " not found")
	}
	return oid, nil
}

// InsertFile persists a new record and returns its assigned hex id.
func (s *MongoStore) InsertFile(ctx context.Context, record *metadata.FileRecord) (string, error) {
	if err := record.Validate(); err != nil {
		return "", err
	}

	userOID, err := primitive.ObjectIDFromHex(record.UserID)
	if err != nil {
		return "", metadata.InvalidArgument("malformed owner id: " + record.UserID)
	}

	doc := fileDoc{
		UserID:    userOID,
		Name:      record.Name,
		Type:      string(record.Type),
		IsPublic:  record.IsPublic,
		ParentID:  record.ParentID,
		LocalPath: string(record.LocalPath),
	}

	result, err := s.files.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to insert file record: %w", err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", metadata.IOError("unexpected inserted id type")
	}
	record.ID = oid.Hex()
	return record.ID, nil
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M, id string) (*metadata.FileRecord, error) {
	var doc fileDoc
	err := s.files.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, metadata.NotFound("file " + id + " not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query file record: %w", err)
	}
	return doc.toRecord(), nil
}

// FileByID returns the record with the given id regardless of owner.
func (s *MongoStore) FileByID(ctx context.Context, id string) (*metadata.FileRecord, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return s.findOne(ctx, bson.M{"_id": oid}, id)
}

// FileByIDForUser returns the record only if owned by userID. The owner is
// part of the query filter, so a mismatch is absence as far as mongo is
// concerned.
func (s *MongoStore) FileByIDForUser(ctx context.Context, id, userID string) (*metadata.FileRecord, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, metadata.NotFound("file " + id + " not found")
	}
	return s.findOne(ctx, bson.M{"_id": oid, "userId": userOID}, id)
}

// ListFiles returns the user's records under parentID in server order.
func (s *MongoStore) ListFiles(ctx context.Context, userID, parentID string, skip, limit int64) ([]*metadata.FileRecord, error) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []*metadata.FileRecord{}, nil
	}

	opts := options.Find().SetSkip(skip).SetLimit(limit)
	cursor, err := s.files.Find(ctx, bson.M{"userId": userOID, "parentId": parentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list file records: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	records := make([]*metadata.FileRecord, 0)
	for cursor.Next(ctx) {
		var doc fileDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode file record: %w", err)
		}
		records = append(records, doc.toRecord())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error while listing file records: %w", err)
	}
	return records, nil
}

// SetFilePublic updates only the IsPublic flag.
func (s *MongoStore) SetFilePublic(ctx context.Context, id string, isPublic bool) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	result, err := s.files.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"isPublic": isPublic}})
	if err != nil {
		return fmt.Errorf("failed to update file record: %w", err)
	}
	if result.MatchedCount == 0 {
		return metadata.NotFound("file " + id + " not found")
	}
	return nil
}

// CountFiles returns the total number of file records.
func (s *MongoStore) CountFiles(ctx context.Context) (int64, error) {
	count, err := s.files.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count file records: %w", err)
	}
	return count, nil
}

// UserByID returns the user with the given id.
func (s *MongoStore) UserByID(ctx context.Context, id string) (*metadata.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, metadata.NotFound("user " + id + " not found")
	}

	var doc userDoc
	err = s.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, metadata.NotFound("user " + id + " not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &metadata.User{ID: doc.ID.Hex(), Email: doc.Email}, nil
}

// CountUsers returns the total number of users.
func (s *MongoStore) CountUsers(ctx context.Context) (int64, error) {
	count, err := s.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// Ping reports whether the database answers a primary read.
func (s *MongoStore) Ping(ctx context.Context) bool {
	return s.client.Ping(ctx, readpref.Primary()) == nil
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
