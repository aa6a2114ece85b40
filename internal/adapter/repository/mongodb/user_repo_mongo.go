package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"microblog-account-service/internal/domain/user"
	"microblog-account-service/pkg/logger"
)

// UserRepoMongo implements the credential store on a MongoDB collection.
type UserRepoMongo struct {
	coll *mongo.Collection // users collection
	log  *zap.Logger       // Structured logger for store operations
}

// NewUserRepoMongo creates a new instance of UserRepoMongo.
func NewUserRepoMongo(coll *mongo.Collection, log *zap.Logger) *UserRepoMongo {
	return &UserRepoMongo{coll: coll, log: log}
}

// UserDocument is the stored shape of a user. The bcrypt hash lives under
// "password" so existing collections stay readable.
type UserDocument struct {
	ID       bson.ObjectID `bson:"_id,omitempty"`
	Username string        `bson:"username"`
	Email    string        `bson:"email"`
	Password string        `bson:"password"`
}

type summaryDocument struct {
	ID       bson.ObjectID `bson:"_id"`
	Username string        `bson:"username"`
}

func toDocument(u *user.User) UserDocument {
	return UserDocument{
		Username: u.Username,
		Email:    u.Email,
		Password: u.PasswordHash,
	}
}

func (d UserDocument) toDomain() *user.User {
	return &user.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.Password,
	}
}

// EnsureIndexes creates the lookup index on username. The index is not unique
// so the schema matches the check-then-insert signup flow.
func (r *UserRepoMongo) EnsureIndexes(ctx context.Context) error {
	name, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetName("username_1"),
	})
	if err != nil {
		return fmt.Errorf("failed to create username index: %w", err)
	}
	r.log.Debug("index ensured", zap.String("index", name))
	return nil
}

// FindByUsername returns the user with exactly this username, or nil.
func (r *UserRepoMongo) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// FindByID returns the user with this id, or nil when absent or when id is
// not a lowercase ObjectID hex string.
func (r *UserRepoMongo) FindByID(ctx context.Context, id string) (*user.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil || !user.IsValidID(id) {
		logger.WithContext(ctx, r.log).Debug("malformed user id", zap.String("id", id))
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepoMongo) findOne(ctx context.Context, filter bson.M) (*user.User, error) {
	var doc UserDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		logger.WithContext(ctx, r.log).Error("failed to find user in mongo", zap.Error(err))
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return doc.toDomain(), nil
}

// Insert stores a new user document and returns its ObjectID in hex.
func (r *UserRepoMongo) Insert(ctx context.Context, u *user.User) (string, error) {
	if u == nil {
		return "", errors.New("user cannot be nil")
	}

	doc := toDocument(u)
	doc.ID = bson.NewObjectID()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		logger.WithContext(ctx, r.log).Error("failed to insert user in mongo", zap.Error(err), zap.String("username", u.Username))
		return "", fmt.Errorf("failed to insert user: %w", err)
	}

	id := doc.ID.Hex()
	logger.WithContext(ctx, r.log).Info("user inserted in mongo", zap.String("id", id))
	return id, nil
}

// ListAll returns the id and username of every document, in natural order.
func (r *UserRepoMongo) ListAll(ctx context.Context) ([]user.Summary, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1, "username": 1})

	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		logger.WithContext(ctx, r.log).Error("failed to list users from mongo", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	var docs []summaryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	users := make([]user.Summary, len(docs))
	for i, d := range docs {
		users[i] = user.Summary{ID: d.ID.Hex(), Username: d.Username}
	}
	return users, nil
}
