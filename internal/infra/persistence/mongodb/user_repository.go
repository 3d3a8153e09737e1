package mongodb

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"chatline/internal/domain/entity"
	"chatline/internal/domain/repository"
	"chatline/internal/infra/persistence/model"
)

// userRepository implements repository.UserRepository on the users collection.
type userRepository struct {
	collection *mongo.Collection
}

// NewUserRepository is the constructor for userRepository.
func NewUserRepository(db *mongo.Database) repository.UserRepository {
	return &userRepository{collection: db.Collection(usersCollection)}
}

// Create persists a new user document. Unique index violations are mapped to
// the domain sentinels so a lost race surfaces exactly like the pre-check.
func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	doc, err := model.FromUserEntity(user)
	if err != nil {
		return errors.Wrap(err, "failed to map user entity")
	}
	if doc.Friends == nil {
		doc.Friends = []primitive.ObjectID{}
	}
	if doc.FriendRequests == nil {
		doc.FriendRequests = []primitive.ObjectID{}
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateKeyToSentinel(err)
		}

		return errors.Wrap(err, "failed to insert user")
	}

	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = id.Hex()
	}

	return nil
}

// FindByID retrieves a single user by their document id.
func (r *userRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrUserNotFound
	}

	return r.findOne(ctx, bson.M{"_id": objectID})
}

// FindByUsername retrieves a single user by their unique username.
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// FindByEmail retrieves a single user by their unique email address.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// SetVerified marks the user's email as verified in one atomic update.
func (r *userRepository) SetVerified(ctx context.Context, id string) error {
	return r.updateByID(ctx, id, bson.M{"isVerified": true})
}

// SetOTPHash writes a freshly issued OTP hash, overwriting any pending one.
func (r *userRepository) SetOTPHash(ctx context.Context, id string, otpHash string) error {
	return r.updateByID(ctx, id, bson.M{"otp": otpHash})
}

// ResetPassword overwrites the password hash and clears the OTP hash in one
// atomic update.
func (r *userRepository) ResetPassword(ctx context.Context, id string, passwordHash string) error {
	return r.updateByID(ctx, id, bson.M{"password": passwordHash, "otp": ""})
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var doc model.User
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user")
	}

	return doc.ToEntity(), nil
}

func (r *userRepository) updateByID(ctx context.Context, id string, set bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrUserNotFound
	}

	set["updatedAt"] = time.Now().UTC()

	result, err := r.collection.UpdateByID(ctx, objectID, bson.M{"$set": set})
	if err != nil {
		return errors.Wrap(err, "failed to update user")
	}
	if result.MatchedCount == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// duplicateKeyToSentinel inspects which unique index rejected the write.
func duplicateKeyToSentinel(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, uniqueUsernameIndex):
		return repository.ErrUsernameTaken
	case strings.Contains(msg, uniqueEmailIndex):
		return repository.ErrEmailTaken
	default:
		return errors.Wrap(err, "unexpected duplicate key")
	}
}
