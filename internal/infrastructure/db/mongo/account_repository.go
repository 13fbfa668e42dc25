package mongo

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/projectx/accounts/internal/core/domain"
)

const accountCollection = "accounts"

// AccountRepository persists account records in MongoDB. Unique indexes on
// username and email provide the atomic check-then-insert guarantee: under a
// concurrent create race exactly one insert wins and the loser surfaces a
// field-level conflict.
type AccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(accountCollection)}
}

// EnsureIndexes creates the unique indexes the uniqueness invariant depends
// on. Call once at startup before serving traffic.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("username_1"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_1"),
		},
	})
	if err != nil {
		return fmt.Errorf("create account indexes: %w", err)
	}
	return nil
}

type mongoAccount struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	FirstName    string             `bson:"first_name,omitempty"`
	LastName     string             `bson:"last_name,omitempty"`
	Phone        string             `bson:"phone,omitempty"`
	IsAdmin      bool               `bson:"is_admin"`
	CreatedAt    int64              `bson:"created_at"`
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	doc := toDoc(account)
	doc.ID = primitive.NilObjectID

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if conflict := conflictError(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	id, _ := res.InsertedID.(primitive.ObjectID)
	created := *account
	created.ID = id.Hex()
	return &created, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var doc mongoAccount
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return fromDoc(&doc), nil
}

// List returns accounts ordered by username then email. A non-empty search
// term matches exactly on username/email/phone or as a case-insensitive
// substring of first_name/last_name, OR-combined.
func (r *AccountRepository) List(ctx context.Context, search string) ([]domain.Account, error) {
	filter := bson.M{}
	if search != "" {
		contains := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		filter = bson.M{"$or": []bson.M{
			{"username": search},
			{"email": search},
			{"phone": search},
			{"first_name": contains},
			{"last_name": contains},
		}}
	}

	opts := options.Find().SetSort(bson.D{{Key: "username", Value: 1}, {Key: "email", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer cursor.Close(ctx)

	var accounts []domain.Account
	for cursor.Next(ctx) {
		var doc mongoAccount
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode account: %w", err)
		}
		accounts = append(accounts, *fromDoc(&doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

func (r *AccountRepository) Update(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(account.ID)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}

	doc := toDoc(account)
	update := bson.M{"$set": bson.M{
		"username":      doc.Username,
		"email":         doc.Email,
		"password_hash": doc.PasswordHash,
		"first_name":    doc.FirstName,
		"last_name":     doc.LastName,
		"phone":         doc.Phone,
		"is_admin":      doc.IsAdmin,
	}}

	res, err := r.coll.UpdateByID(ctx, oid, update)
	if err != nil {
		if conflict := conflictError(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrAccountNotFound
	}

	updated := *account
	return &updated, nil
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrAccountNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// conflictError maps a duplicate-key failure onto the violated field so the
// race loser sees the same validation-shaped conflict as a pre-check hit.
func conflictError(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return nil
	}
	if strings.Contains(err.Error(), "email_1") {
		return domain.FieldErrors{{Field: "email", Message: domain.MsgEmailTaken}}
	}
	return domain.FieldErrors{{Field: "username", Message: domain.MsgUsernameTaken}}
}

func toDoc(a *domain.Account) mongoAccount {
	doc := mongoAccount{
		Username:     a.Username,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Phone:        a.Phone,
		IsAdmin:      a.IsAdmin,
		CreatedAt:    a.CreatedAt.Unix(),
	}
	if oid, err := primitive.ObjectIDFromHex(a.ID); err == nil {
		doc.ID = oid
	}
	return doc
}

func fromDoc(doc *mongoAccount) *domain.Account {
	return &domain.Account{
		ID:           doc.ID.Hex(),
		Username:     doc.Username,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		FirstName:    doc.FirstName,
		LastName:     doc.LastName,
		Phone:        doc.Phone,
		IsAdmin:      doc.IsAdmin,
		CreatedAt:    unixToTime(doc.CreatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
