package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"credential-service/internal/domain/student"
)

// StudentRepo implements the login and provision repository interfaces
// against the hosted document store's students collection.
type StudentRepo struct {
	coll *mongo.Collection
	log  *zap.Logger
}

// NewStudentRepo creates a new StudentRepo on the given collection.
func NewStudentRepo(coll *mongo.Collection, log *zap.Logger) *StudentRepo {
	return &StudentRepo{coll: coll, log: log}
}

// studentDoc mirrors the field names the existing front-end documents carry.
type studentDoc struct {
	Email    string `bson:"Email"`
	Password string `bson:"Password"`
	Name     string `bson:"Name"`
}

// FindByCredentials looks up a student by exact email and password match.
// It returns nil without an error when no document matches.
func (r *StudentRepo) FindByCredentials(ctx context.Context, email, password string) (*student.Student, error) {
	filter := bson.D{
		{Key: "Email", Value: email},
		{Key: "Password", Value: password},
	}

	var doc studentDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.log.Debug("no student matched credentials", zap.String("email", email))
			return nil, nil
		}
		r.log.Error("failed to query student by credentials", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("failed to query student: %w", err)
	}

	return &student.Student{
		Email:    doc.Email,
		Password: doc.Password,
		Name:     doc.Name,
	}, nil
}

// Insert stores a new student record. The store enforces no uniqueness on
// Email; repeated provisioning produces additional documents, matching the
// upstream collection's behavior.
func (r *StudentRepo) Insert(ctx context.Context, s *student.Student) error {
	if s == nil {
		return errors.New("student cannot be nil")
	}

	doc := studentDoc{
		Email:    s.Email,
		Password: s.Password,
		Name:     s.Name,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		r.log.Error("failed to insert student", zap.String("email", s.Email), zap.Error(err))
		return fmt.Errorf("failed to insert student: %w", err)
	}

	r.log.Info("student inserted", zap.String("email", s.Email), zap.String("name", s.Name))
	return nil
}

// EnsureIndexes creates the lookup index on Email. Non-unique: the system
// relies entirely on the external store for any uniqueness semantics.
func (r *StudentRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "Email", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to ensure student email index: %w", err)
	}
	return nil
}
