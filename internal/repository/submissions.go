package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Duy-Thong/CopyCheck/internal/models"
	"github.com/Duy-Thong/CopyCheck/internal/plagiarism"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const submissionsCollection = "submissions"

type SubmissionsRepository struct {
	mongoRepo *MongoRepository
}

func NewSubmissionsRepository(mongoRepo *MongoRepository) *SubmissionsRepository {
	return &SubmissionsRepository{
		mongoRepo: mongoRepo,
	}
}

// scopeOrder is the deterministic corpus order: uploadedAt, then id
func scopeOrder() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "uploadedAt", Value: 1}, {Key: "_id", Value: 1}})
}

func (r *SubmissionsRepository) InsertSubmission(ctx context.Context, submission *models.Submission) error {
	submission.CreatedAt = time.Now()
	err := r.mongoRepo.InsertOne(ctx, submissionsCollection, submission)
	if err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}

	return nil
}

func (r *SubmissionsRepository) GetSubmissionsByScopeID(ctx context.Context, scopeID string) ([]*models.Submission, error) {
	return r.findSubmissions(ctx, bson.M{"scopeId": scopeID})
}

func (r *SubmissionsRepository) GetSubmissionsByScopeIDAndSeverity(ctx context.Context, scopeID, severity string) ([]*models.Submission, error) {
	return r.findSubmissions(ctx, bson.M{"scopeId": scopeID, "severity": severity})
}

func (r *SubmissionsRepository) findSubmissions(ctx context.Context, filter bson.M) ([]*models.Submission, error) {
	cursor, err := r.mongoRepo.FindMany(ctx, submissionsCollection, filter, scopeOrder())
	if err != nil {
		return nil, fmt.Errorf("failed to find submissions: %w", err)
	}
	defer cursor.Close(ctx)

	submissions := make([]*models.Submission, 0)
	if err := cursor.All(ctx, &submissions); err != nil {
		return nil, fmt.Errorf("failed to decode submissions: %w", err)
	}

	return submissions, nil
}

func (r *SubmissionsRepository) GetSubmission(ctx context.Context, scopeID, id string) (*models.Submission, error) {
	filter := bson.M{"_id": id, "scopeId": scopeID}

	var submission models.Submission
	err := r.mongoRepo.FindOne(ctx, submissionsCollection, filter).Decode(&submission)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find submission: %w", err)
	}

	return &submission, nil
}

// GetCorpusByScopeID returns the scope's documents as an ordered snapshot
func (r *SubmissionsRepository) GetCorpusByScopeID(ctx context.Context, scopeID string) ([]plagiarism.Document, error) {
	submissions, err := r.GetSubmissionsByScopeID(ctx, scopeID)
	if err != nil {
		return nil, err
	}

	return ToDocuments(submissions), nil
}

func (r *SubmissionsRepository) CountSubmissionsByScopeID(ctx context.Context, scopeID string) (int64, error) {
	filter := bson.M{"scopeId": scopeID}

	count, err := r.mongoRepo.CountDocuments(ctx, submissionsCollection, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}

	return count, nil
}

// ToDocuments converts stored submissions into the engine's document shape,
// re-sorted so the tie-break order does not depend on the store
func ToDocuments(submissions []*models.Submission) []plagiarism.Document {
	docs := make([]plagiarism.Document, 0, len(submissions))
	for _, s := range submissions {
		docs = append(docs, plagiarism.Document{
			ID:          s.ID,
			ScopeID:     s.ScopeID,
			DisplayName: s.DisplayName,
			Text:        s.Text,
			UploadedAt:  s.UploadedAt,
		})
	}
	return plagiarism.SortDocuments(docs)
}
