package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Duy-Thong/CopyCheck/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const reportsCollection = "comparison_reports"

type ReportsRepository struct {
	mongoRepo *MongoRepository
}

func NewReportsRepository(mongoRepo *MongoRepository) *ReportsRepository {
	return &ReportsRepository{
		mongoRepo: mongoRepo,
	}
}

func (r *ReportsRepository) InsertReport(ctx context.Context, report *models.ComparisonReport) error {
	report.CreatedAt = time.Now()

	err := r.mongoRepo.InsertOne(ctx, reportsCollection, report)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	return nil
}

func (r *ReportsRepository) UpdateReport(ctx context.Context, report *models.ComparisonReport) error {
	result, err := r.mongoRepo.ReplaceOne(ctx, reportsCollection, bson.M{"_id": report.ID}, report)
	if err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("report not found: %s", report.ID)
	}

	return nil
}

func (r *ReportsRepository) GetLatestReportByScopeID(ctx context.Context, scopeID string) (*models.ComparisonReport, error) {
	filter := bson.M{"scopeId": scopeID}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var report models.ComparisonReport
	err := r.mongoRepo.FindOne(ctx, reportsCollection, filter, opts).Decode(&report)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find report: %w", err)
	}

	return &report, nil
}
