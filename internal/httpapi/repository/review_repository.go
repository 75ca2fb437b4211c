package repository

import (
	"context"
	"math"

	"github.com/Rengoky/Base-for-films/internal/httpapi/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewRepository interface {
	ListByTitle(ctx context.Context, titleID int64, limit, offset int) ([]models.Review, int64, error)
	GetByID(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, titleID, reviewID int64) error
	ExistsByTitleAndAuthor(ctx context.Context, titleID int64, authorID string) (bool, error)
	RecalculateTitleRating(ctx context.Context, titleID int64) (*int, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) ListByTitle(ctx context.Context, titleID int64, limit, offset int) ([]models.Review, int64, error) {
	var reviews []models.Review
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Review{}).Where("title_id = ?", titleID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Author").
		Order("pub_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

func (r *reviewRepository) GetByID(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("id = ? AND title_id = ?", reviewID, titleID).
		Preload("Author").
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	return translateError(r.db.WithContext(ctx).Create(review).Error)
}

func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	return translateError(r.db.WithContext(ctx).Save(review).Error)
}

func (r *reviewRepository) Delete(ctx context.Context, titleID, reviewID int64) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND title_id = ?", reviewID, titleID).
		Delete(&models.Review{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ratingFromAverage converts a mean review score to the stored integer
// rating, rounding half away from zero. A title with no reviews has no
// rating, not a zero one.
func ratingFromAverage(average float64, count int64) *int {
	if count == 0 {
		return nil
	}
	v := int(math.Round(average))
	return &v
}

func (r *reviewRepository) ExistsByTitleAndAuthor(ctx context.Context, titleID int64, authorID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("title_id = ? AND author_id = ?", titleID, authorID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RecalculateTitleRating recomputes the cached rating for a title from its
// current review scores. The title row is locked for the duration of the
// transaction so concurrent review writes serialize instead of losing updates.
// Returns gorm.ErrRecordNotFound when the title no longer exists.
func (r *reviewRepository) RecalculateTitleRating(ctx context.Context, titleID int64) (*int, error) {
	var rating *int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var title models.Title
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&title, titleID).Error; err != nil {
			return err
		}

		var result struct {
			Average float64
			Count   int64
		}
		err := tx.Model(&models.Review{}).
			Select("COALESCE(AVG(score), 0) as average, COUNT(*) as count").
			Where("title_id = ?", titleID).
			Scan(&result).Error
		if err != nil {
			return err
		}

		rating = ratingFromAverage(result.Average, result.Count)

		return tx.Model(&models.Title{}).Where("id = ?", titleID).Update("rating", rating).Error
	})
	if err != nil {
		return nil, err
	}

	return rating, nil
}
