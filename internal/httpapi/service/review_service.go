package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Rengoky/Base-for-films/internal/cache"
	"github.com/Rengoky/Base-for-films/internal/httpapi/models"
	"github.com/Rengoky/Base-for-films/internal/httpapi/repository"

	"gorm.io/gorm"
)

var (
	ErrReviewNotFound   = errors.New("review not found")
	ErrDuplicateReview  = errors.New("you have already reviewed this title")
	ErrInvalidScore     = errors.New("score must be an integer between 1 and 10")
	ErrPermissionDenied = errors.New("you don't have permission to modify this resource")
)

// ReviewUpdate carries the optional fields of a review patch.
type ReviewUpdate struct {
	Text  *string
	Score *int
}

type ReviewService interface {
	ListByTitle(ctx context.Context, titleID int64, limit, offset int) ([]models.Review, int64, error)
	Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	Create(ctx context.Context, titleID int64, authorID, text string, score int) (*models.Review, error)
	Update(ctx context.Context, titleID, reviewID int64, actorID, actorRole string, upd ReviewUpdate) (*models.Review, error)
	Delete(ctx context.Context, titleID, reviewID int64, actorID, actorRole string) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  repository.TitleRepository
	titleCache *cache.TitleCache
	logger     *slog.Logger
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	titleRepo repository.TitleRepository,
	titleCache *cache.TitleCache,
	logger *slog.Logger,
) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		titleRepo:  titleRepo,
		titleCache: titleCache,
		logger:     logger,
	}
}

func (s *reviewService) ListByTitle(ctx context.Context, titleID int64, limit, offset int) ([]models.Review, int64, error) {
	if err := s.ensureTitle(ctx, titleID); err != nil {
		return nil, 0, err
	}
	return s.reviewRepo.ListByTitle(ctx, titleID, limit, offset)
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	if err := s.ensureTitle(ctx, titleID); err != nil {
		return nil, err
	}

	review, err := s.reviewRepo.GetByID(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return review, nil
}

func (s *reviewService) Create(ctx context.Context, titleID int64, authorID, text string, score int) (*models.Review, error) {
	if score < 1 || score > 10 {
		return nil, ErrInvalidScore
	}
	if err := s.ensureTitle(ctx, titleID); err != nil {
		return nil, err
	}

	exists, err := s.reviewRepo.ExistsByTitleAndAuthor(ctx, titleID, authorID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateReview
	}

	review := &models.Review{
		Text:     text,
		Score:    score,
		AuthorID: authorID,
		TitleID:  titleID,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		// the unique constraint backstops the exists check under races
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateReview
		}
		return nil, err
	}

	if err := s.recomputeRating(ctx, titleID); err != nil {
		return nil, err
	}

	return s.reviewRepo.GetByID(ctx, titleID, review.ID)
}

func (s *reviewService) Update(ctx context.Context, titleID, reviewID int64, actorID, actorRole string, upd ReviewUpdate) (*models.Review, error) {
	review, err := s.Get(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	if !CanModify(actorID, actorRole, review.AuthorID) {
		return nil, ErrPermissionDenied
	}

	if upd.Text != nil {
		review.Text = *upd.Text
	}
	if upd.Score != nil {
		if *upd.Score < 1 || *upd.Score > 10 {
			return nil, ErrInvalidScore
		}
		review.Score = *upd.Score
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}

	if err := s.recomputeRating(ctx, titleID); err != nil {
		return nil, err
	}

	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, titleID, reviewID int64, actorID, actorRole string) error {
	review, err := s.Get(ctx, titleID, reviewID)
	if err != nil {
		return err
	}

	if !CanModify(actorID, actorRole, review.AuthorID) {
		return ErrPermissionDenied
	}

	if err := s.reviewRepo.Delete(ctx, titleID, reviewID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}

	// Deleting a review changes the aggregate too, so recompute here as well.
	return s.recomputeRating(ctx, titleID)
}

func (s *reviewService) ensureTitle(ctx context.Context, titleID int64) error {
	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTitleNotFound
		}
		return err
	}
	return nil
}

func (s *reviewService) recomputeRating(ctx context.Context, titleID int64) error {
	if _, err := s.reviewRepo.RecalculateTitleRating(ctx, titleID); err != nil {
		// title deleted between the write and the recompute
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTitleNotFound
		}
		return err
	}

	if err := s.titleCache.Invalidate(ctx, titleID); err != nil {
		s.logger.Warn("title cache invalidation failed", "title_id", titleID, "error", err)
	}

	return nil
}
