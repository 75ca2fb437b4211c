package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Rengoky/Base-for-films/internal/cache"
	"github.com/Rengoky/Base-for-films/internal/httpapi/models"
	"github.com/Rengoky/Base-for-films/internal/httpapi/repository"

	"gorm.io/gorm"
)

var (
	ErrTitleNotFound = errors.New("title not found")
	ErrYearInFuture  = errors.New("year must not exceed the current year")
)

// TitleInput is the write payload for a title. Category and genres are
// referenced by slug.
type TitleInput struct {
	Name         string
	Year         int
	Description  *string
	CategorySlug *string
	GenreSlugs   []string
}

// TitleUpdate carries the optional fields of a title patch. Nil means "leave
// unchanged"; GenreSlugs nil means "keep current genres".
type TitleUpdate struct {
	Name         *string
	Year         *int
	Description  *string
	CategorySlug *string
	GenreSlugs   []string
}

type TitleService interface {
	List(ctx context.Context, filter repository.TitleFilter, limit, offset int) ([]models.Title, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Title, error)
	Create(ctx context.Context, in TitleInput) (*models.Title, error)
	Update(ctx context.Context, id int64, upd TitleUpdate) (*models.Title, error)
	Delete(ctx context.Context, id int64) error
}

type titleService struct {
	titleRepo    repository.TitleRepository
	categoryRepo repository.CategoryRepository
	genreRepo    repository.GenreRepository
	titleCache   *cache.TitleCache
	logger       *slog.Logger
}

func NewTitleService(
	titleRepo repository.TitleRepository,
	categoryRepo repository.CategoryRepository,
	genreRepo repository.GenreRepository,
	titleCache *cache.TitleCache,
	logger *slog.Logger,
) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		titleCache:   titleCache,
		logger:       logger,
	}
}

func (s *titleService) List(ctx context.Context, filter repository.TitleFilter, limit, offset int) ([]models.Title, int64, error) {
	return s.titleRepo.List(ctx, filter, limit, offset)
}

func (s *titleService) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	if cached, err := s.titleCache.Get(ctx, id); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		s.logger.Warn("title cache read failed", "title_id", id, "error", err)
	}

	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}

	if err := s.titleCache.Set(ctx, title); err != nil {
		s.logger.Warn("title cache write failed", "title_id", id, "error", err)
	}

	return title, nil
}

func (s *titleService) Create(ctx context.Context, in TitleInput) (*models.Title, error) {
	if err := validateYear(in.Year); err != nil {
		return nil, err
	}

	title := &models.Title{
		Name:        in.Name,
		Year:        in.Year,
		Description: in.Description,
	}

	if in.CategorySlug != nil {
		category, err := s.categoryRepo.FindBySlug(ctx, *in.CategorySlug)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
		title.CategoryID = &category.ID
	}

	genres, err := s.resolveGenres(ctx, in.GenreSlugs)
	if err != nil {
		return nil, err
	}

	if err := s.titleRepo.CreateWithGenres(ctx, title, genres); err != nil {
		return nil, err
	}

	return s.titleRepo.GetByID(ctx, title.ID)
}

func (s *titleService) Update(ctx context.Context, id int64, upd TitleUpdate) (*models.Title, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}

	if upd.Name != nil {
		title.Name = *upd.Name
	}
	if upd.Year != nil {
		if err := validateYear(*upd.Year); err != nil {
			return nil, err
		}
		title.Year = *upd.Year
	}
	if upd.Description != nil {
		title.Description = upd.Description
	}
	if upd.CategorySlug != nil {
		if *upd.CategorySlug == "" {
			title.CategoryID = nil
		} else {
			category, err := s.categoryRepo.FindBySlug(ctx, *upd.CategorySlug)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrCategoryNotFound
				}
				return nil, err
			}
			title.CategoryID = &category.ID
		}
	}

	if err := s.titleRepo.Update(ctx, title); err != nil {
		return nil, err
	}

	if upd.GenreSlugs != nil {
		genres, err := s.resolveGenres(ctx, upd.GenreSlugs)
		if err != nil {
			return nil, err
		}
		if err := s.titleRepo.ReplaceGenres(ctx, title, genres); err != nil {
			return nil, err
		}
	}

	if err := s.titleCache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("title cache invalidation failed", "title_id", id, "error", err)
	}

	return s.titleRepo.GetByID(ctx, id)
}

func (s *titleService) Delete(ctx context.Context, id int64) error {
	if err := s.titleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTitleNotFound
		}
		return err
	}

	if err := s.titleCache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("title cache invalidation failed", "title_id", id, "error", err)
	}

	return nil
}

func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]models.Genre, error) {
	if len(slugs) == 0 {
		return nil, nil
	}

	// A repeated slug in the payload is not a missing genre
	seen := make(map[string]struct{}, len(slugs))
	unique := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		unique = append(unique, slug)
	}

	genres, err := s.genreRepo.FindBySlugs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(genres) != len(unique) {
		return nil, ErrGenreNotFound
	}
	return genres, nil
}

func validateYear(year int) error {
	if year > time.Now().Year() {
		return ErrYearInFuture
	}
	return nil
}
