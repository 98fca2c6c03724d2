package application

import (
	"context"
	"strings"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
)

type CategoryService struct {
	repo domain.CategoryRepository
}

func NewCategoryService(repo domain.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) CreateCategory(ctx context.Context, userID, name string) (*domain.Category, error) {
	category := &domain.Category{
		UserID: userID,
		Name:   strings.TrimSpace(name),
	}
	if err := category.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, categoryID int64, userID string) (*domain.Category, error) {
	return s.repo.FindByID(ctx, categoryID, userID)
}

func (s *CategoryService) ListCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	categories, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		return []domain.Category{}, nil
	}
	return categories, nil
}

func (s *CategoryService) RenameCategory(ctx context.Context, categoryID int64, userID, name string) (*domain.Category, error) {
	category := &domain.Category{
		ID:     categoryID,
		UserID: userID,
		Name:   strings.TrimSpace(name),
	}
	if err := category.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, categoryID, userID)
}

func (s *CategoryService) DeleteCategory(ctx context.Context, categoryID int64, userID string) error {
	return s.repo.Delete(ctx, categoryID, userID)
}

func (s *CategoryService) DoesUserCategoryExist(ctx context.Context, categoryID int64, userID string) (bool, error) {
	return s.repo.DoesUserCategoryExistByID(ctx, categoryID, userID)
}
