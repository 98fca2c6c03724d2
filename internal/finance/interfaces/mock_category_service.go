package interfaces

import (
	"context"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
)

type MockCategoryService struct {
	categories []domain.Category
	failWith   error
}

func (m *MockCategoryService) CreateCategory(ctx context.Context, userID, name string) (*domain.Category, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	category := domain.Category{ID: int64(len(m.categories) + 1), UserID: userID, Name: name}
	m.categories = append(m.categories, category)
	return &category, nil
}

func (m *MockCategoryService) GetCategory(ctx context.Context, categoryID int64, userID string) (*domain.Category, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	for i := range m.categories {
		if m.categories[i].ID == categoryID && m.categories[i].UserID == userID {
			return &m.categories[i], nil
		}
	}
	return nil, financeErrors.ErrCategoryNotFound
}

func (m *MockCategoryService) ListCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.categories, nil
}

func (m *MockCategoryService) RenameCategory(ctx context.Context, categoryID int64, userID, name string) (*domain.Category, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	category, err := m.GetCategory(ctx, categoryID, userID)
	if err != nil {
		return nil, err
	}
	category.Name = name
	return category, nil
}

func (m *MockCategoryService) DeleteCategory(ctx context.Context, categoryID int64, userID string) error {
	return m.failWith
}
