package infrastructure

import (
	"context"
	"sort"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
)

type MockCategoryRepository struct {
	Categories map[int64]*domain.Category
	NextID     int64
}

func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{Categories: map[int64]*domain.Category{}, NextID: 1}
}

func (m *MockCategoryRepository) Save(ctx context.Context, category *domain.Category) error {
	for _, existing := range m.Categories {
		if existing.UserID == category.UserID && existing.Name == category.Name {
			return financeErrors.NewValidationError("Category with this name already exists")
		}
	}
	category.ID = m.NextID
	m.NextID++
	stored := *category
	m.Categories[stored.ID] = &stored
	return nil
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, categoryID int64, userID string) (*domain.Category, error) {
	existing, ok := m.Categories[categoryID]
	if !ok || existing.UserID != userID {
		return nil, financeErrors.ErrCategoryNotFound
	}
	copied := *existing
	return &copied, nil
}

func (m *MockCategoryRepository) FindByUser(ctx context.Context, userID string) ([]domain.Category, error) {
	var categories []domain.Category
	for _, category := range m.Categories {
		if category.UserID == userID {
			categories = append(categories, *category)
		}
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	existing, ok := m.Categories[category.ID]
	if !ok || existing.UserID != category.UserID {
		return financeErrors.ErrCategoryNotFound
	}
	existing.Name = category.Name
	return nil
}

func (m *MockCategoryRepository) Delete(ctx context.Context, categoryID int64, userID string) error {
	existing, ok := m.Categories[categoryID]
	if !ok || existing.UserID != userID {
		return financeErrors.ErrCategoryNotFound
	}
	delete(m.Categories, categoryID)
	return nil
}

func (m *MockCategoryRepository) DoesUserCategoryExistByID(ctx context.Context, categoryID int64, userID string) (bool, error) {
	existing, ok := m.Categories[categoryID]
	return ok && existing.UserID == userID, nil
}
