package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/infrastructure"
)

func TestCreateCategory(t *testing.T) {
	service := NewCategoryService(infrastructure.NewMockCategoryRepository())

	category, err := service.CreateCategory(context.Background(), "user-1", "  Food ")
	assert.NoError(t, err)
	assert.Equal(t, "Food", category.Name)

	_, err = service.CreateCategory(context.Background(), "user-1", "Food")
	assert.True(t, financeErrors.IsValidationError(err), "duplicate names are rejected per user")

	_, err = service.CreateCategory(context.Background(), "user-1", "")
	assert.True(t, financeErrors.IsValidationError(err))
}

func TestRenameCategory_NotFound(t *testing.T) {
	service := NewCategoryService(infrastructure.NewMockCategoryRepository())

	_, err := service.RenameCategory(context.Background(), 42, "user-1", "Travel")
	assert.True(t, financeErrors.IsNotFoundError(err))
}

func TestListCategories_NeverNil(t *testing.T) {
	service := NewCategoryService(infrastructure.NewMockCategoryRepository())

	categories, err := service.ListCategories(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.NotNil(t, categories)
	assert.Empty(t, categories)
}

func TestDoesUserCategoryExist(t *testing.T) {
	repo := infrastructure.NewMockCategoryRepository()
	service := NewCategoryService(repo)

	category, err := service.CreateCategory(context.Background(), "user-1", "Food")
	assert.NoError(t, err)

	exists, err := service.DoesUserCategoryExist(context.Background(), category.ID, "user-1")
	assert.NoError(t, err)
	assert.True(t, exists)

	exists, err = service.DoesUserCategoryExist(context.Background(), category.ID, "user-2")
	assert.NoError(t, err)
	assert.False(t, exists, "categories are scoped to their owner")
}
