package infrastructure

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
)

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Save(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (user_id, name)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, category.UserID, category.Name).
		Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "categories_user_name_unique") {
			return financeErrors.NewValidationError("Category with this name already exists")
		}
		return err
	}
	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, categoryID int64, userID string) (*domain.Category, error) {
	query := "SELECT id, user_id, name, created_at, updated_at FROM categories WHERE id = $1 AND user_id = $2"
	var category domain.Category
	err := r.db.QueryRowContext(ctx, query, categoryID, userID).
		Scan(&category.ID, &category.UserID, &category.Name, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeErrors.ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) FindByUser(ctx context.Context, userID string) ([]domain.Category, error) {
	query := "SELECT id, user_id, name, created_at, updated_at FROM categories WHERE user_id = $1 ORDER BY name"
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.UserID, &category.Name, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	query := "UPDATE categories SET name = $1, updated_at = now() WHERE id = $2 AND user_id = $3"
	result, err := r.db.ExecContext(ctx, query, category.Name, category.ID, category.UserID)
	if err != nil {
		if isUniqueViolation(err, "categories_user_name_unique") {
			return financeErrors.NewValidationError("Category with this name already exists")
		}
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return financeErrors.ErrCategoryNotFound
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, categoryID int64, userID string) error {
	query := "DELETE FROM categories WHERE id = $1 AND user_id = $2"
	result, err := r.db.ExecContext(ctx, query, categoryID, userID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return financeErrors.NewValidationError("Category is still used by expenses and cannot be deleted")
		}
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return financeErrors.ErrCategoryNotFound
	}
	return nil
}

func (r *CategoryRepository) DoesUserCategoryExistByID(ctx context.Context, categoryID int64, userID string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1 AND user_id = $2)"
	err := r.db.QueryRowContext(ctx, query, categoryID, userID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
