package application

import "context"

// MockCategoryService answers category existence checks without a repository.
// Every category exists unless listed in Missing.
type MockCategoryService struct {
	Missing map[int64]bool
}

func (m *MockCategoryService) DoesUserCategoryExist(ctx context.Context, categoryID int64, userID string) (bool, error) {
	if m.Missing[categoryID] {
		return false, nil
	}
	return true, nil
}
