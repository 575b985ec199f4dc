package db

import (
	"context"
	"testing"

	e "github.com/gartstein/staffhub/internal/employee/errors"
	"github.com/gartstein/staffhub/internal/employee/models"
	"github.com/gartstein/staffhub/internal/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupTestDB initializes an in-memory SQLite database for testing.
func SetupTestDB(t *testing.T) *Repository {
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to open test database")

	err = gdb.AutoMigrate(&models.Employee{})
	require.NoError(t, err, "failed to migrate test database")

	return &Repository{db: gdb}
}

func seedEmployee(t *testing.T, repo *Repository, email string, deptID *uint) *models.Employee {
	emp := &models.Employee{
		FirstName:    "Test",
		LastName:     "Person",
		Email:        email,
		DepartmentID: deptID,
	}
	require.NoError(t, repo.CreateEmployee(context.Background(), emp))
	return emp
}

func TestCreateEmployeeDuplicateEmail(t *testing.T) {
	repo := SetupTestDB(t)
	seedEmployee(t, repo, "ada@example.com", nil)

	err := repo.CreateEmployee(context.Background(), &models.Employee{
		FirstName: "Other", LastName: "Person", Email: "ada@example.com",
	})
	assert.ErrorIs(t, err, e.ErrDuplicateEmail, "duplicate email should map to ErrDuplicateEmail")
}

func TestGetEmployeeNotFound(t *testing.T) {
	repo := SetupTestDB(t)

	_, err := repo.GetEmployee(context.Background(), 4242)
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func TestCountByDepartment(t *testing.T) {
	repo := SetupTestDB(t)

	seedEmployee(t, repo, "a@example.com", utils.Ptr(uint(1)))
	seedEmployee(t, repo, "b@example.com", utils.Ptr(uint(1)))
	seedEmployee(t, repo, "c@example.com", utils.Ptr(uint(2)))
	seedEmployee(t, repo, "d@example.com", nil)

	count, err := repo.CountByDepartment(context.Background(), 1)
	assert.NoError(t, err)
	assert.EqualValues(t, 2, count)

	count, err = repo.CountByDepartment(context.Background(), 3)
	assert.NoError(t, err)
	assert.EqualValues(t, 0, count, "unknown department counts zero")
}

func TestStatsByDepartment(t *testing.T) {
	repo := SetupTestDB(t)

	seedEmployee(t, repo, "a@example.com", utils.Ptr(uint(1)))
	seedEmployee(t, repo, "b@example.com", utils.Ptr(uint(1)))
	seedEmployee(t, repo, "c@example.com", utils.Ptr(uint(2)))
	seedEmployee(t, repo, "d@example.com", nil)

	rows, err := repo.StatsByDepartment(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// NULL department groups sort first in SQLite's ascending order.
	assert.Nil(t, rows[0].DepartmentID)
	assert.EqualValues(t, 1, rows[0].Count)
	assert.EqualValues(t, 1, *rows[1].DepartmentID)
	assert.EqualValues(t, 2, rows[1].Count)
	assert.EqualValues(t, 2, *rows[2].DepartmentID)
	assert.EqualValues(t, 1, rows[2].Count)
}

func TestListEmployeesFilters(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	dept := utils.Ptr(uint(7))
	require.NoError(t, repo.CreateEmployee(ctx, &models.Employee{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", DepartmentID: dept,
	}))
	require.NoError(t, repo.CreateEmployee(ctx, &models.Employee{
		FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com",
	}))

	emps, total, err := repo.ListEmployees(ctx, models.Filter{
		LastName: "Love", Page: 1, Size: 20, Sort: "id", Order: "asc",
	})
	assert.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, emps, 1)
	assert.Equal(t, "Lovelace", emps[0].LastName)

	emps, total, err = repo.ListEmployees(ctx, models.Filter{
		DepartmentID: dept, Page: 1, Size: 20, Sort: "id", Order: "asc",
	})
	assert.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, emps, 1)
	assert.Equal(t, "ada@example.com", emps[0].Email)
}

func TestEmailExistsExcludesOwnRecord(t *testing.T) {
	repo := SetupTestDB(t)
	emp := seedEmployee(t, repo, "ada@example.com", nil)

	exists, err := repo.EmailExists(context.Background(), "ada@example.com", 0)
	assert.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.EmailExists(context.Background(), "ada@example.com", emp.ID)
	assert.NoError(t, err)
	assert.False(t, exists, "record's own email must not count against itself")
}
