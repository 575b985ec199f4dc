// Package db implements the GORM-backed repository for employees.
package db

import (
	"context"
	"errors"
	"fmt"

	e "github.com/gartstein/staffhub/internal/employee/errors"
	"github.com/gartstein/staffhub/internal/employee/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func NewRepository(cfg *Config) (*Repository, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := gdb.AutoMigrate(&models.Employee{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Repository{db: gdb}, nil
}

func (r *Repository) CreateEmployee(ctx context.Context, emp *models.Employee) error {
	result := r.db.WithContext(ctx).Create(emp)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return e.ErrDuplicateEmail
		}
		return result.Error
	}
	return nil
}

func (r *Repository) GetEmployee(ctx context.Context, id uint) (*models.Employee, error) {
	var emp models.Employee
	result := r.db.WithContext(ctx).First(&emp, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return &emp, nil
}

func (r *Repository) ListEmployees(ctx context.Context, filter models.Filter) ([]models.Employee, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Employee{})
	if filter.LastName != "" {
		query = query.Where("last_name LIKE ?", "%"+filter.LastName+"%")
	}
	if filter.Email != "" {
		query = query.Where("email LIKE ?", "%"+filter.Email+"%")
	}
	if filter.DepartmentID != nil {
		query = query.Where("department_id = ?", *filter.DepartmentID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var emps []models.Employee
	err := query.
		Order(filter.Sort + " " + filter.Order).
		Offset((filter.Page - 1) * filter.Size).
		Limit(filter.Size).
		Find(&emps).Error
	if err != nil {
		return nil, 0, err
	}
	return emps, total, nil
}

// SaveEmployee writes the full record after the caller has merged fields.
func (r *Repository) SaveEmployee(ctx context.Context, emp *models.Employee) error {
	result := r.db.WithContext(ctx).Save(emp)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return e.ErrDuplicateEmail
		}
		return result.Error
	}
	return nil
}

func (r *Repository) DeleteEmployee(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Employee{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

// EmailExists reports whether another employee (excluding excludeID) uses
// the given email.
func (r *Repository) EmailExists(ctx context.Context, email string, excludeID uint) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Employee{}).
		Where("email = ? AND id <> ?", email, excludeID).
		Limit(1).
		Count(&count)
	return count > 0, result.Error
}

// CountByDepartment answers the department service's referential guard.
func (r *Repository) CountByDepartment(ctx context.Context, departmentID uint) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Employee{}).
		Where("department_id = ?", departmentID).
		Count(&count)
	return count, result.Error
}

// StatsByDepartment groups employee counts by department id, ordered by id.
func (r *Repository) StatsByDepartment(ctx context.Context) ([]models.DepartmentCount, error) {
	var rows []models.DepartmentCount
	err := r.db.WithContext(ctx).Model(&models.Employee{}).
		Select("department_id, COUNT(*) as count").
		Group("department_id").
		Order("department_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
