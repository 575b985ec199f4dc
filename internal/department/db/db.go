// Package db implements the GORM-backed repository for departments.
package db

import (
	"context"
	"errors"
	"fmt"

	e "github.com/gartstein/staffhub/internal/department/errors"
	"github.com/gartstein/staffhub/internal/department/models"
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

	if err := gdb.AutoMigrate(&models.Department{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Repository{db: gdb}, nil
}

func (r *Repository) CreateDepartment(ctx context.Context, dept *models.Department) error {
	result := r.db.WithContext(ctx).Create(dept)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return e.ErrDuplicateName
		}
		return result.Error
	}
	return nil
}

func (r *Repository) GetDepartment(ctx context.Context, id uint) (*models.Department, error) {
	var dept models.Department
	result := r.db.WithContext(ctx).First(&dept, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return &dept, nil
}

func (r *Repository) ListDepartments(ctx context.Context, filter models.Filter) ([]models.Department, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Department{})
	if filter.Name != "" {
		query = query.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Code != "" {
		query = query.Where("code LIKE ?", "%"+filter.Code+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var depts []models.Department
	err := query.
		Order(filter.Sort + " " + filter.Order).
		Offset((filter.Page - 1) * filter.Size).
		Limit(filter.Size).
		Find(&depts).Error
	if err != nil {
		return nil, 0, err
	}
	return depts, total, nil
}

// SaveDepartment writes the full record. Used for both full updates and
// patches: the caller merges fields first, and a no-op patch still saves.
func (r *Repository) SaveDepartment(ctx context.Context, dept *models.Department) error {
	result := r.db.WithContext(ctx).Save(dept)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return e.ErrDuplicateName
		}
		return result.Error
	}
	return nil
}

func (r *Repository) DeleteDepartment(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Department{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

// NameExists reports whether another department (excluding excludeID) uses
// the given name.
func (r *Repository) NameExists(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Department{}).
		Where("name = ? AND id <> ?", name, excludeID).
		Limit(1).
		Count(&count)
	return count > 0, result.Error
}

// CodeExists reports whether another department (excluding excludeID) uses
// the given code.
func (r *Repository) CodeExists(ctx context.Context, code string, excludeID uint) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Department{}).
		Where("code = ? AND id <> ?", code, excludeID).
		Limit(1).
		Count(&count)
	return count > 0, result.Error
}

func (r *Repository) WithTransaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
