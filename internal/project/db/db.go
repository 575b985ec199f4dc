// Package db implements the GORM-backed repository for projects and
// their memberships.
package db

import (
	"context"
	"errors"
	"fmt"

	e "github.com/gartstein/staffhub/internal/project/errors"
	"github.com/gartstein/staffhub/internal/project/models"
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

	if err := gdb.AutoMigrate(&models.Project{}, &models.ProjectMember{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Repository{db: gdb}, nil
}

func (r *Repository) CreateProject(ctx context.Context, project *models.Project) error {
	result := r.db.WithContext(ctx).Create(project)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return e.ErrDuplicateCode
		}
		return result.Error
	}
	return nil
}

func (r *Repository) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	result := r.db.WithContext(ctx).First(&project, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return &project, nil
}

func (r *Repository) ListProjects(ctx context.Context, filter models.Filter) ([]models.Project, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Project{})
	if filter.Name != "" {
		query = query.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Code != "" {
		query = query.Where("code LIKE ?", "%"+filter.Code+"%")
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []models.Project
	err := query.
		Order(filter.Sort + " " + filter.Order).
		Offset((filter.Page - 1) * filter.Size).
		Limit(filter.Size).
		Find(&projects).Error
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// SaveProject writes the full record after the caller has merged fields.
func (r *Repository) SaveProject(ctx context.Context, project *models.Project) error {
	result := r.db.WithContext(ctx).Save(project)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return e.ErrDuplicateCode
		}
		return result.Error
	}
	return nil
}

// DeleteProject removes a project and its membership rows in one
// transaction. Memberships are owned by the project, so they go with it.
func (r *Repository) DeleteProject(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.ProjectMember{}, "project_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Project{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return e.ErrNotFound
		}
		return nil
	})
}

// CodeExists reports whether another project (excluding excludeID) uses
// the given code.
func (r *Repository) CodeExists(ctx context.Context, code string, excludeID uint) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("code = ? AND id <> ?", code, excludeID).
		Limit(1).
		Count(&count)
	return count > 0, result.Error
}

// AddMembers inserts the batch atomically: either every row lands or none.
func (r *Repository) AddMembers(ctx context.Context, members []models.ProjectMember) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range members {
			if err := tx.Create(&members[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) RemoveMember(ctx context.Context, projectID, employeeID uint) error {
	result := r.db.WithContext(ctx).
		Delete(&models.ProjectMember{}, "project_id = ? AND employee_id = ?", projectID, employeeID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrMemberNotFound
	}
	return nil
}

func (r *Repository) ListMembers(ctx context.Context, projectID uint) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("employee_id").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// ExistingMemberIDs returns which of the given employee ids already have a
// membership row for the project.
func (r *Repository) ExistingMemberIDs(ctx context.Context, projectID uint, employeeIDs []uint) ([]uint, error) {
	var existing []uint
	err := r.db.WithContext(ctx).Model(&models.ProjectMember{}).
		Where("project_id = ? AND employee_id IN ?", projectID, employeeIDs).
		Order("employee_id").
		Pluck("employee_id", &existing).Error
	if err != nil {
		return nil, err
	}
	return existing, nil
}

// CountByStatus groups project counts by status, ordered by status.
func (r *Repository) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	var rows []models.StatusCount
	err := r.db.WithContext(ctx).Model(&models.Project{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Order("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// StartDates returns every project's start date. The month grouping is a
// read-side reduction done by the caller, keeping the query portable
// across SQL dialects.
func (r *Repository) StartDates(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.WithContext(ctx).
		Select("id", "start_date").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
