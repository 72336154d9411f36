package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fulluproar/backoffice/internal/domain/designer"
	"github.com/fulluproar/backoffice/internal/domain/shared"
	"github.com/fulluproar/backoffice/internal/infrastructure/persistence/models"
)

// GormCardTemplateRepository implements designer.TemplateRepository using GORM
type GormCardTemplateRepository struct {
	db *gorm.DB
}

// NewGormCardTemplateRepository creates a new GormCardTemplateRepository
func NewGormCardTemplateRepository(db *gorm.DB) *GormCardTemplateRepository {
	return &GormCardTemplateRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *GormCardTemplateRepository) WithTx(tx *gorm.DB) *GormCardTemplateRepository {
	return &GormCardTemplateRepository{db: tx}
}

// List returns every template in save order
func (r *GormCardTemplateRepository) List(ctx context.Context) ([]designer.Template, error) {
	var rows []models.CardTemplateModel
	if err := r.db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list card templates: %w", err)
	}

	templates := make([]designer.Template, 0, len(rows))
	for i := range rows {
		t, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		templates = append(templates, *t)
	}
	return templates, nil
}

// Append inserts a new template. An existing id is a conflict, never an update.
func (r *GormCardTemplateRepository) Append(ctx context.Context, template *designer.Template) error {
	model, err := models.CardTemplateModelFromDomain(template)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError("ALREADY_EXISTS", "template already exists")
		}
		return fmt.Errorf("failed to append card template: %w", err)
	}
	return nil
}

// FindByID finds a template by ID
func (r *GormCardTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*designer.Template, error) {
	var model models.CardTemplateModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find card template: %w", err)
	}
	return model.ToDomain()
}

var _ designer.TemplateRepository = (*GormCardTemplateRepository)(nil)
