package models

import (
	"encoding/json"
	"fmt"

	"github.com/fulluproar/backoffice/internal/domain/designer"
)

// CardTemplateModel is the GORM model for the card_templates table.
// The scene snapshot is stored as JSON text; the dimension and element
// count columns are denormalized for listing.
type CardTemplateModel struct {
	AggregateModel
	Name            string  `gorm:"type:varchar(200);not null;index"`
	DimensionName   string  `gorm:"column:dimension_name;type:varchar(20);not null"`
	DimensionWidth  float64 `gorm:"column:dimension_width;not null"`
	DimensionHeight float64 `gorm:"column:dimension_height;not null"`
	ElementCount    int     `gorm:"column:element_count;not null;default:0"`
	SnapshotVersion int     `gorm:"column:snapshot_version;not null;default:1"`
	Snapshot        string  `gorm:"type:text;not null"`
}

// TableName returns the table name for CardTemplateModel
func (CardTemplateModel) TableName() string {
	return "card_templates"
}

// ToDomain converts CardTemplateModel to domain Template
func (m *CardTemplateModel) ToDomain() (*designer.Template, error) {
	var snapshot designer.SceneSnapshot
	if err := json.Unmarshal([]byte(m.Snapshot), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot of template %s: %w", m.ID, err)
	}
	return &designer.Template{
		BaseAggregateRoot: m.AggregateModel.ToDomainAggregateRoot(),
		Name:              m.Name,
		Snapshot:          snapshot,
	}, nil
}

// CardTemplateModelFromDomain creates a CardTemplateModel from domain Template
func CardTemplateModelFromDomain(t *designer.Template) (*CardTemplateModel, error) {
	raw, err := json.Marshal(t.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot of template %s: %w", t.ID, err)
	}
	m := &CardTemplateModel{
		Name:            t.Name,
		DimensionName:   t.Snapshot.Dimension.Name.String(),
		DimensionWidth:  t.Snapshot.Dimension.Width,
		DimensionHeight: t.Snapshot.Dimension.Height,
		ElementCount:    t.ElementCount(),
		SnapshotVersion: t.Snapshot.Version,
		Snapshot:        string(raw),
	}
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	return m, nil
}
