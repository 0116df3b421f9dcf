package adapters

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	pentity "portfolio_backend/internal/feature/portfolio/domain/entity"
	"portfolio_backend/internal/feature/prices/domain/entity"
	"portfolio_backend/internal/feature/prices/usecase"
)

type symbolGorm struct {
	db *gorm.DB
}

var _ usecase.SymbolRepository = (*symbolGorm)(nil)

func NewSymbolRepository(db *gorm.DB) *symbolGorm {
	return &symbolGorm{db: db}
}

type SymbolModel struct {
	ID     uint   `gorm:"primaryKey"`
	Code   string `gorm:"size:32;not null;uniqueIndex"`
	Name   string `gorm:"size:128;not null;default:''"`
	Class  string `gorm:"size:16;not null;default:'equity'"`
	Active bool   `gorm:"not null;default:true"`
}

func (SymbolModel) TableName() string {
	return "symbols"
}

func (r *symbolGorm) ListActive(ctx context.Context) ([]entity.Symbol, error) {
	var rows []SymbolModel
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Symbol, 0, len(rows))
	for _, m := range rows {
		out = append(out, entity.Symbol{
			Code:   m.Code,
			Name:   m.Name,
			Class:  pentity.AssetClass(m.Class),
			Active: m.Active,
		})
	}
	return out, nil
}

// UpsertBatch はユニバース定義を登録・更新します（シード用）。
func (r *symbolGorm) UpsertBatch(ctx context.Context, symbols []entity.Symbol) error {
	if len(symbols) == 0 {
		return nil
	}
	ms := make([]SymbolModel, 0, len(symbols))
	for _, s := range symbols {
		ms = append(ms, SymbolModel{
			Code:   s.Code,
			Name:   s.Name,
			Class:  string(s.Class),
			Active: s.Active,
		})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "class", "active"}),
	}).Create(&ms).Error
}
