package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	pentity "portfolio_backend/internal/feature/portfolio/domain/entity"
	"portfolio_backend/internal/feature/prices/domain/entity"
	"portfolio_backend/internal/feature/prices/usecase"
)

type priceGorm struct {
	db *gorm.DB
}

var _ usecase.PriceRepository = (*priceGorm)(nil)

func NewPriceRepository(db *gorm.DB) *priceGorm {
	return &priceGorm{db: db}
}

type PriceModel struct {
	ID     uint      `gorm:"primaryKey"`
	Symbol string    `gorm:"size:32;not null;uniqueIndex:price_sym_date,priority:1"`
	Class  string    `gorm:"size:16;not null"`
	Date   time.Time `gorm:"not null;uniqueIndex:price_sym_date,priority:2"`

	Open   float64 `gorm:"not null"`
	High   float64 `gorm:"not null"`
	Low    float64 `gorm:"not null"`
	Close  float64 `gorm:"not null"`
	Volume int64   `gorm:"not null;default:0"`
}

func (PriceModel) TableName() string {
	return "prices"
}

func toModel(e entity.Price) PriceModel {
	return PriceModel{
		Symbol: e.Symbol,
		Class:  string(e.Class),
		Date:   e.Date,
		Open:   e.Open,
		High:   e.High,
		Low:    e.Low,
		Close:  e.Close,
		Volume: e.Volume,
	}
}

func toEntity(m PriceModel) entity.Price {
	return entity.Price{
		Symbol: m.Symbol,
		Class:  pentity.AssetClass(m.Class),
		Date:   m.Date,
		Open:   m.Open,
		High:   m.High,
		Low:    m.Low,
		Close:  m.Close,
		Volume: m.Volume,
	}
}

func (r *priceGorm) UpsertBatch(ctx context.Context, prices []entity.Price) error {
	if len(prices) == 0 {
		return nil
	}
	ms := make([]PriceModel, 0, len(prices))
	for _, e := range prices {
		ms = append(ms, toModel(e))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"class", "open", "high", "low", "close", "volume"}),
	}).Create(&ms).Error
}

// FindBySymbol は日付昇順で返します。limit > 0 のときは直近limit件です。
func (r *priceGorm) FindBySymbol(ctx context.Context, symbol string, limit int) ([]entity.Price, error) {
	var rows []PriceModel
	q := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	// DESCで取得した直近limit件を昇順へ並べ直す
	out := make([]entity.Price, len(rows))
	for i, m := range rows {
		out[len(rows)-1-i] = toEntity(m)
	}
	return out, nil
}
