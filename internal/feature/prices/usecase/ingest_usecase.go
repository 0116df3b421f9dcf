// Package usecase は価格データの取得・永続化・リターン行列構築の
// ビジネスロジックを実装します。
package usecase

import (
	"context"
	"log/slog"

	"portfolio_backend/internal/feature/prices/domain/entity"
)

const (
	// ingestOutputSize は1回のリクエストで取得する日次バーの件数です。
	ingestOutputSize = 500
)

// MarketRepository は外部APIから日次価格データを取得するリポジトリの
// インターフェイスです。Goの慣例に従い、利用者（usecase）側で定義します。
type MarketRepository interface {
	GetDailySeries(ctx context.Context, symbol string, outputsize int) ([]entity.Price, error)
}

// PriceRepository は価格データの永続化レイヤーを抽象化します。
type PriceRepository interface {
	UpsertBatch(ctx context.Context, prices []entity.Price) error
	// FindBySymbol は指定銘柄の日次バーを日付昇順で返します。
	// limit > 0 のとき直近limit件に制限します。
	FindBySymbol(ctx context.Context, symbol string, limit int) ([]entity.Price, error)
}

// SymbolRepository は構成済みユニバースの読み取りレイヤーを抽象化します。
type SymbolRepository interface {
	ListActive(ctx context.Context) ([]entity.Symbol, error)
}

// Throttler は外部APIのクレジット上限に合わせて呼び出し間隔を制御します。
// 実装はプロバイダー側（platform/externalapi/twelvedata）にあります。
type Throttler interface {
	Wait()
}

// IngestUsecase は外部APIから日次価格を取得し、データベースへ永続化します。
type IngestUsecase struct {
	market   MarketRepository
	prices   PriceRepository
	throttle Throttler
}

// NewIngestUsecase は新しいIngestUsecaseを作成します。
func NewIngestUsecase(market MarketRepository, prices PriceRepository, throttle Throttler) *IngestUsecase {
	return &IngestUsecase{market: market, prices: prices, throttle: throttle}
}

// ingestOne は1銘柄の日次時系列を取得して一括upsertします。
func (iu *IngestUsecase) ingestOne(ctx context.Context, sym entity.Symbol) error {
	ps, err := iu.market.GetDailySeries(ctx, sym.Code, ingestOutputSize)
	if err != nil {
		return err
	}
	for i := range ps {
		ps[i].Symbol = sym.Code
		ps[i].Class = sym.Class
	}
	return iu.prices.UpsertBatch(ctx, ps)
}

// IngestAll はユニバース全銘柄の日次価格を取得・永続化します。
// APIのレートリミットを考慮してリクエスト間に待機を入れます。
// 1銘柄の失敗では処理を止めず、ログに残して次の銘柄へ進みます。
func (iu *IngestUsecase) IngestAll(ctx context.Context, symbols []entity.Symbol) error {
	for _, s := range symbols {
		iu.throttle.Wait()
		if err := iu.ingestOne(ctx, s); err != nil {
			slog.Error("failed to ingest prices", "symbol", s.Code, "class", string(s.Class), "error", err)
			continue
		}
	}
	return nil
}
