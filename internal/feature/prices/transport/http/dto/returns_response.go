// Package dto はpricesフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import (
	"math"

	pentity "portfolio_backend/internal/feature/portfolio/domain/entity"
)

// ReturnMatrixResp は生のリターン行列のレスポンスDTOです。
// 欠損セル（NaN/±Inf）はJSONで表現できないためnullに変換されます。
type ReturnMatrixResp struct {
	Dates   []string     `json:"dates"`   // ISO日付（YYYY-MM-DD）
	Symbols []string     `json:"symbols"` // 列の銘柄コード
	Data    [][]*float64 `json:"data"`    // Data[i][j] = Symbols[j] の Dates[i] のリターン
}

// NewReturnMatrixResp はドメインの行列をレスポンスDTOに変換します。
func NewReturnMatrixResp(m pentity.ReturnMatrix) ReturnMatrixResp {
	resp := ReturnMatrixResp{
		Dates:   make([]string, len(m.Dates)),
		Symbols: append([]string(nil), m.Symbols...),
		Data:    make([][]*float64, len(m.Data)),
	}
	for i, d := range m.Dates {
		resp.Dates[i] = d.UTC().Format("2006-01-02")
	}
	for i, row := range m.Data {
		out := make([]*float64, len(row))
		for j, v := range row {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				r := v
				out[j] = &r
			}
		}
		resp.Data[i] = out
	}
	return resp
}
