package usecase

import (
	"fmt"
	"math"
)

const (
	// DefaultValidationTolerance はウェイト合計の契約（Σw = 1）に対する許容誤差です。
	DefaultValidationTolerance = 1e-6
	// DefaultBoundarySlack は境界検査の許容幅です。反復ソルバーの丸め誤差は
	// 合計の許容誤差より大きく境界へ食い込むため、別の緩い値を使います。
	DefaultBoundarySlack = 1e-4
)

// Validator はソルバー出力の金融的な妥当性を検査します。
// いずれかの検査に失敗した結果は受理されず、呼び出し側（orchestrator）は
// ソルバー失敗として次の候補へ進みます。
type Validator struct {
	eps   float64 // 合計検査の許容誤差
	slack float64 // 境界検査の許容幅
}

// NewValidator は指定された合計許容誤差でValidatorの新しいインスタンスを生成します。
func NewValidator(eps float64) *Validator {
	if eps <= 0 {
		eps = DefaultValidationTolerance
	}
	return &Validator{eps: eps, slack: DefaultBoundarySlack}
}

// Validate は全検査を実行し、最初に失敗した検査を説明するerrorを返します。
// 検査項目:
//   - 各ウェイトが [lower-slack, upper+slack] の範囲内
//   - ウェイト合計が 1±ε
//   - NaN/Inf のウェイトが存在しない
//   - ボラティリティが厳密に正（ゼロ以下は退化した解）
//   - シャープレシオが有限
func (v *Validator) Validate(weights []float64, lower, upper, volatility, sharpe float64) error {
	sum := 0.0
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("weight %d is not finite: %v", i, w)
		}
		if w < lower-v.slack || w > upper+v.slack {
			return fmt.Errorf("weight %d = %g outside bounds [%g, %g]", i, w, lower, upper)
		}
		sum += w
	}
	if math.Abs(sum-1) > v.eps {
		return fmt.Errorf("weights sum to %g, want 1", sum)
	}
	if !(volatility > 0) {
		return fmt.Errorf("expected volatility %g is not strictly positive", volatility)
	}
	if math.IsNaN(sharpe) || math.IsInf(sharpe, 0) {
		return fmt.Errorf("sharpe ratio is not finite: %v", sharpe)
	}
	return nil
}
