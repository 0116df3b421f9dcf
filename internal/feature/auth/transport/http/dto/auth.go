// Package dto はauthフィーチャーのリクエスト/レスポンス型を定義します。
package dto

// SignupReq は POST /signup のリクエストボディです。
// パスワードの最低長はusecaseの契約に合わせてバインド時に弾きます。
type SignupReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginReq は POST /login のリクエストボディです。
// 既存ユーザーのパスワードは長さを問わないため min は付けません。
type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
