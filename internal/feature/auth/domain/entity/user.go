// Package entity はauthフィーチャーのドメインエンティティを定義します。
package entity

import "time"

// User はAPIにアクセスする登録済みユーザーです。
// メールアドレスは小文字に正規化された形で一意に保存されます。
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `gorm:"size:255;not null"` // bcryptハッシュのみ。平文は保存しない
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
