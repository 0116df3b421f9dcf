// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"portfolio_backend/internal/feature/auth/domain/entity"
)

// passwordMinLen はパスワードの最低文字数です。
const passwordMinLen = 8

// phantomHash は存在しないユーザーに対しても bcrypt 比較を1回実行する
// ためのダミーハッシュです。応答時間の差からメールアドレスの登録有無が
// 推測できないようにします。
const phantomHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type UserRepository interface {
	// Create は新しいユーザーを永続化します。メールアドレスが既に
	// 存在する場合は ErrEmailAlreadyExists を返します。
	Create(ctx context.Context, user *entity.User) error
	// FindByEmail はメールアドレスでユーザーを取得します。
	// 見つからない場合は ErrUserNotFound を返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// FindByID はIDでユーザーを取得します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)
}

// TokenIssuer は認証済みユーザーへのアクセストークン発行を抽象化します。
type TokenIssuer interface {
	GenerateToken(userID uint, email string) (string, error)
}

type authUsecase struct {
	users  UserRepository
	tokens TokenIssuer
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, tokens TokenIssuer) *authUsecase {
	return &authUsecase{users: users, tokens: tokens}
}

// normalizeEmail は前後の空白を除去し小文字へ正規化します。
// 保存と照合の両方で同じ形を使います。
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup はパスワードをbcryptでハッシュ化して新規ユーザーを登録します。
func (u *authUsecase) Signup(ctx context.Context, email, password string) error {
	if len(password) < passwordMinLen {
		return fmt.Errorf("password must be at least %d characters long", passwordMinLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{Email: normalizeEmail(email), PasswordHash: string(hash)}
	if err := u.users.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Login は資格情報を検証し、成功時に署名済みアクセストークンを返します。
// ユーザーが存在しない場合もbcrypt比較を必ず1回実行し、失敗理由は
// ErrInvalidCredentials に畳み込みます（ユーザー列挙の防止）。
func (u *authUsecase) Login(ctx context.Context, email, password string) (string, error) {
	user, findErr := u.users.FindByEmail(ctx, normalizeEmail(email))

	hash := phantomHash
	if findErr == nil {
		hash = user.PasswordHash
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	if findErr != nil || compareErr != nil {
		return "", ErrInvalidCredentials
	}

	token, err := u.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}
