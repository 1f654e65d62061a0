package user

import "context"

// Repository は従業員エンティティの永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	Update(ctx context.Context, u *User) (*User, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	// LatestEmployeeCode は作成日時が最新の従業員の社員コードを返します。従業員
	// が 1 人もいなければ空文字列を返します (エラーにはなりません)。
	LatestEmployeeCode(ctx context.Context) (string, error)
	List(ctx context.Context, filter ListUsersFilter) ([]*User, string, error)
	// LockSequence は社員コードの採番を直列化する排他ロックを取得します。
	LockSequence(ctx context.Context) error
}

// ListUsersFilter は一覧取得の絞り込み条件です。Search は名前・メールアドレス・
// 電話番号に対する部分一致です。
type ListUsersFilter struct {
	Status *Status
	Role   *Role
	Search string
	Limit  int
	Offset int
}
