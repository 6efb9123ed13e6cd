// Package model はドメインモデルを定義する。
package model

import "time"

// User はフラッシュカードを所有する学習ユーザーを表す。
// nameはシステム全体で一意。同時登録ユーザー数の上限はサービス層で制御する。
type User struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
