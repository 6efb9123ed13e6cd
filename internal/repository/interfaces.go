// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/wordbin/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByName は指定名のユーザーを検索する。見つからない場合はnilを返す。
	FindByName(ctx context.Context, name string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// Update はユーザー情報を更新する。
	Update(ctx context.Context, user *model.User) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 所有するflashcardsはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error

	// ListAll は全ユーザーを作成日時の昇順で返す。
	ListAll(ctx context.Context) ([]*model.User, error)

	// Count は登録ユーザー数を返す。
	Count(ctx context.Context) (int, error)
}

// CardRepository はフラッシュカードデータの永続化インターフェース。
// すべてのクエリはuser_idでスコープされ、これがマルチユーザー分離の唯一の機構となる。
type CardRepository interface {
	// FindByID は指定IDのカードを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Card, error)

	// FindByUserAndWord はユーザーIDと単語でカードを検索する。見つからない場合はnilを返す。
	FindByUserAndWord(ctx context.Context, userID, word string) (*model.Card, error)

	// Create はカードを作成する。versionは1で初期化される。
	Create(ctx context.Context, card *model.Card) error

	// Update はカードを楽観的排他制御付きで更新する。
	// card.Versionが保存時のバージョンと一致しない場合はmodel.ErrVersionConflictを返す。
	// 成功時はcard.Versionをインクリメントして書き戻す。
	Update(ctx context.Context, card *model.Card) error

	// DeleteByID は指定IDのカードを削除する。
	DeleteByID(ctx context.Context, id string) error

	// ListByUser はユーザーのカード一覧を作成日時の昇順で返す。
	// includeHardがfalseの場合はhard_to_rememberのカードを除外する。
	ListByUser(ctx context.Context, userID string, includeHard bool, offset, limit int) ([]*model.Card, error)

	// CountByUser はユーザーのカード数を返す。
	CountByUser(ctx context.Context, userID string, includeHard bool) (int, error)

	// FindDueByUser はビン1〜10で復習期限が到来しているカードを1枚返す。
	// 優先順位はビン番号の降順、同ビン内ではnext_reviewの昇順。
	// hard_to_rememberと終端ビン（11）は除外する。見つからない場合はnilを返す。
	FindDueByUser(ctx context.Context, userID string, now time.Time) (*model.Card, error)

	// FindNewByUser はビン0（未学習）のカードを作成日時の昇順で1枚返す。
	// hard_to_rememberは除外する。見つからない場合はnilを返す。
	FindNewByUser(ctx context.Context, userID string) (*model.Card, error)

	// StudyCounts は学習状況の集計を1回のクエリで返す。
	StudyCounts(ctx context.Context, userID string, now time.Time) (*StudyCounts, error)
}

// StudyCounts は学習状況の集計結果。
type StudyCounts struct {
	// ReadyCards はビン1〜10で復習期限が到来しているカード数。
	ReadyCards int
	// NewCards はビン0のカード数。
	NewCards int
	// ActiveCards はhard_to_rememberでも終端ビンでもないカード数。
	ActiveCards int
	// CompletedCards は終端ビン（11）のカード数。
	CompletedCards int
	// HardCards はhard_to_rememberのカード数。
	HardCards int
	// NextReviewAt は未到来のnext_reviewのうち最も近いもの（ビン1〜10、hard除外）。
	// 該当カードがない場合はnil。
	NextReviewAt *time.Time
}
