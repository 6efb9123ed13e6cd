// Package model はドメインモデルを定義する。
package model

import "time"

// ビンの範囲。BinNewは未学習、BinCompletedは終端（二度と出題されない）。
const (
	BinNew       = 0
	BinMin       = 1
	BinMax       = 10
	BinCompleted = 11
)

// Card は単語と定義のペア、およびその復習進捗を表す。
// 所有ユーザーは1人で、(user_id, word)の組はDB制約で一意。
type Card struct {
	ID               string
	UserID           string
	Word             string
	Definition       string
	BinNumber        int
	IncorrectCount   int
	NextReview       time.Time
	IsHardToRemember bool

	// Version は楽観的排他制御用のバージョン番号。
	// 更新のたびにリポジトリがインクリメントし、
	// 同一カードへの並行レビューの二重適用を防ぐ。
	Version int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsCompleted はカードが終端ビン（マスター済み）に到達しているかを返す。
func (c *Card) IsCompleted() bool {
	return c.BinNumber == BinCompleted
}

// IsDue はカードが時刻nowの時点で出題対象かを返す。
// ビン0のカードは常に出題対象。hard_to_rememberと終端ビンは対象外。
func (c *Card) IsDue(now time.Time) bool {
	if c.IsHardToRemember || c.IsCompleted() {
		return false
	}
	if c.BinNumber == BinNew {
		return true
	}
	return !c.NextReview.After(now)
}
