// Package model はドメインモデルを定義する。
package model

import "time"

// StudyStatus は学習セッションの状況を表す。
// schedulerのComputeStatusが生成し、APIレイヤーがそのまま返す。
type StudyStatus struct {
	// Message はUI表示用の状況メッセージ。
	Message string
	// HasCards は今すぐ出題できるカードがあるかどうか。
	HasCards bool
	// ReadyCardsCount はビン1〜10で復習期限が到来しているカード数。
	ReadyCardsCount int
	// NewCardsCount はビン0（未学習）のカード数。
	NewCardsCount int
	// TotalActiveCards はhard_to_rememberでも終端ビンでもないカード数。
	TotalActiveCards int
	// CompletedCards は終端ビン（ビン11）のカード数。
	CompletedCards int
	// HardCards はhard_to_rememberフラグが立っているカード数。
	HardCards int
	// NextReviewAt は出題できるカードがない場合の最も近い復習期限。
	// 出題可能なカードがある場合、または学習中カードが存在しない場合はnil。
	NextReviewAt *time.Time
}
