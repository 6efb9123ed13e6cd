// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// ErrVersionConflict はカード更新時に楽観的排他制御のバージョン不一致を検出したことを表す。
// schedulerはリトライせず、呼び出し元がレビュー送信をやり直す。
var ErrVersionConflict = errors.New("カードが他のセッションによって更新されています")

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, study, user, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeUserLimit         = "USER_LIMIT"
	ErrCodeDuplicateUserName = "DUPLICATE_USER_NAME"
	ErrCodeCardNotFound      = "CARD_NOT_FOUND"
	ErrCodeDuplicateWord     = "DUPLICATE_WORD"
	ErrCodeCardLimit         = "CARD_LIMIT"
	ErrCodeNoCardAvailable   = "NO_CARD_AVAILABLE"
	ErrCodeReviewConflict    = "REVIEW_CONFLICT"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
)

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("指定されたユーザーが見つかりません: %s", userID),
		Category: "user",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewUserLimitError はユーザー数が上限に達している場合のエラーを生成する。
func NewUserLimitError(limit int) *APIError {
	return &APIError{
		Code:     ErrCodeUserLimit,
		Message:  fmt.Sprintf("登録ユーザー数が上限（%d人）に達しています。", limit),
		Category: "user",
		Action:   "不要なユーザーを削除してから、新しいユーザーを登録してください。",
	}
}

// NewDuplicateUserNameError はユーザー名が既に使用されている場合のエラーを生成する。
func NewDuplicateUserNameError(name string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateUserName,
		Message:  fmt.Sprintf("ユーザー名 '%s' は既に使用されています。", name),
		Category: "user",
		Action:   "別のユーザー名を指定してください。",
	}
}

// NewCardNotFoundError はカードが見つからない場合のエラーを生成する。
func NewCardNotFoundError(cardID string) *APIError {
	return &APIError{
		Code:     ErrCodeCardNotFound,
		Message:  fmt.Sprintf("指定されたカードが見つかりません: %s", cardID),
		Category: "study",
		Action:   "カードIDを確認してください。",
	}
}

// NewDuplicateWordError は同じ単語のカードが既に存在する場合のエラーを生成する。
func NewDuplicateWordError(word string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateWord,
		Message:  fmt.Sprintf("単語 '%s' のカードは既に登録されています。", word),
		Category: "validation",
		Action:   "既存のカードを編集するか、別の単語を登録してください。",
	}
}

// NewCardLimitError はカード数が上限に達している場合のエラーを生成する。
func NewCardLimitError(limit int) *APIError {
	return &APIError{
		Code:     ErrCodeCardLimit,
		Message:  fmt.Sprintf("カード数が上限（%d枚）に達しています。", limit),
		Category: "validation",
		Action:   "不要なカードを削除してから、新しいカードを登録してください。",
	}
}

// NewNoCardAvailableError は出題できるカードがない場合のエラーを生成する。
// エラーではあるが異常系ではなく、学習セッションの通常の終了状態を表す。
func NewNoCardAvailableError() *APIError {
	return &APIError{
		Code:     ErrCodeNoCardAvailable,
		Message:  "今すぐ復習できるカードがありません。",
		Category: "study",
		Action:   "学習状況APIで次の復習時刻を確認してください。",
	}
}

// NewReviewConflictError は並行レビューによる更新競合のエラーを生成する。
func NewReviewConflictError() *APIError {
	return &APIError{
		Code:     ErrCodeReviewConflict,
		Message:  "カードが他のセッションによって更新されました。",
		Category: "study",
		Action:   "カードを取得し直してから、もう一度回答を送信してください。",
	}
}

// NewInvalidRequestError はリクエスト内容が不正な場合のエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエスト内容が不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}
