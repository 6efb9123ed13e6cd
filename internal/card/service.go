// Package card はフラッシュカード管理のドメインロジックを提供する。
package card

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/wordbin/internal/model"
	"github.com/hitoshi/wordbin/internal/repository"
)

// MetricsRecorder はカード管理が発行するメトリクスのインターフェース。
type MetricsRecorder interface {
	// RecordCardCreated はカードの新規作成を記録する。
	RecordCardCreated()
}

// Service はフラッシュカード管理のサービス層。
// 単語の一意性とユーザーあたりのカード数上限を強制する。
type Service struct {
	cards    repository.CardRepository
	users    repository.UserRepository
	metrics  MetricsRecorder
	maxCards int
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsはnilでもよい。maxCardsはユーザーあたりのカード数上限。
func NewService(cards repository.CardRepository, users repository.UserRepository, metrics MetricsRecorder, maxCards int) *Service {
	return &Service{
		cards:    cards,
		users:    users,
		metrics:  metrics,
		maxCards: maxCards,
	}
}

// Stats はユーザーのカード数と上限の集計結果。
type Stats struct {
	CurrentCount int
	Limit        int
	Remaining    int
	AtLimit      bool
}

// UpdateParams はカード更新の入力。nilのフィールドは変更しない。
type UpdateParams struct {
	Word       *string
	Definition *string
	// ResetProgress がtrueの場合、ビン・誤答回数・hard_to_rememberを初期状態に戻す。
	ResetProgress bool
}

// Create は新しいカードを作成する。
// 新規カードはビン0・誤答回数0で、即座に出題対象となる。
func (s *Service) Create(ctx context.Context, userID, word, definition string) (*model.Card, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(userID)
	}

	count, err := s.cards.CountByUser(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("カード数の取得に失敗しました: %w", err)
	}
	if count >= s.maxCards {
		return nil, model.NewCardLimitError(s.maxCards)
	}

	existing, err := s.cards.FindByUserAndWord(ctx, userID, word)
	if err != nil {
		return nil, fmt.Errorf("単語の重複チェックに失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateWordError(word)
	}

	card := &model.Card{
		ID:         uuid.NewString(),
		UserID:     userID,
		Word:       word,
		Definition: definition,
		BinNumber:  model.BinNew,
		NextReview: time.Now(),
	}

	if err := s.cards.Create(ctx, card); err != nil {
		// 並行作成をDB制約がバックストップとして検出する
		if repository.IsUniqueViolation(err) {
			return nil, model.NewDuplicateWordError(word)
		}
		return nil, fmt.Errorf("カードの作成に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordCardCreated()
	}

	slog.Info("カードを作成しました",
		slog.String("card_id", card.ID),
		slog.String("user_id", userID),
		slog.String("word", word),
	)

	return card, nil
}

// Get は指定IDのカードを取得する。
func (s *Service) Get(ctx context.Context, cardID string) (*model.Card, error) {
	card, err := s.cards.FindByID(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("カードの取得に失敗しました: %w", err)
	}
	if card == nil {
		return nil, model.NewCardNotFoundError(cardID)
	}

	return card, nil
}

// List はユーザーのカード一覧をページネーション付きで返す。
// pageは1始まり。総数も合わせて返す。
func (s *Service) List(ctx context.Context, userID string, page, perPage int, includeHard bool) ([]*model.Card, int, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * perPage

	cards, err := s.cards.ListByUser(ctx, userID, includeHard, offset, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("カード一覧の取得に失敗しました: %w", err)
	}

	total, err := s.cards.CountByUser(ctx, userID, includeHard)
	if err != nil {
		return nil, 0, fmt.Errorf("カード数の取得に失敗しました: %w", err)
	}

	return cards, total, nil
}

// Update はカードの単語・定義を更新する。
// 単語を変更する場合は同一ユーザー内での重複を確認する。
func (s *Service) Update(ctx context.Context, cardID string, params UpdateParams) (*model.Card, error) {
	card, err := s.cards.FindByID(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("カードの取得に失敗しました: %w", err)
	}
	if card == nil {
		return nil, model.NewCardNotFoundError(cardID)
	}

	if params.Word != nil && *params.Word != card.Word {
		existing, err := s.cards.FindByUserAndWord(ctx, card.UserID, *params.Word)
		if err != nil {
			return nil, fmt.Errorf("単語の重複チェックに失敗しました: %w", err)
		}
		if existing != nil && existing.ID != cardID {
			return nil, model.NewDuplicateWordError(*params.Word)
		}
		card.Word = *params.Word
	}

	if params.Definition != nil {
		card.Definition = *params.Definition
	}

	if params.ResetProgress {
		card.BinNumber = model.BinNew
		card.IncorrectCount = 0
		card.IsHardToRemember = false
		card.NextReview = time.Now()
	}

	if err := s.cards.Update(ctx, card); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, model.NewDuplicateWordError(card.Word)
		}
		if errors.Is(err, model.ErrVersionConflict) {
			return nil, model.NewReviewConflictError()
		}
		return nil, fmt.Errorf("カードの更新に失敗しました: %w", err)
	}

	slog.Info("カードを更新しました",
		slog.String("card_id", card.ID),
		slog.Bool("progress_reset", params.ResetProgress),
	)

	return card, nil
}

// Delete は指定IDのカードを削除する。
func (s *Service) Delete(ctx context.Context, cardID string) error {
	card, err := s.cards.FindByID(ctx, cardID)
	if err != nil {
		return fmt.Errorf("カードの取得に失敗しました: %w", err)
	}
	if card == nil {
		return model.NewCardNotFoundError(cardID)
	}

	if err := s.cards.DeleteByID(ctx, cardID); err != nil {
		return fmt.Errorf("カードの削除に失敗しました: %w", err)
	}

	slog.Info("カードを削除しました",
		slog.String("card_id", cardID),
		slog.String("user_id", card.UserID),
	)

	return nil
}

// GetStats はユーザーのカード数・上限・残り枠を返す。
func (s *Service) GetStats(ctx context.Context, userID string) (*Stats, error) {
	count, err := s.cards.CountByUser(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("カード数の取得に失敗しました: %w", err)
	}

	remaining := s.maxCards - count
	if remaining < 0 {
		remaining = 0
	}

	return &Stats{
		CurrentCount: count,
		Limit:        s.maxCards,
		Remaining:    remaining,
		AtLimit:      count >= s.maxCards,
	}, nil
}
