package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/wordbin/internal/model"
	"github.com/hitoshi/wordbin/internal/repository"
)

// MetricsRecorder はスケジューラが発行するメトリクスのインターフェース。
type MetricsRecorder interface {
	// RecordReview はレビュー結果を記録する。outcomeは"correct"または"incorrect"。
	RecordReview(outcome string)
	// RecordCardMastered はカードが終端ビンに到達したことを記録する。
	RecordCardMastered()
	// RecordCardRetired はカードがhard_to_rememberに退避されたことを記録する。
	RecordCardRetired()
}

// Service は間隔反復スケジューリングのサービス層。
// ロジック自体はステートレスで、並行制御はリポジトリの楽観的排他制御に委ねる。
type Service struct {
	cards        repository.CardRepository
	metrics      MetricsRecorder
	maxIncorrect int

	// now はテストで時刻を固定するためのフック。
	now func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsはnilでもよい。maxIncorrectはhard_to_rememberに退避する誤答回数の閾値。
func NewService(cards repository.CardRepository, metrics MetricsRecorder, maxIncorrect int) *Service {
	return &Service{
		cards:        cards,
		metrics:      metrics,
		maxIncorrect: maxIncorrect,
		now:          time.Now,
	}
}

// RecordReview はカードへの回答を記録し、スケジュールを更新する。
//
// 正解時: ビンが11未満なら1つ昇格し、新しいビンの間隔後に復習期限を設定する。
// 誤答時: ビンを必ず1に降格し（ビン0からでも1へ）、誤答回数を加算する。
// どちらの場合も、誤答回数が閾値以上ならhard_to_rememberを立てる。
//
// 終端ビンやhard_to_rememberのカードも拒否せず通常どおり処理する。
// これらのフラグは出題選択のみを制御し、回答の受理は制御しない。
//
// 並行レビューで更新が競合した場合はリトライせず、REVIEW_CONFLICTエラーを返す。
func (s *Service) RecordReview(ctx context.Context, cardID string, correct bool) (*model.Card, error) {
	card, err := s.cards.FindByID(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("カードの取得に失敗しました: %w", err)
	}
	if card == nil {
		return nil, model.NewCardNotFoundError(cardID)
	}

	now := s.now()
	oldBin := card.BinNumber

	if correct {
		if card.BinNumber < model.BinCompleted {
			card.BinNumber++
		}
		card.NextReview = now.Add(IntervalForBin(card.BinNumber))
	} else {
		// 誤答は常にビン1へ降格する。ビン0（未学習）に戻すことはない。
		card.BinNumber = model.BinMin
		card.IncorrectCount++
		card.NextReview = now.Add(IntervalForBin(model.BinMin))
	}

	// 閾値判定は回答の正誤に関わらず毎回行う。誤答回数は減らないため、
	// 一度条件を満たしたカードはフラグが立ったまま維持される。
	if card.IncorrectCount >= s.maxIncorrect {
		card.IsHardToRemember = true
	}

	if err := s.cards.Update(ctx, card); err != nil {
		if errors.Is(err, model.ErrVersionConflict) {
			slog.Warn("レビューの適用が競合しました",
				slog.String("card_id", card.ID),
				slog.Int("version", card.Version),
			)
			return nil, model.NewReviewConflictError()
		}
		return nil, fmt.Errorf("カードの保存に失敗しました: %w", err)
	}

	s.recordMetrics(card, oldBin, correct)

	slog.Info("レビューを記録しました",
		slog.String("card_id", card.ID),
		slog.String("user_id", card.UserID),
		slog.Bool("correct", correct),
		slog.Int("old_bin", oldBin),
		slog.Int("new_bin", card.BinNumber),
		slog.Int("incorrect_count", card.IncorrectCount),
		slog.Bool("hard_to_remember", card.IsHardToRemember),
	)

	return card, nil
}

func (s *Service) recordMetrics(card *model.Card, oldBin int, correct bool) {
	if s.metrics == nil {
		return
	}

	if correct {
		s.metrics.RecordReview("correct")
	} else {
		s.metrics.RecordReview("incorrect")
	}
	if card.BinNumber == model.BinCompleted && oldBin != model.BinCompleted {
		s.metrics.RecordCardMastered()
	}
	if card.IsHardToRemember && card.IncorrectCount == s.maxIncorrect && !correct {
		s.metrics.RecordCardRetired()
	}
}

// PickNextCard は次に出題するカードを選択する。
//
// 選択の優先順位:
//  1. ビン1〜10で復習期限が到来しているカード。ビン番号の降順
//     （マスターに近いカード優先）、同ビン内ではnext_reviewの昇順。
//  2. ビン0（未学習）のカード。作成日時の昇順。
//
// 終端ビンとhard_to_rememberのカードはどの分岐でも返さない。
// 出題できるカードがない場合はNO_CARD_AVAILABLEエラーを返す。
// 呼び出し元はComputeStatusで「あとで来て」か「カード作成が必要」かを判別する。
func (s *Service) PickNextCard(ctx context.Context, userID string) (*model.Card, error) {
	now := s.now()

	card, err := s.cards.FindDueByUser(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("復習対象カードの取得に失敗しました: %w", err)
	}
	if card != nil {
		return card, nil
	}

	card, err = s.cards.FindNewByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("未学習カードの取得に失敗しました: %w", err)
	}
	if card != nil {
		return card, nil
	}

	return nil, model.NewNoCardAvailableError()
}

// ComputeStatus はユーザーの学習状況を集計して返す。カードは変更しない。
func (s *Service) ComputeStatus(ctx context.Context, userID string) (*model.StudyStatus, error) {
	counts, err := s.cards.StudyCounts(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("学習状況の集計に失敗しました: %w", err)
	}

	status := &model.StudyStatus{
		ReadyCardsCount:  counts.ReadyCards,
		NewCardsCount:    counts.NewCards,
		TotalActiveCards: counts.ActiveCards,
		CompletedCards:   counts.CompletedCards,
		HardCards:        counts.HardCards,
	}

	switch {
	case counts.ReadyCards > 0 || counts.NewCards > 0:
		status.HasCards = true
		status.Message = fmt.Sprintf("復習できるカード: %d枚、新しいカード: %d枚", counts.ReadyCards, counts.NewCards)
	case counts.ActiveCards > 0:
		status.Message = "いまは復習できるカードがありません。しばらくしてからまた学習してください。"
		status.NextReviewAt = counts.NextReviewAt
	default:
		status.Message = "復習する単語はもうありません。すべて学習済みです！"
	}

	return status, nil
}
