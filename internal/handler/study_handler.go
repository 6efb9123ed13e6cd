package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/wordbin/internal/model"
)

// StudyServiceInterface は学習ハンドラーが必要とするサービスインターフェース。
type StudyServiceInterface interface {
	// PickNextCard は次に出題すべきカードを選択する。
	PickNextCard(ctx context.Context, userID string) (*model.Card, error)
	// RecordReview はレビュー結果を記録し、カードのビンを更新する。
	RecordReview(ctx context.Context, cardID string, correct bool) (*model.Card, error)
	// ComputeStatus はユーザーの学習状況を集計する。
	ComputeStatus(ctx context.Context, userID string) (*model.StudyStatus, error)
}

// StudyHandler は学習セッションのHTTPハンドラー。
type StudyHandler struct {
	service StudyServiceInterface
}

// NewStudyHandler はStudyHandlerを生成する。
func NewStudyHandler(service StudyServiceInterface) *StudyHandler {
	return &StudyHandler{service: service}
}

// reviewRequest はレビュー記録リクエストのボディ。
type reviewRequest struct {
	Correct *bool `json:"correct" validate:"required"`
}

// studyCardResponse は出題カードのAPIレスポンス。
// 学習画面では定義を先に見せるため、単語と定義の両方を返す。
type studyCardResponse struct {
	ID               string `json:"id"`
	Word             string `json:"word"`
	Definition       string `json:"definition"`
	BinNumber        int    `json:"bin_number"`
	IncorrectCount   int    `json:"incorrect_count"`
	IsHardToRemember bool   `json:"is_hard_to_remember"`
}

// studyStatusResponse は学習状況のAPIレスポンス。
type studyStatusResponse struct {
	Message          string     `json:"message"`
	HasCards         bool       `json:"has_cards"`
	ReadyCardsCount  int        `json:"ready_cards_count"`
	NewCardsCount    int        `json:"new_cards_count"`
	TotalActiveCards int        `json:"total_active_cards"`
	CompletedCards   int        `json:"completed_cards"`
	HardCards        int        `json:"hard_cards"`
	NextReviewAt     *time.Time `json:"next_review_at,omitempty"`
}

// NextCard は次に出題すべきカードを返す。
// GET /api/v1/study/next?user_id=
func (h *StudyHandler) NextCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	c, err := h.service.PickNextCard(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toStudyCardResponse(c))
}

// RecordReview はレビュー結果を記録する。
// POST /api/v1/study/:id/review
func (h *StudyHandler) RecordReview(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "id")

	var req reviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	c, err := h.service.RecordReview(r.Context(), cardID, *req.Correct)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toStudyCardResponse(c))
}

// StudyStatus はユーザーの学習状況を返す。
// GET /api/v1/study/status?user_id=
func (h *StudyHandler) StudyStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	status, err := h.service.ComputeStatus(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, studyStatusResponse{
		Message:          status.Message,
		HasCards:         status.HasCards,
		ReadyCardsCount:  status.ReadyCardsCount,
		NewCardsCount:    status.NewCardsCount,
		TotalActiveCards: status.TotalActiveCards,
		CompletedCards:   status.CompletedCards,
		HardCards:        status.HardCards,
		NextReviewAt:     status.NextReviewAt,
	})
}

// toStudyCardResponse はmodel.Cardから学習用APIレスポンスに変換する。
func toStudyCardResponse(c *model.Card) studyCardResponse {
	return studyCardResponse{
		ID:               c.ID,
		Word:             c.Word,
		Definition:       c.Definition,
		BinNumber:        c.BinNumber,
		IncorrectCount:   c.IncorrectCount,
		IsHardToRemember: c.IsHardToRemember,
	}
}
