package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/wordbin/internal/card"
	"github.com/hitoshi/wordbin/internal/model"
)

// CardServiceInterface はカードハンドラーが必要とするサービスインターフェース。
type CardServiceInterface interface {
	// Create は新しいカードを作成する。
	Create(ctx context.Context, userID, word, definition string) (*model.Card, error)
	// Get は指定IDのカードを取得する。
	Get(ctx context.Context, cardID string) (*model.Card, error)
	// List はユーザーのカードをページ単位で返す。
	List(ctx context.Context, userID string, page, perPage int, includeHard bool) ([]*model.Card, int, error)
	// Update はカードの単語・定義・学習進捗を更新する。
	Update(ctx context.Context, cardID string, params card.UpdateParams) (*model.Card, error)
	// Delete はカードを削除する。
	Delete(ctx context.Context, cardID string) error
	// GetStats はユーザーのカード枚数と上限の統計を返す。
	GetStats(ctx context.Context, userID string) (*card.Stats, error)
}

// CardHandler はカード管理のHTTPハンドラー。
type CardHandler struct {
	service CardServiceInterface
}

// NewCardHandler はCardHandlerを生成する。
func NewCardHandler(service CardServiceInterface) *CardHandler {
	return &CardHandler{service: service}
}

// createCardRequest はカード作成リクエストのボディ。
type createCardRequest struct {
	UserID     string `json:"user_id" validate:"required"`
	Word       string `json:"word" validate:"required,min=1,max=200"`
	Definition string `json:"definition" validate:"required,min=1,max=2000"`
}

// updateCardRequest はカード更新リクエストのボディ。
// WordとDefinitionは指定されたフィールドのみ更新する。
type updateCardRequest struct {
	Word          *string `json:"word" validate:"omitempty,min=1,max=200"`
	Definition    *string `json:"definition" validate:"omitempty,min=1,max=2000"`
	ResetProgress bool    `json:"reset_progress"`
}

// cardResponse はカード情報のAPIレスポンス。
type cardResponse struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Word             string    `json:"word"`
	Definition       string    `json:"definition"`
	BinNumber        int       `json:"bin_number"`
	IncorrectCount   int       `json:"incorrect_count"`
	NextReview       time.Time `json:"next_review"`
	IsHardToRemember bool      `json:"is_hard_to_remember"`
	CreatedAt        time.Time `json:"created_at"`
}

// cardListResponse はカード一覧のAPIレスポンス。
type cardListResponse struct {
	Cards   []cardResponse `json:"cards"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

// cardStatsResponse はカード枚数統計のAPIレスポンス。
type cardStatsResponse struct {
	CurrentCount int  `json:"current_count"`
	Limit        int  `json:"limit"`
	Remaining    int  `json:"remaining"`
	AtLimit      bool `json:"at_limit"`
}

// CreateCard はカード作成を処理する。
// POST /api/v1/flashcards
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req createCardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	c, err := h.service.Create(r.Context(), req.UserID, req.Word, req.Definition)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, toCardResponse(c))
}

// ListCards はユーザーのカード一覧をページ単位で返す。
// GET /api/v1/flashcards?user_id=&page=&per_page=&include_hard=
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 50)
	includeHard := r.URL.Query().Get("include_hard") != "false"

	cards, total, err := h.service.List(r.Context(), userID, page, perPage, includeHard)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := cardListResponse{
		Cards:   make([]cardResponse, 0, len(cards)),
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}
	for _, c := range cards {
		resp.Cards = append(resp.Cards, toCardResponse(c))
	}

	writeJSONResponse(w, http.StatusOK, resp)
}

// GetCardStats はユーザーのカード枚数統計を返す。
// GET /api/v1/flashcards/stats?user_id=
func (h *CardHandler) GetCardStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	stats, err := h.service.GetStats(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, cardStatsResponse{
		CurrentCount: stats.CurrentCount,
		Limit:        stats.Limit,
		Remaining:    stats.Remaining,
		AtLimit:      stats.AtLimit,
	})
}

// GetCard はカード詳細を取得する。
// GET /api/v1/flashcards/:id
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "id")

	c, err := h.service.Get(r.Context(), cardID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toCardResponse(c))
}

// UpdateCard はカードの単語・定義・学習進捗を更新する。
// PUT /api/v1/flashcards/:id
func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "id")

	var req updateCardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	c, err := h.service.Update(r.Context(), cardID, card.UpdateParams{
		Word:          req.Word,
		Definition:    req.Definition,
		ResetProgress: req.ResetProgress,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toCardResponse(c))
}

// DeleteCard はカードを削除する。
// DELETE /api/v1/flashcards/:id
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), cardID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toCardResponse はmodel.CardからAPIレスポンスに変換する。
func toCardResponse(c *model.Card) cardResponse {
	return cardResponse{
		ID:               c.ID,
		UserID:           c.UserID,
		Word:             c.Word,
		Definition:       c.Definition,
		BinNumber:        c.BinNumber,
		IncorrectCount:   c.IncorrectCount,
		NextReview:       c.NextReview,
		IsHardToRemember: c.IsHardToRemember,
		CreatedAt:        c.CreatedAt,
	}
}

// queryInt はクエリパラメータを整数として読み取る。不正な値はデフォルトを返す。
func queryInt(r *http.Request, key string, defaultValue int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return defaultValue
	}
	return v
}
