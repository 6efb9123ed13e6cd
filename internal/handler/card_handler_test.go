package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/wordbin/internal/card"
	"github.com/hitoshi/wordbin/internal/model"
)

// mockCardService はCardServiceInterfaceの関数フィールド型モック。
type mockCardService struct {
	createFn   func(ctx context.Context, userID, word, definition string) (*model.Card, error)
	getFn      func(ctx context.Context, cardID string) (*model.Card, error)
	listFn     func(ctx context.Context, userID string, page, perPage int, includeHard bool) ([]*model.Card, int, error)
	updateFn   func(ctx context.Context, cardID string, params card.UpdateParams) (*model.Card, error)
	deleteFn   func(ctx context.Context, cardID string) error
	getStatsFn func(ctx context.Context, userID string) (*card.Stats, error)
}

func (m *mockCardService) Create(ctx context.Context, userID, word, definition string) (*model.Card, error) {
	return m.createFn(ctx, userID, word, definition)
}

func (m *mockCardService) Get(ctx context.Context, cardID string) (*model.Card, error) {
	return m.getFn(ctx, cardID)
}

func (m *mockCardService) List(ctx context.Context, userID string, page, perPage int, includeHard bool) ([]*model.Card, int, error) {
	return m.listFn(ctx, userID, page, perPage, includeHard)
}

func (m *mockCardService) Update(ctx context.Context, cardID string, params card.UpdateParams) (*model.Card, error) {
	return m.updateFn(ctx, cardID, params)
}

func (m *mockCardService) Delete(ctx context.Context, cardID string) error {
	return m.deleteFn(ctx, cardID)
}

func (m *mockCardService) GetStats(ctx context.Context, userID string) (*card.Stats, error) {
	return m.getStatsFn(ctx, userID)
}

func newCardRouter(svc CardServiceInterface) http.Handler {
	return NewRouter(&RouterDeps{
		CORSAllowedOrigin: "http://localhost:3000",
		CardService:       svc,
	})
}

// TestCreateCard_Returns201 はカード作成が201とカード内容を返すことを検証する。
func TestCreateCard_Returns201(t *testing.T) {
	svc := &mockCardService{
		createFn: func(ctx context.Context, userID, word, definition string) (*model.Card, error) {
			return &model.Card{
				ID:         "card-1",
				UserID:     userID,
				Word:       word,
				Definition: definition,
				BinNumber:  model.BinNew,
			}, nil
		},
	}

	router := newCardRouter(svc)

	body := `{"user_id":"user-1","word":"ephemeral","definition":"lasting a very short time"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/flashcards", strings.NewReader(body))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	var resp cardResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Word != "ephemeral" {
		t.Errorf("word = %q, want ephemeral", resp.Word)
	}
	if resp.BinNumber != 0 {
		t.Errorf("bin_number = %d, want 0", resp.BinNumber)
	}
}

// TestCreateCard_MissingFields_Returns400 は必須フィールド欠落が400になることを検証する。
func TestCreateCard_MissingFields_Returns400(t *testing.T) {
	svc := &mockCardService{
		createFn: func(ctx context.Context, userID, word, definition string) (*model.Card, error) {
			t.Fatal("Create should not be called")
			return nil, nil
		},
	}

	router := newCardRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/flashcards", strings.NewReader(`{"word":"x"}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// TestCreateCard_DuplicateWord_Returns409 は重複単語が409になることを検証する。
func TestCreateCard_DuplicateWord_Returns409(t *testing.T) {
	svc := &mockCardService{
		createFn: func(ctx context.Context, userID, word, definition string) (*model.Card, error) {
			return nil, model.NewDuplicateWordError(word)
		},
	}

	router := newCardRouter(svc)

	body := `{"user_id":"user-1","word":"ephemeral","definition":"def"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/flashcards", strings.NewReader(body))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusConflict)
	}

	var errResp apiErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errResp.Code != model.ErrCodeDuplicateWord {
		t.Errorf("code = %q, want %q", errResp.Code, model.ErrCodeDuplicateWord)
	}
}

// TestListCards_RequiresUserID はuser_id未指定が400になることを検証する。
func TestListCards_RequiresUserID(t *testing.T) {
	svc := &mockCardService{
		listFn: func(ctx context.Context, userID string, page, perPage int, includeHard bool) ([]*model.Card, int, error) {
			t.Fatal("List should not be called")
			return nil, 0, nil
		},
	}

	router := newCardRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/flashcards", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// TestListCards_PassesPagination はページングパラメータがサービスに渡ることを検証する。
func TestListCards_PassesPagination(t *testing.T) {
	var gotPage, gotPerPage int
	svc := &mockCardService{
		listFn: func(ctx context.Context, userID string, page, perPage int, includeHard bool) ([]*model.Card, int, error) {
			gotPage, gotPerPage = page, perPage
			return []*model.Card{{ID: "card-1", Word: "w"}}, 1, nil
		},
	}

	router := newCardRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/flashcards?user_id=user-1&page=2&per_page=10", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotPage != 2 {
		t.Errorf("page = %d, want 2", gotPage)
	}
	if gotPerPage != 10 {
		t.Errorf("per_page = %d, want 10", gotPerPage)
	}

	var resp cardListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("total = %d, want 1", resp.Total)
	}
}

// TestGetCardStats_ReturnsCounts はカード枚数統計が返ることを検証する。
func TestGetCardStats_ReturnsCounts(t *testing.T) {
	svc := &mockCardService{
		getStatsFn: func(ctx context.Context, userID string) (*card.Stats, error) {
			return &card.Stats{CurrentCount: 990, Limit: 1000, Remaining: 10}, nil
		},
	}

	router := newCardRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/flashcards/stats?user_id=user-1", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp cardStatsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.CurrentCount != 990 {
		t.Errorf("current_count = %d, want 990", resp.CurrentCount)
	}
	if resp.Remaining != 10 {
		t.Errorf("remaining = %d, want 10", resp.Remaining)
	}
}

// TestUpdateCard_ResetProgress はreset_progressがサービスに伝播することを検証する。
func TestUpdateCard_ResetProgress(t *testing.T) {
	var gotParams card.UpdateParams
	svc := &mockCardService{
		updateFn: func(ctx context.Context, cardID string, params card.UpdateParams) (*model.Card, error) {
			gotParams = params
			return &model.Card{ID: cardID, Word: "w"}, nil
		},
	}

	router := newCardRouter(svc)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/flashcards/card-1", strings.NewReader(`{"reset_progress":true}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !gotParams.ResetProgress {
		t.Error("expected ResetProgress to be true")
	}
	if gotParams.Word != nil {
		t.Error("expected Word to be nil when not provided")
	}
}

// TestDeleteCard_NotFound_Returns404 は存在しないカードの削除が404になることを検証する。
func TestDeleteCard_NotFound_Returns404(t *testing.T) {
	svc := &mockCardService{
		deleteFn: func(ctx context.Context, cardID string) error {
			return model.NewCardNotFoundError(cardID)
		},
	}

	router := newCardRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/flashcards/missing", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
