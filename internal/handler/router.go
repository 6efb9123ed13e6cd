package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/wordbin/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	RequestRecorder   middleware.RequestRecorder

	// サービス層
	UserService  UserServiceInterface
	CardService  CardServiceInterface
	StudyService StudyServiceInterface

	// /metrics エンドポイント（Prometheusスクレイプ用）。nilなら公開しない。
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → RateLimit(General)
//
// /health と /metrics はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.RequestRecorder))
	}

	userHandler := NewUserHandler(deps.UserService)
	cardHandler := NewCardHandler(deps.CardService)
	studyHandler := NewStudyHandler(deps.StudyService)

	// --- 監視用ルート（レート制限の外） ---

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- APIルート ---
	// ミドルウェアスタック: RateLimit(General)
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		// ユーザー管理
		r.Route("/api/v1/users", func(r chi.Router) {
			r.Post("/", userHandler.CreateUser)
			r.Get("/", userHandler.ListUsers)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", userHandler.GetUser)
				r.Put("/", userHandler.UpdateUser)
				r.Delete("/", userHandler.DeleteUser)
			})
		})

		// カード管理
		r.Route("/api/v1/flashcards", func(r chi.Router) {
			r.Post("/", cardHandler.CreateCard)
			r.Get("/", cardHandler.ListCards)
			r.Get("/stats", cardHandler.GetCardStats)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", cardHandler.GetCard)
				r.Put("/", cardHandler.UpdateCard)
				r.Delete("/", cardHandler.DeleteCard)
			})
		})

		// 学習セッション
		r.Route("/api/v1/study", func(r chi.Router) {
			r.Get("/next", studyHandler.NextCard)
			r.Get("/status", studyHandler.StudyStatus)

			// POST /api/v1/study/:id/review - レビュー記録（専用レート制限を追加）
			if deps.RateLimiter != nil {
				r.With(deps.RateLimiter.ReviewMiddleware()).Post("/{id}/review", studyHandler.RecordReview)
			} else {
				r.Post("/{id}/review", studyHandler.RecordReview)
			}
		})
	})

	return r
}
