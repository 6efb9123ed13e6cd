package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/hitoshi/wordbin/internal/model"
)

// uniqueViolation はPostgreSQLの一意制約違反のSQLSTATEコード。
const uniqueViolation = "23505"

// IsUniqueViolation はエラーが一意制約違反かどうかを判定する。
// (user_id, word)やユーザー名の重複をDB制約のバックストップとして検出するために使う。
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}

// PostgresCardRepo はPostgreSQLを使用したフラッシュカードリポジトリ。
type PostgresCardRepo struct {
	db *sql.DB
}

// NewPostgresCardRepo はPostgresCardRepoを生成する。
func NewPostgresCardRepo(db *sql.DB) *PostgresCardRepo {
	return &PostgresCardRepo{db: db}
}

const cardColumns = `id, user_id, word, definition, bin_number, incorrect_count,
	        next_review, is_hard_to_remember, version, created_at, updated_at`

// scanCard は1行分のカードを読み取る。
func scanCard(row interface{ Scan(...any) error }) (*model.Card, error) {
	card := &model.Card{}
	err := row.Scan(
		&card.ID, &card.UserID, &card.Word, &card.Definition,
		&card.BinNumber, &card.IncorrectCount,
		&card.NextReview, &card.IsHardToRemember, &card.Version,
		&card.CreatedAt, &card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return card, nil
}

// FindByID は指定IDのカードを取得する。見つからない場合はnilを返す。
func (r *PostgresCardRepo) FindByID(ctx context.Context, id string) (*model.Card, error) {
	card, err := scanCard(r.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM flashcards WHERE id = $1`,
		id,
	))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("カードの取得に失敗しました: %w", err)
	}

	return card, nil
}

// FindByUserAndWord はユーザーIDと単語でカードを検索する。見つからない場合はnilを返す。
func (r *PostgresCardRepo) FindByUserAndWord(ctx context.Context, userID, word string) (*model.Card, error) {
	card, err := scanCard(r.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM flashcards WHERE user_id = $1 AND word = $2`,
		userID, word,
	))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("単語によるカードの検索に失敗しました: %w", err)
	}

	return card, nil
}

// Create はカードを作成する。versionは1で初期化される。
func (r *PostgresCardRepo) Create(ctx context.Context, card *model.Card) error {
	now := time.Now()
	if card.CreatedAt.IsZero() {
		card.CreatedAt = now
	}
	card.UpdatedAt = now
	card.Version = 1

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO flashcards (id, user_id, word, definition, bin_number, incorrect_count,
		                         next_review, is_hard_to_remember, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		card.ID, card.UserID, card.Word, card.Definition,
		card.BinNumber, card.IncorrectCount,
		card.NextReview, card.IsHardToRemember, card.Version,
		card.CreatedAt, card.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("カードの作成に失敗しました: %w", err)
	}

	return nil
}

// Update はカードを楽観的排他制御付きで更新する。
// WHERE句にversionを含めることで、同一カードへの並行レビューの二重適用を防ぐ。
// バージョン不一致の場合はmodel.ErrVersionConflictを返す。
func (r *PostgresCardRepo) Update(ctx context.Context, card *model.Card) error {
	card.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx,
		`UPDATE flashcards
		 SET word = $1, definition = $2, bin_number = $3, incorrect_count = $4,
		     next_review = $5, is_hard_to_remember = $6, version = version + 1, updated_at = $7
		 WHERE id = $8 AND version = $9`,
		card.Word, card.Definition, card.BinNumber, card.IncorrectCount,
		card.NextReview, card.IsHardToRemember, card.UpdatedAt,
		card.ID, card.Version,
	)
	if err != nil {
		return fmt.Errorf("カードの更新に失敗しました: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	if affected == 0 {
		// 行が存在しないか、別のセッションが先に更新したかのいずれか。
		// どちらもこのレビュー適用は破棄すべきなので競合として扱う。
		return model.ErrVersionConflict
	}

	card.Version++
	return nil
}

// DeleteByID は指定IDのカードを削除する。
func (r *PostgresCardRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM flashcards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("カードの削除に失敗しました: %w", err)
	}

	return nil
}

// ListByUser はユーザーのカード一覧を作成日時の昇順で返す。
func (r *PostgresCardRepo) ListByUser(ctx context.Context, userID string, includeHard bool, offset, limit int) ([]*model.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM flashcards WHERE user_id = $1`
	if !includeHard {
		query += ` AND is_hard_to_remember = FALSE`
	}
	query += ` ORDER BY created_at ASC OFFSET $2 LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("カード一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var cards []*model.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("カード行の読み取りに失敗しました: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("カード一覧の走査に失敗しました: %w", err)
	}

	return cards, nil
}

// CountByUser はユーザーのカード数を返す。
func (r *PostgresCardRepo) CountByUser(ctx context.Context, userID string, includeHard bool) (int, error) {
	query := `SELECT COUNT(*) FROM flashcards WHERE user_id = $1`
	if !includeHard {
		query += ` AND is_hard_to_remember = FALSE`
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("カード数の取得に失敗しました: %w", err)
	}

	return count, nil
}

// FindDueByUser はビン1〜10で復習期限が到来しているカードを1枚返す。
// ビン番号の降順（マスターに近いカード優先）、同ビン内ではnext_reviewの昇順。
func (r *PostgresCardRepo) FindDueByUser(ctx context.Context, userID string, now time.Time) (*model.Card, error) {
	card, err := scanCard(r.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+`
		 FROM flashcards
		 WHERE user_id = $1
		   AND bin_number BETWEEN $2 AND $3
		   AND next_review <= $4
		   AND is_hard_to_remember = FALSE
		 ORDER BY bin_number DESC, next_review ASC
		 LIMIT 1`,
		userID, model.BinMin, model.BinMax, now,
	))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("復習対象カードの取得に失敗しました: %w", err)
	}

	return card, nil
}

// FindNewByUser はビン0（未学習）のカードを作成日時の昇順で1枚返す。
func (r *PostgresCardRepo) FindNewByUser(ctx context.Context, userID string) (*model.Card, error) {
	card, err := scanCard(r.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+`
		 FROM flashcards
		 WHERE user_id = $1
		   AND bin_number = $2
		   AND is_hard_to_remember = FALSE
		 ORDER BY created_at ASC
		 LIMIT 1`,
		userID, model.BinNew,
	))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("未学習カードの取得に失敗しました: %w", err)
	}

	return card, nil
}

// StudyCounts は学習状況の集計を1回のクエリで返す。
func (r *PostgresCardRepo) StudyCounts(ctx context.Context, userID string, now time.Time) (*StudyCounts, error) {
	counts := &StudyCounts{}
	var nextReviewAt sql.NullTime

	err := r.db.QueryRowContext(ctx,
		`SELECT
		    COUNT(*) FILTER (WHERE bin_number BETWEEN $2 AND $3 AND next_review <= $4
		                       AND is_hard_to_remember = FALSE),
		    COUNT(*) FILTER (WHERE bin_number = $5 AND is_hard_to_remember = FALSE),
		    COUNT(*) FILTER (WHERE bin_number < $6 AND is_hard_to_remember = FALSE),
		    COUNT(*) FILTER (WHERE bin_number = $6 AND is_hard_to_remember = FALSE),
		    COUNT(*) FILTER (WHERE is_hard_to_remember = TRUE),
		    MIN(next_review) FILTER (WHERE bin_number BETWEEN $2 AND $3 AND next_review > $4
		                               AND is_hard_to_remember = FALSE)
		 FROM flashcards WHERE user_id = $1`,
		userID, model.BinMin, model.BinMax, now, model.BinNew, model.BinCompleted,
	).Scan(
		&counts.ReadyCards, &counts.NewCards, &counts.ActiveCards,
		&counts.CompletedCards, &counts.HardCards, &nextReviewAt,
	)
	if err != nil {
		return nil, fmt.Errorf("学習状況の集計に失敗しました: %w", err)
	}

	if nextReviewAt.Valid {
		counts.NextReviewAt = &nextReviewAt.Time
	}

	return counts, nil
}
