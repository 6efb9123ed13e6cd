// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/hitoshi/wordbin/internal/model"
	"github.com/hitoshi/wordbin/internal/repository"
)

// Service はユーザー管理のサービス層。
// ユーザー数の上限と名前の一意性を保証する。
type Service struct {
	users    repository.UserRepository
	maxUsers int
}

// NewService はServiceの新しいインスタンスを生成する。
// maxUsersは登録可能なユーザー数の上限。
func NewService(users repository.UserRepository, maxUsers int) *Service {
	return &Service{
		users:    users,
		maxUsers: maxUsers,
	}
}

// Create は新しいユーザーを登録する。
// ユーザー数が上限に達している場合、または名前が重複する場合はエラーを返す。
func (s *Service) Create(ctx context.Context, name string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.NewInvalidRequestError("ユーザー名を入力してください")
	}

	count, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー数の取得に失敗しました: %w", err)
	}
	if count >= s.maxUsers {
		return nil, model.NewUserLimitError(s.maxUsers)
	}

	existing, err := s.users.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateUserNameError(name)
	}

	user := &model.User{
		ID:   uuid.NewString(),
		Name: name,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// 同時登録との競合はUNIQUE制約で検出する
		if repository.IsUniqueViolation(err) {
			return nil, model.NewDuplicateUserNameError(name)
		}
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	slog.Info("ユーザーを作成しました",
		slog.String("user_id", user.ID),
		slog.String("name", user.Name),
	)

	return user, nil
}

// Get は指定IDのユーザーを取得する。
func (s *Service) Get(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(userID)
	}
	return user, nil
}

// List は登録済みの全ユーザーを作成日時順で返す。
func (s *Service) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	return users, nil
}

// Rename はユーザー名を変更する。変更後の名前も一意でなければならない。
func (s *Service) Rename(ctx context.Context, userID, name string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.NewInvalidRequestError("ユーザー名を入力してください")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(userID)
	}

	if name != user.Name {
		existing, err := s.users.FindByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
		}
		if existing != nil && existing.ID != userID {
			return nil, model.NewDuplicateUserNameError(name)
		}
	}

	user.Name = name
	if err := s.users.Update(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, model.NewDuplicateUserNameError(name)
		}
		return nil, fmt.Errorf("ユーザーの更新に失敗しました: %w", err)
	}

	return user, nil
}

// Delete はユーザーを削除する。
// カードは外部キーのCASCADEで一括削除される。
func (s *Service) Delete(ctx context.Context, userID string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError(userID)
	}

	if err := s.users.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("ユーザーを削除しました",
		slog.String("user_id", userID),
		slog.String("name", user.Name),
	)

	return nil
}
