package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

// PostgresCardRepoはCardRepositoryインターフェースを満たすことを検証
func TestPostgresCardRepo_ImplementsInterface(t *testing.T) {
	var _ CardRepository = (*PostgresCardRepo)(nil)
}

// NewPostgresCardRepoが正しく初期化されることを検証
func TestNewPostgresCardRepo_Initializes(t *testing.T) {
	repo := NewPostgresCardRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

func TestIsUniqueViolation_PqUniqueError(t *testing.T) {
	err := &pq.Error{Code: "23505"}
	if !IsUniqueViolation(err) {
		t.Error("expected unique violation to be detected")
	}
}

func TestIsUniqueViolation_WrappedError(t *testing.T) {
	err := fmt.Errorf("カードの作成に失敗しました: %w", &pq.Error{Code: "23505"})
	if !IsUniqueViolation(err) {
		t.Error("expected wrapped unique violation to be detected")
	}
}

func TestIsUniqueViolation_OtherErrors(t *testing.T) {
	if IsUniqueViolation(errors.New("connection refused")) {
		t.Error("plain error should not be a unique violation")
	}
	if IsUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Error("foreign key violation should not be a unique violation")
	}
	if IsUniqueViolation(nil) {
		t.Error("nil should not be a unique violation")
	}
}
