package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/notegenius/internal/models"
)

// CreateNote сохраняет конспект и возвращает его с ID и временем создания.
func (s *Storage) CreateNote(ctx context.Context, userID, originalText, aiOutput string) (*models.Note, error) {
	const op = "storage.CreateNote"

	n := &models.Note{UserID: userID, OriginalText: originalText, AIOutput: aiOutput}
	query := `INSERT INTO notes (user_id, original_text, ai_output)
			  VALUES ($1, $2, $3)
			  RETURNING id, created_at;`
	if err := s.DB.QueryRowContext(ctx, query, userID, originalText, aiOutput).
		Scan(&n.ID, &n.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// ListNotes возвращает конспекты пользователя, новые первыми.
// Для пользователя без конспектов возвращается пустой (не nil) срез.
func (s *Storage) ListNotes(ctx context.Context, userID string) ([]models.Note, error) {
	const op = "storage.ListNotes"

	query := `SELECT id, user_id, original_text, ai_output, created_at
			  FROM notes
			  WHERE user_id = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Note, 0)
	for rows.Next() {
		var n models.Note
		if err = rows.Scan(&n.ID, &n.UserID, &n.OriginalText, &n.AIOutput, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
