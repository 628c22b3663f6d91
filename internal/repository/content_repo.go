package repository

import (
	"context"
	"fmt"

	"mentormind/internal/database"
	"mentormind/internal/models"
)

// ContentRepository handles documents, summaries and conversation history
type ContentRepository struct {
	db database.DBTX
}

// NewContentRepository creates a new content repository
func NewContentRepository(db database.DBTX) *ContentRepository {
	return &ContentRepository{db: db}
}

// CreateDocument inserts a document and sets its ID
func (r *ContentRepository) CreateDocument(ctx context.Context, d *models.Document) error {
	d.UploadedAt = d.UploadedAt.UTC()
	query := `
		INSERT INTO documents (user_id, original_name, subject, content_text, page_count, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, d.UserID, d.OriginalName, d.Subject, d.ContentText, d.PageCount, d.UploadedAt)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	d.ID = id
	return nil
}

// GetDocument loads a document owned by userID
func (r *ContentRepository) GetDocument(ctx context.Context, id, userID int64) (*models.Document, error) {
	doc := &models.Document{}
	query := "SELECT id, user_id, original_name, subject, content_text, page_count, uploaded_at FROM documents WHERE id = ? AND user_id = ?"
	if err := r.db.GetContext(ctx, doc, query, id, userID); err != nil {
		return nil, wrapNotFound(err, "failed to get document %d", id)
	}
	return doc, nil
}

// CountDocuments returns the number of registered documents
func (r *ContentRepository) CountDocuments(ctx context.Context, userID int64) (int, error) {
	return r.count(ctx, "documents", userID)
}

// CreateSummary inserts a summary and sets its ID
func (r *ContentRepository) CreateSummary(ctx context.Context, s *models.Summary) error {
	s.CreatedAt = s.CreatedAt.UTC()
	if s.MindMap == "" {
		s.MindMap = "{}"
	}
	query := `
		INSERT INTO summaries (user_id, document_id, title, original_text, short_summary, full_summary, topics, mind_map, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, s.UserID, s.DocumentID, s.Title, s.OriginalText, s.ShortSummary,
		s.FullSummary, s.Topics, s.MindMap, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create summary: %w", err)
	}
	s.ID = id
	return nil
}

// CountSummaries returns the number of generated summaries
func (r *ContentRepository) CountSummaries(ctx context.Context, userID int64) (int, error) {
	return r.count(ctx, "summaries", userID)
}

// AddChatMessage appends a tutor conversation turn
func (r *ContentRepository) AddChatMessage(ctx context.Context, m *models.ChatMessage) error {
	m.CreatedAt = m.CreatedAt.UTC()
	query := "INSERT INTO chat_messages (user_id, role, content, created_at) VALUES (?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(ctx, query, m.UserID, m.Role, m.Content, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add chat message: %w", err)
	}
	m.ID = id
	return nil
}

// RecentChat returns the last limit turns in chronological order
func (r *ContentRepository) RecentChat(ctx context.Context, userID int64, limit int) ([]models.ChatMessage, error) {
	query := `
		SELECT id, user_id, role, content, created_at
		FROM chat_messages
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ?
	`
	var msgs []models.ChatMessage
	if err := r.db.SelectContext(ctx, &msgs, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// AddMentorMessage stores a mentor note
func (r *ContentRepository) AddMentorMessage(ctx context.Context, m *models.MentorMessage) error {
	m.CreatedAt = m.CreatedAt.UTC()
	if m.MessageType == "" {
		m.MessageType = "motivation"
	}
	query := "INSERT INTO mentor_messages (user_id, message, message_type, is_read, created_at) VALUES (?, ?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(ctx, query, m.UserID, m.Message, m.MessageType, m.IsRead, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add mentor message: %w", err)
	}
	m.ID = id
	return nil
}

// RecentMentorMessages returns the newest mentor notes first
func (r *ContentRepository) RecentMentorMessages(ctx context.Context, userID int64, limit int) ([]models.MentorMessage, error) {
	query := `
		SELECT id, user_id, message, message_type, is_read, created_at
		FROM mentor_messages
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ?
	`
	var msgs []models.MentorMessage
	if err := r.db.SelectContext(ctx, &msgs, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to load mentor messages: %w", err)
	}
	return msgs, nil
}

// count counts a user's rows in a table; table is always a constant
func (r *ContentRepository) count(ctx context.Context, table string, userID int64) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table+" WHERE user_id = ?", userID); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}
