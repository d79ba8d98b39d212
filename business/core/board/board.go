// Package board provides the community message board.
package board

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrEmptyMessage is returned when a post carries no content.
var ErrEmptyMessage = errors.New("message content is required")

// maxContentLen bounds a single post.
const maxContentLen = 500

// Message represents a single board entry.
type Message struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Wallet    string `gorm:"not null;index" json:"wallet"`
	Content   string `gorm:"not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides the gorm naming convention.
func (Message) TableName() string {
	return "messages"
}

// Core manages the set of APIs for board access.
type Core struct {
	log *zap.SugaredLogger
	db  *gorm.DB
}

// NewCore constructs a core for board api access.
func NewCore(log *zap.SugaredLogger, db *gorm.DB) Core {
	return Core{
		log: log,
		db:  db,
	}
}

// Migrate creates or updates the board table.
func (c Core) Migrate() error {
	return c.db.AutoMigrate(&Message{})
}

// Post stores a new message on the board.
func (c Core) Post(ctx context.Context, wallet string, content string) (Message, error) {
	if content == "" {
		return Message{}, ErrEmptyMessage
	}
	if len(content) > maxContentLen {
		// Walk back to a rune boundary so the cut never stores an
		// invalid partial character.
		cut := maxContentLen
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = content[:cut]
	}

	msg := Message{
		Wallet:  wallet,
		Content: content,
	}

	if err := c.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return Message{}, fmt.Errorf("posting message: %w", err)
	}

	return msg, nil
}

// Latest returns the most recent messages, newest first.
func (c Core) Latest(ctx context.Context, limit int) ([]Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	var msgs []Message
	if err := c.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}

	return msgs, nil
}
