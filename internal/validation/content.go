// Package validation centralizes input rules for user-supplied content so
// every entry point rejects the same things the same way.
package validation

import (
	"fmt"
	"strings"
)

const (
	// MaxPostLen caps post text. Matches the column capacity the stores
	// are provisioned for.
	MaxPostLen = 50000
	// MaxCommentLen caps comment text.
	MaxCommentLen = 10000
	// MinPasswordLen is the minimum accepted password length.
	MinPasswordLen = 6
	// MaxNameLen caps display names.
	MaxNameLen = 100
)

// PostText validates the body of a post.
func PostText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text is required")
	}
	if len(text) > MaxPostLen {
		return fmt.Errorf("text too long (max %d characters)", MaxPostLen)
	}
	return nil
}

// CommentText validates the body of a comment.
func CommentText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text is required")
	}
	if len(text) > MaxCommentLen {
		return fmt.Errorf("text too long (max %d characters)", MaxCommentLen)
	}
	return nil
}

// Email performs a shallow shape check. Deliverability is the mail
// server's problem, not ours.
func Email(email string) error {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return fmt.Errorf("invalid email address")
	}
	if strings.ContainsAny(email, " \t\n") {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

// Password enforces the minimum credential policy.
func Password(password string) error {
	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLen)
	}
	return nil
}

// Name validates a display name.
func Name(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > MaxNameLen {
		return fmt.Errorf("name too long (max %d characters)", MaxNameLen)
	}
	return nil
}
