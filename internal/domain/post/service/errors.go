package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyLiked  = errors.New("post already liked")
	ErrNotLiked      = errors.New("post not liked")
	ErrInvalidParent = errors.New("parent comment belongs to a different post")
	ErrEmptyContent  = errors.New("content must not be empty")

	ErrPostNotFound    = fmt.Errorf("post %w", ErrNotFound)
	ErrCommentNotFound = fmt.Errorf("parent comment %w", ErrNotFound)
)
