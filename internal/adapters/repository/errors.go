package repository

import (
	"errors"

	"github.com/okian/ecopoints/internal/domain/types"
)

// Sentinel kinds for repository errors.
var (
	ErrNotFound     = types.ErrNotFound
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
	ErrInvalidUser  = errors.New("user id must not be empty")
)
