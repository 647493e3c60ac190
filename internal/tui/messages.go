package tui

import (
	"time"

	"github.com/selfservice0/DynamicShop/internal/analytics"
	"github.com/selfservice0/DynamicShop/internal/model"
	"github.com/selfservice0/DynamicShop/internal/refresh"
)

// Refresh messages.
type refreshResultMsg struct {
	result *refresh.Result
	manual bool
}

type refreshThrottledMsg struct{}

type refreshTickMsg struct {
	at time.Time
}

// Leaderboard fetched after the user switched kinds.
type leaderboardLoadedMsg struct {
	err     error
	kind    analytics.LeaderboardKind
	entries []model.LeaderboardEntry
}

// searchDebounceMsg fires after the quiet period. Only the message whose
// generation matches the latest keystroke applies.
type searchDebounceMsg struct {
	gen int
}
