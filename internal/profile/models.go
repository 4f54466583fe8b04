package profile

import "time"

// Badge is earned server-side and immutable from the client's perspective.
type Badge struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	EarnedAt    time.Time `json:"earnedAt"`
}

// Profile is the viewed user's public profile. The client only ever holds
// a transient cached copy; it is mutated through the edit form (self) or
// follow/unfollow side effects (viewers).
type Profile struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Bio      string `json:"bio"`
	Location string `json:"location"`
	Gender   string `json:"gender"`
	Age      int    `json:"age"`

	CurrentStreak int `json:"currentStreak"`
	LongestStreak int `json:"longestStreak"`

	FollowingCount int `json:"followingCount"`
	FollowersCount int `json:"followersCount"`

	Badges []Badge `json:"badges"`
}

// DifficultyProgress is a solved/total pair for one difficulty bucket.
// Invariant: Solved <= Total.
type DifficultyProgress struct {
	Solved int `json:"solved"`
	Total  int `json:"total"`
}

// ProblemStats carries per-difficulty progress plus overall submission
// aggregates. The overall counts are independent aggregates and need not
// equal the sum of the per-difficulty solved counts.
type ProblemStats struct {
	Easy   DifficultyProgress `json:"easy"`
	Medium DifficultyProgress `json:"medium"`
	Hard   DifficultyProgress `json:"hard"`

	TotalSubmissions    int     `json:"totalSubmissions"`
	AcceptedSubmissions int     `json:"acceptedSubmissions"`
	AcceptanceRate      float64 `json:"acceptanceRate"`
}

// HeatmapEntry is one active day; absent dates imply a count of zero.
// Date uses the "2006-01-02" form.
type HeatmapEntry struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// FollowStatus is the viewer's relationship to the profile owner.
type FollowStatus struct {
	IsFollowing bool `json:"isFollowing"`
}
