package profile

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"

	"codeprep-cli/internal/api"
	"codeprep-cli/internal/submission"
)

// Service covers everything the profile page needs: the header, the stats
// card, the heatmap card, the recent-submissions card, the edit form and
// the social actions.
type Service interface {
	Profile(ctx context.Context, username string) (*Profile, error)
	UpdateProfile(ctx context.Context, input EditProfileInput) (*Profile, error)
	CheckUsername(ctx context.Context, username string) (bool, error)
	ProblemStats(ctx context.Context, username string) (*ProblemStats, error)
	Heatmap(ctx context.Context, username string, year int) ([]HeatmapEntry, error)
	RecentSubmissions(ctx context.Context, username string) ([]submission.Submission, error)
	FollowStatus(ctx context.Context, username string) (bool, error)
	Follow(ctx context.Context, username string) error
	Unfollow(ctx context.Context, username string) error
}

type service struct {
	api      *api.Client
	validate *validator.Validate
}

func NewService(client *api.Client) Service {
	return &service{
		api:      client,
		validate: validator.New(),
	}
}

func (s *service) Profile(ctx context.Context, username string) (*Profile, error) {
	var p Profile
	if err := s.api.Get(ctx, "/api/"+url.PathEscape(username)+"/profile", nil, &p); err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return &p, nil
}

// EditProfileInput is the self-only profile edit form. Validation runs
// client-side before any request is issued.
type EditProfileInput struct {
	Name     string `json:"name,omitempty" validate:"omitempty,max=50"`
	Username string `json:"username,omitempty"`
	Bio      string `json:"bio,omitempty" validate:"omitempty,max=500"`
	Location string `json:"location,omitempty" validate:"omitempty,max=100"`
	Gender   string `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	Age      int    `json:"age,omitempty" validate:"omitempty,gte=13,lte=120"`
}

// ValidationError carries the display string for a client-side rejection.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (s *service) UpdateProfile(ctx context.Context, input EditProfileInput) (*Profile, error) {
	if input.Username != "" && !ValidUsernameFormat(input.Username) {
		return nil, &ValidationError{Message: "Username must be 3-20 characters, letters, digits and underscores only"}
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, &ValidationError{Message: editValidationMessage(err)}
	}

	var p Profile
	if err := s.api.Patch(ctx, "/api/profile", input, &p); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &p, nil
}

func editValidationMessage(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return "Invalid profile input"
	}
	switch errs[0].Field() {
	case "Name":
		return "Name must be 50 characters or fewer"
	case "Bio":
		return "Bio must be 500 characters or fewer"
	case "Location":
		return "Location must be 100 characters or fewer"
	case "Gender":
		return "Gender must be one of: male, female, other"
	case "Age":
		return "Age must be between 13 and 120"
	default:
		return "Invalid profile input"
	}
}

func (s *service) CheckUsername(ctx context.Context, username string) (bool, error) {
	var out struct {
		Available bool `json:"available"`
	}
	query := url.Values{"username": {username}}
	if err := s.api.Get(ctx, "/api/profile/username-check", query, &out); err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return out.Available, nil
}

func (s *service) ProblemStats(ctx context.Context, username string) (*ProblemStats, error) {
	var stats ProblemStats
	if err := s.api.Get(ctx, "/api/"+url.PathEscape(username)+"/problems-stats", nil, &stats); err != nil {
		return nil, fmt.Errorf("failed to fetch problem stats: %w", err)
	}
	return &stats, nil
}

func (s *service) Heatmap(ctx context.Context, username string, year int) ([]HeatmapEntry, error) {
	var query url.Values
	if year > 0 {
		query = url.Values{"year": {strconv.Itoa(year)}}
	}
	var entries []HeatmapEntry
	if err := s.api.Get(ctx, "/api/"+url.PathEscape(username)+"/heatmap", query, &entries); err != nil {
		return nil, fmt.Errorf("failed to fetch heatmap: %w", err)
	}
	return entries, nil
}

func (s *service) RecentSubmissions(ctx context.Context, username string) ([]submission.Submission, error) {
	var subs []submission.Submission
	if err := s.api.Get(ctx, "/api/"+url.PathEscape(username)+"/recent-submissions", nil, &subs); err != nil {
		return nil, fmt.Errorf("failed to fetch recent submissions: %w", err)
	}
	return subs, nil
}

func (s *service) FollowStatus(ctx context.Context, username string) (bool, error) {
	var status FollowStatus
	if err := s.api.Get(ctx, "/api/"+url.PathEscape(username)+"/follow-status", nil, &status); err != nil {
		return false, fmt.Errorf("failed to fetch follow status: %w", err)
	}
	return status.IsFollowing, nil
}

func (s *service) Follow(ctx context.Context, username string) error {
	if err := s.api.Post(ctx, "/api/"+url.PathEscape(username)+"/follow", nil, nil); err != nil {
		return fmt.Errorf("failed to follow: %w", err)
	}
	return nil
}

func (s *service) Unfollow(ctx context.Context, username string) error {
	if err := s.api.Delete(ctx, "/api/"+url.PathEscape(username)+"/unfollow", nil); err != nil {
		return fmt.Errorf("failed to unfollow: %w", err)
	}
	return nil
}
