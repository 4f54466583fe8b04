package submission

import (
	"context"
	"fmt"

	"codeprep-cli/internal/api"
)

// Service reads submission history and manages the user-owned note field.
type Service interface {
	ForProblem(ctx context.Context, problemID string) ([]Submission, error)
	Get(ctx context.Context, id string) (*Submission, error)
	SaveNote(ctx context.Context, id string, note, timeTaken string) (*Submission, error)
}

type service struct {
	api *api.Client
}

func NewService(client *api.Client) Service {
	return &service{api: client}
}

func (s *service) ForProblem(ctx context.Context, problemID string) ([]Submission, error) {
	var out struct {
		Submissions []Submission `json:"submissions"`
	}
	if err := s.api.Get(ctx, "/api/problems/"+problemID+"/submissions", nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return out.Submissions, nil
}

func (s *service) Get(ctx context.Context, id string) (*Submission, error) {
	var out struct {
		Submission Submission `json:"submission"`
	}
	if err := s.api.Get(ctx, "/api/submissions/"+id, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return &out.Submission, nil
}

type noteRequest struct {
	Note      string `json:"note"`
	TimeTaken string `json:"timeTaken,omitempty"`
}

func (s *service) SaveNote(ctx context.Context, id string, note, timeTaken string) (*Submission, error) {
	var out struct {
		Submission Submission `json:"submission"`
	}
	req := noteRequest{Note: note, TimeTaken: timeTaken}
	if err := s.api.Post(ctx, "/api/submissions/"+id+"/notes", req, &out); err != nil {
		return nil, fmt.Errorf("failed to save note: %w", err)
	}
	return &out.Submission, nil
}
