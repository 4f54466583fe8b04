// Package run submits code to the platform's execution backend and decodes
// the per-test results.
package run

import (
	"context"
	"fmt"

	"codeprep-cli/internal/api"
)

// TestResult is the judge's verdict for one test case.
type TestResult struct {
	Input     string `json:"input"`
	Expected  string `json:"expected"`
	Actual    string `json:"actual"`
	Passed    bool   `json:"passed"`
	RuntimeMS int    `json:"runtimeMs"`
}

// Summary aggregates a run's outcomes.
type Summary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// Result is the full response of a code run.
type Result struct {
	TestResults []TestResult `json:"testResults"`
	Summary     Summary      `json:"summary"`
}

type Service interface {
	Run(ctx context.Context, problemID, language, code string) (*Result, error)
}

type service struct {
	api *api.Client
}

func NewService(client *api.Client) Service {
	return &service{api: client}
}

type runRequest struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

func (s *service) Run(ctx context.Context, problemID, language, code string) (*Result, error) {
	var result Result
	req := runRequest{Language: language, Code: code}
	if err := s.api.Post(ctx, "/api/run/"+problemID, req, &result); err != nil {
		return nil, fmt.Errorf("failed to run code: %w", err)
	}
	return &result, nil
}
