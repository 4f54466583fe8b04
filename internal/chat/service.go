package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"codeprep-cli/internal/api"
)

// Reply is the assistant's answer to one chat turn.
type Reply struct {
	Response   string `json:"response"`
	IsOffTopic bool   `json:"isOffTopic"`
	TokensUsed int    `json:"tokensUsed"`
}

// Service sends chat turns and hydrates history, recording both sides of
// the conversation in the shared transcript.
type Service interface {
	Send(ctx context.Context, problemID, content string) (*Reply, error)
	History(ctx context.Context, problemID string) ([]Message, error)
}

type service struct {
	api        *api.Client
	transcript *Transcript
}

func NewService(client *api.Client, transcript *Transcript) Service {
	return &service{api: client, transcript: transcript}
}

type sendRequest struct {
	Message string `json:"message"`
}

func (s *service) Send(ctx context.Context, problemID, content string) (*Reply, error) {
	s.transcript.Append(problemID, Message{
		ID:        uuid.New().String(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	})

	var reply Reply
	if err := s.api.Post(ctx, "/api/chat/problem/"+problemID, sendRequest{Message: content}, &reply); err != nil {
		return nil, chatError(err)
	}

	s.transcript.Append(problemID, Message{
		ID:        uuid.New().String(),
		Role:      RoleAssistant,
		Content:   reply.Response,
		Timestamp: time.Now(),
	})
	return &reply, nil
}

func (s *service) History(ctx context.Context, problemID string) ([]Message, error) {
	var out struct {
		Messages []Message `json:"messages"`
	}
	if err := s.api.Get(ctx, "/api/chat/problem/"+problemID+"/history", nil, &out); err != nil {
		return nil, chatError(err)
	}
	s.transcript.SetMessages(problemID, out.Messages)
	return out.Messages, nil
}

// chatError upgrades generic fallbacks to status-specific messages. Only
// the chat endpoints do this; everywhere else the body's message or the
// generic fallback stands.
func chatError(err error) error {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || !apiErr.Fallback {
		return err
	}
	switch apiErr.Status {
	case 429:
		return &api.Error{Status: apiErr.Status, Message: "You're sending messages too quickly. Please wait a moment."}
	case 404:
		return &api.Error{Status: apiErr.Status, Message: "Problem not found."}
	default:
		return err
	}
}
