package service

import (
	"context"
	"fmt"

	"floify-api/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

// GigaChatClient adapts the gigago SDK to Completer. The system instruction is
// fixed when the client is built; system messages in a request are ignored.
// MaxTokens is not forwarded since the SDK model does not expose it.
type GigaChatClient struct {
	client *gigago.Client
	model  *gigago.GenerativeModel
	name   string
	logger *zap.Logger
}

func NewGigaChatClient(ctx context.Context, cfg *config.GigaChatConfig, systemInstruction string, logger *zap.Logger) (*GigaChatClient, error) {
	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}

	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SystemInstruction = systemInstruction
	model.Temperature = 0

	logger.Info("Using GigaChat model", zap.String("model", cfg.Model))

	return &GigaChatClient{
		client: client,
		model:  model,
		name:   cfg.Model,
		logger: logger,
	}, nil
}

func (c *GigaChatClient) Model() string {
	return c.name
}

func (c *GigaChatClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	var messages []gigago.Message
	for _, m := range req.Messages {
		if m.Role != RoleUser {
			continue
		}
		messages = append(messages, gigago.Message{Role: gigago.RoleUser, Content: m.Content})
	}

	resp, err := c.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoCompletion
	}

	return resp.Choices[0].Message.Content, nil
}

func (c *GigaChatClient) Close() error {
	if c.client != nil {
		c.client.Close()
	}
	return nil
}
