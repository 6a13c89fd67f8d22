package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildFloifyPrompt(t *testing.T) {
	prompt := BuildFloifyPrompt("John Doe\nSalary 100%")

	assert.Contains(t, prompt, "```\nJohn Doe\nSalary 100%\n```")
	assert.Contains(t, prompt, "Return ONLY the JSON object")
}

func TestTransformToFloify(t *testing.T) {
	completer := &fakeCompleter{reply: "```json\n{\"borrower\":{\"name\":\"John\"}}\n```"}
	svc := NewLLMService(completer, 4000, zap.NewNop())

	result, err := svc.TransformToFloify(context.Background(), "John")
	require.NoError(t, err)

	assert.JSONEq(t, `{"borrower":{"name":"John"}}`, string(result.Document))
	assert.Equal(t, completer.reply, result.RawReply)
	assert.NoError(t, result.ParseErr)

	require.Len(t, completer.requests, 1)
	req := completer.requests[0]
	assert.Zero(t, req.Temperature)
	assert.Equal(t, 4000, req.MaxTokens)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, FloifySystemPrompt, req.Messages[0].Content)
	assert.True(t, strings.Contains(req.Messages[1].Content, "John"))
}

func TestTransformToFloifyUnparseable(t *testing.T) {
	svc := NewLLMService(&fakeCompleter{reply: "not json"}, 4000, zap.NewNop())

	result, err := svc.TransformToFloify(context.Background(), "")
	require.NoError(t, err)

	assert.Nil(t, result.Document)
	assert.Equal(t, "not json", result.RawReply)
	assert.Error(t, result.ParseErr)
}

func TestTransformToFloifyCompleterError(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewLLMService(&fakeCompleter{err: boom}, 4000, zap.NewNop())

	result, err := svc.TransformToFloify(context.Background(), "text")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, boom)
}
