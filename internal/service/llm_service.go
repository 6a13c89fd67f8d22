package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// FloifySystemPrompt frames the model as an extraction assistant for every provider.
const FloifySystemPrompt = "You are a specialized document extraction assistant that transforms OCR text into " +
	"structured Floify 1003 JSON format with complete comprehensive extraction of all available fields."

const floifyPromptTemplate = `
You are an expert document analyzer specializing in mortgage applications. Extract ALL available information from the OCR text below and format it into a complete Floify 1003 JSON structure.

The OCR text from the document is:
` + "```" + `
%s
` + "```" + `

Create a comprehensive Floify 1003 JSON with these sections:
1. Borrower information:
   - Personal details (name, contact info)
   - Current address
   - Detailed employment history (all employers with dates, positions, and income)
   - Income breakdowns (base, overtime, bonuses, commissions) with frequencies
   - All assets and liabilities mentioned

2. Co-borrower information (if present):
   - Same detailed structure as borrower

3. Property information:
   - Address, property type, and usage details

4. Loan information:
   - Loan amount, type, term, interest rate, and purpose

Be thorough and extract every piece of information available in the document. For fields not present in the text, use null values.

Format the response as a complete, well-structured JSON object following the Floify 1003 format with all nested objects and arrays properly structured.

Return ONLY the JSON object without any explanations.
`

// BuildFloifyPrompt embeds the OCR text verbatim in the extraction instructions.
func BuildFloifyPrompt(text string) string {
	return fmt.Sprintf(floifyPromptTemplate, text)
}

// FloifyResult holds the model reply and, when it parsed, the Floify document.
type FloifyResult struct {
	Document json.RawMessage
	RawReply string
	ParseErr error
}

// LLMService converts extracted text into a Floify 1003 document.
type LLMService struct {
	completer Completer
	maxTokens int
	logger    *zap.Logger
}

func NewLLMService(completer Completer, maxTokens int, logger *zap.Logger) *LLMService {
	return &LLMService{
		completer: completer,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// TransformToFloify asks the model for the Floify JSON with deterministic sampling.
// A reply that does not parse is not an error: the result carries the raw reply
// and ParseErr, and Document stays nil.
func (s *LLMService) TransformToFloify(ctx context.Context, text string) (*FloifyResult, error) {
	req := CompletionRequest{
		Messages: []ChatMessage{
			{Role: RoleSystem, Content: FloifySystemPrompt},
			{Role: RoleUser, Content: BuildFloifyPrompt(text)},
		},
		Temperature: 0,
		MaxTokens:   s.maxTokens,
	}

	s.logger.Info("Sending request to LLM",
		zap.String("model", s.completer.Model()),
		zap.Int("text_length", len(text)),
	)
	start := time.Now()

	reply, err := s.completer.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM request failed: %w", err)
	}

	s.logger.Info("LLM request completed",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("reply_length", len(reply)),
	)

	result := &FloifyResult{RawReply: reply}

	doc, err := ParseFloifyReply(reply)
	if err != nil {
		s.logger.Error("Error parsing JSON from LLM response",
			zap.Error(err),
			zap.String("raw_response", reply),
		)
		result.ParseErr = err
		return result, nil
	}

	result.Document = doc
	return result, nil
}
