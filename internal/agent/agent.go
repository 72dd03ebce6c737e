// Package agent runs the bounded tool-use conversation that classifies a
// product description, then reconciles the engine's answer against tool
// evidence so every request ends in a usable result.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/stowage-labs/stowage/internal/category"
	"github.com/stowage-labs/stowage/internal/dimension"
	"github.com/stowage-labs/stowage/internal/feedback"
	"github.com/stowage-labs/stowage/internal/llm"
	"github.com/stowage-labs/stowage/internal/model"
	"github.com/stowage-labs/stowage/internal/search"
)

// maxTurns bounds the agentic loop. Exceeding it without a terminal answer
// is not an error; extraction runs on whatever the last turn produced.
const maxTurns = 5

// Fixed confidences for the deterministic fallback paths.
const (
	dimensionFallbackConfidence = 85
	lookupFallbackConfidence    = 80
	defaultFallbackConfidence   = 50
)

// unparseableReasoning stands in when the engine produced no text at all.
const unparseableReasoning = "Unable to parse classification response"

// Searcher is the product-lookup tool's backend.
type Searcher interface {
	Lookup(ctx context.Context, query string) (search.Lookup, error)
}

// Classifier orchestrates one classification request end to end.
type Classifier struct {
	engine   llm.Client
	search   Searcher
	feedback *feedback.Retriever
	logger   *slog.Logger
}

// NewClassifier wires the orchestrator. retriever may be built over a nil
// store, in which case classification simply runs without few-shot context.
func NewClassifier(engine llm.Client, searcher Searcher, retriever *feedback.Retriever, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	if retriever == nil {
		retriever = feedback.NewRetriever(nil, logger)
	}
	return &Classifier{
		engine:   engine,
		search:   searcher,
		feedback: retriever,
		logger:   logger,
	}
}

// Classify runs the bounded tool-use loop for one description. Transport
// failures with the engine surface as errors from the llm taxonomy and are
// never retried here; everything downstream of a successful final turn
// degrades to a result instead of an error.
func (c *Classifier) Classify(ctx context.Context, description string) (model.ClassificationResult, error) {
	system := systemPrompt
	if fewShot := feedback.FormatForPrompt(c.feedback.Relevant(ctx, description, feedback.DefaultMaxEntries)); fewShot != "" {
		system += "\n" + fewShot
	}

	messages := []llm.Message{llm.UserText(classificationPrompt(description))}
	tools := toolSpecs()

	var (
		sess      session
		toolsUsed model.ToolUsage
		resp      *llm.Response
	)

	for turn := 0; turn < maxTurns; turn++ {
		var err error
		resp, err = c.engine.CreateMessage(ctx, llm.Request{
			System:   system,
			Messages: messages,
			Tools:    tools,
		})
		if err != nil {
			c.logger.Error("engine turn failed", "turn", turn, "error", err)
			return model.ClassificationResult{}, err
		}

		if resp.StopReason != llm.StopReasonToolUse {
			break
		}

		// Execute every requested tool synchronously, in order, and feed
		// the results back as the next user turn.
		var results []llm.ContentBlock
		for _, use := range resp.ToolUses() {
			outcome := c.runTool(ctx, &sess, toolRequest{
				id:    use.ID,
				name:  use.Name,
				input: use.Input,
			})
			recordUsage(&toolsUsed, use.Name, outcome)

			content, err := json.Marshal(outcome.payload)
			if err != nil {
				content = []byte(fmt.Sprintf(`{"error":%q}`, err.Error()))
			}
			results = append(results, llm.ContentBlock{
				Type:      llm.BlockToolResult,
				ToolUseID: use.ID,
				Content:   string(content),
				IsError:   outcome.isError,
			})
		}

		messages = append(messages,
			llm.Message{Role: llm.RoleAssistant, Content: resp.Content},
			llm.Message{Role: llm.RoleUser, Content: results},
		)
	}

	if !toolsUsed.LookupKnownProduct.Called {
		toolsUsed.LookupKnownProduct = model.ToolInvocation{Reason: reasonNoLookupNeeded}
	}
	if !toolsUsed.ExtractExplicitDimensions.Called {
		toolsUsed.ExtractExplicitDimensions = model.ToolInvocation{Reason: reasonNoDimensions}
	}

	text := resp.Text()
	classification, confidence, reasoning := c.resolveAnswer(text, &sess)

	return model.ClassificationResult{
		Classification: classification,
		Confidence:     model.ClampConfidence(confidence),
		Reasoning:      reasoning,
		ToolsUsed:      toolsUsed,
	}, nil
}

// resolveAnswer turns the terminal turn's text into a classification, using
// the extraction cascade first and tool evidence as the fallback.
func (c *Classifier) resolveAnswer(text string, sess *session) (model.Category, int, string) {
	if parsed, ok := extractAnswer(text); ok {
		raw, _ := answerString(parsed, "classification")
		classification, err := model.ParseCategory(raw)
		if err != nil {
			classification = model.CategoryTote
		}

		reasoning, ok := answerString(parsed, "reasoning")
		if !ok {
			reasoning = text
		}

		return classification, answerConfidence(parsed), reasoning
	}

	reasoning := text
	if reasoning == "" {
		reasoning = unparseableReasoning
	}

	if d := sess.dimensionEvidence; d != nil && d.Parsed.HasAny() {
		p := d.Parsed
		return category.Classify(p.Length, p.Width, p.Height, p.Weight),
			dimensionFallbackConfidence, reasoning
	}

	if l := sess.lookupEvidence; l != nil && l.Found && l.BestMatch != nil {
		length, width, height := dimension.ParseReferenceDimensions(l.BestMatch.Dimensions)
		weight := dimension.ParseReferenceWeight(l.BestMatch.Weight)
		return category.Classify(length, width, height, weight),
			lookupFallbackConfidence, reasoning
	}

	return model.CategoryTote, defaultFallbackConfidence, reasoning
}

// recordUsage tracks the final invocation state of one advertised tool.
// The last call per tool wins.
func recordUsage(usage *model.ToolUsage, name string, outcome toolOutcome) {
	inv := model.ToolInvocation{Called: true, Result: outcome.display}
	switch name {
	case toolLookupProduct:
		usage.LookupKnownProduct = inv
	case toolExtractDimensions:
		usage.ExtractExplicitDimensions = inv
	}
}
