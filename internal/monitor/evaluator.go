// Package monitor supervises the document-drafting process: it consumes
// events from the update queue, evaluates saved work-items with a secondary
// model, appends evaluations to the audit log, and merges parsed reports
// back into the document store.
package monitor

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/timvw/draft-patrol/internal/auditlog"
	"github.com/timvw/draft-patrol/internal/gateway"
	"github.com/timvw/draft-patrol/internal/model"
	telem "github.com/timvw/draft-patrol/internal/otel"
	"github.com/timvw/draft-patrol/internal/report"
	"github.com/timvw/draft-patrol/internal/store"
	"github.com/timvw/draft-patrol/internal/token"
)

var tracer = otel.Tracer("draft-patrol/monitor")

// ModelSet names the models of the fallback chain. The names are
// configuration; the order is contract: one primary attempt selected by the
// work-item's prompt-exception flag, then exactly one retry with the
// fallback model when the primary hits the context window.
type ModelSet struct {
	// Primary handles ordinary completions (prompt_exception false).
	Primary string
	// PrimaryException handles completions recorded under a prompt
	// exception (larger context variant).
	PrimaryException string
	// Fallback is tried once after a size-limit failure.
	Fallback string
}

// Chain returns the ordered model attempts for one evaluation.
func (s ModelSet) Chain(promptException bool) []string {
	first := s.Primary
	if promptException {
		first = s.PrimaryException
	}
	return []string{first, s.Fallback}
}

// Evaluator runs one evaluation cycle per saved work-item.
type Evaluator struct {
	Store      store.DocumentStore
	Gateway    gateway.Gateway
	Audit      *auditlog.Log
	Collection string
	Models     ModelSet
	Counter    *token.Counter
	Logger     *zap.Logger
	Metrics    *telem.Metrics // nil-safe
	Cache      *EvalCache     // nil disables outcome reuse
}

func (e *Evaluator) log() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// Evaluate fetches the work-item, drives the model fallback chain, audits
// the response, parses it, and merges the report into the store. Every
// failure is terminal for this cycle only; nothing propagates out.
func (e *Evaluator) Evaluate(ctx context.Context, documentID string) model.Outcome {
	ctx, span := tracer.Start(ctx, "evaluate_work_item",
		trace.WithAttributes(attribute.String("document.id", documentID)))
	defer span.End()

	outcome := e.evaluate(ctx, documentID)
	span.SetAttributes(attribute.String("evaluation.outcome", string(outcome.Kind)))
	e.Metrics.RecordEvaluation(ctx, string(outcome.Kind))
	return outcome
}

func (e *Evaluator) evaluate(ctx context.Context, documentID string) model.Outcome {
	logger := e.log().With(zap.String("document_id", documentID))

	item, err := e.Store.GetByID(ctx, e.Collection, documentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Error("document not found", zap.String("stage", "fetch"))
		} else {
			logger.Error("document lookup failed", zap.String("stage", "fetch"), zap.Error(err))
		}
		return model.Outcome{Kind: model.OutcomeDocumentMissing, DocumentID: documentID}
	}

	if item.IsPromptException() {
		logger.Info("evaluating a prompt-exception completion",
			zap.String("task", item.Task))
	}

	prompt := buildPrompt(item)
	isFunctionCall := item.FinishReason == model.FinishFunctionCall
	stream := auditlog.StreamFor(isFunctionCall)

	if e.Cache != nil {
		if cached, ok := e.Cache.Lookup(documentID, prompt); ok {
			logger.Info("reusing cached evaluation, content unchanged")
			e.Metrics.RecordCacheHit(ctx)
			return *cached
		}
		e.Metrics.RecordCacheMiss(ctx)
	}

	reply, modelUsed, err := e.askWithFallback(ctx, logger, prompt, e.Models.Chain(item.IsPromptException()))
	if err != nil {
		// No response text was obtained, so nothing is audited.
		logger.Error("no model produced an evaluation",
			zap.String("stage", "model"),
			zap.Error(err))
		return model.Outcome{Kind: model.OutcomeModelUnavailable, DocumentID: documentID}
	}

	e.Metrics.RecordTokens(ctx, e.Gateway.Provider(), modelUsed, reply.PromptTokens, reply.CompletionTokens)

	if err := e.Audit.Append(stream, auditlog.Entry{
		DocumentID:       documentID,
		PromptCompletion: item.PromptCompletion,
		EvaluationText:   reply.Text,
	}); err != nil {
		// The evaluation itself still stands; only the trail is degraded.
		logger.Error("audit log append failed",
			zap.String("stage", "audit"),
			zap.String("stream", string(stream)),
			zap.Error(err))
	} else {
		e.Metrics.RecordAuditAppend(ctx, string(stream))
		logger.Info("logged evaluation", zap.String("stream", string(stream)))
	}

	rep, err := report.Parse(reply.Text)
	if err != nil {
		logger.Error("evaluation text not interpretable",
			zap.String("stage", "parse"),
			zap.String("model", modelUsed),
			zap.Error(err))
		return model.Outcome{
			Kind:       model.OutcomeParseFailed,
			DocumentID: documentID,
			RawText:    reply.Text,
			Model:      modelUsed,
		}
	}

	if err := e.Store.MergeFields(ctx, e.Collection, documentID, rep.Fields()); err != nil {
		// Not retried: the audit log already holds the raw evaluation.
		logger.Error("report merge rejected by store",
			zap.String("stage", "persist"),
			zap.Error(err))
		return model.Outcome{
			Kind:       model.OutcomePersistFailed,
			DocumentID: documentID,
			Report:     rep,
			RawText:    reply.Text,
			Model:      modelUsed,
		}
	}

	logger.Info("updated document with evaluation report",
		zap.Int("fields", len(rep.Fields())),
		zap.String("model", modelUsed))

	outcome := model.Outcome{
		Kind:       model.OutcomeCompleted,
		DocumentID: documentID,
		Report:     rep,
		RawText:    reply.Text,
		Model:      modelUsed,
	}
	if e.Cache != nil {
		e.Cache.Store(documentID, prompt, outcome)
	}
	return outcome
}

// askWithFallback walks the model chain, advancing only on size-limit
// failures. Any other error ends the chain immediately.
func (e *Evaluator) askWithFallback(ctx context.Context, logger *zap.Logger, prompt string, chain []string) (*gateway.Reply, string, error) {
	promptTokens := token.Estimate(prompt)
	logger.Info("asking for secondary analysis",
		zap.String("model", chain[0]),
		zap.Int("prompt_tokens_estimate", promptTokens))

	var lastErr error
	for i, modelName := range chain {
		reply, err := e.Gateway.Ask(ctx, prompt, modelName, e.Counter)
		if err == nil {
			return reply, modelName, nil
		}
		if !gateway.IsSizeLimit(err) {
			return nil, modelName, err
		}
		lastErr = err
		if i+1 < len(chain) {
			logger.Info("context window exceeded, trying fallback model",
				zap.String("model", modelName),
				zap.String("fallback", chain[i+1]))
			e.Metrics.RecordFallback(ctx, chain[i+1])
		}
	}
	return nil, "", lastErr
}
