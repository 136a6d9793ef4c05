package chat

import (
	"context"
	"errors"
	"time"

	"draftpad-backend/internal/config"
	"draftpad-backend/internal/domain"
	"draftpad-backend/internal/repository"
	"draftpad-backend/internal/service/automation"
	"draftpad-backend/internal/service/billing"
	"draftpad-backend/internal/service/contextsvc"
	"draftpad-backend/internal/service/editparse"
	"draftpad-backend/internal/service/llm"
	"draftpad-backend/internal/service/reconcile"
	appErrors "draftpad-backend/pkg/errors"
	"draftpad-backend/pkg/observability"

	"go.uber.org/zap"
)

// Chat modes. Ask answers without unsolicited edits; Create may edit and
// may register automations.
const (
	ModeAsk    = "ask"
	ModeCreate = "create"
)

// Request is one chat-edit invocation. TaskID is the idempotency key shared
// by billing and any client retry of the same logical request.
type Request struct {
	Message             string `validate:"required"`
	History             []domain.ChatTurn
	AttachedDocumentIDs []string
	ModelKey            string
	DefaultOwnerScope   string
	Mode                string `validate:"omitempty,oneof=ask create"`
	Stream              bool
	TaskID              string `validate:"required"`
	UserID              string `validate:"required"`
	Meta                automation.RequestMeta
}

// Pipeline runs the stages of a chat-edit request in order, emitting
// progress to the delivery stream. All partial failures degrade per stage;
// only context assembly, the model call, and persistence are fatal.
type Pipeline struct {
	cfg         config.Config
	docs        repository.DocumentRepository
	assembler   *contextsvc.Assembler
	invoker     *llm.Invoker
	reconciler  *reconcile.Reconciler
	billing     *billing.Service
	automations *automation.Extractor
	turns       repository.TurnRecorder
	metrics     *observability.Collector
	logger      *zap.Logger
}

// NewPipeline wires a pipeline. automations, turns and metrics may be nil.
func NewPipeline(
	cfg config.Config,
	docs repository.DocumentRepository,
	assembler *contextsvc.Assembler,
	invoker *llm.Invoker,
	reconciler *reconcile.Reconciler,
	billingSvc *billing.Service,
	automations *automation.Extractor,
	turns repository.TurnRecorder,
	metrics *observability.Collector,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		docs:        docs,
		assembler:   assembler,
		invoker:     invoker,
		reconciler:  reconciler,
		billing:     billingSvc,
		automations: automations,
		turns:       turns,
		metrics:     metrics,
		logger:      logger,
	}
}

// Run executes the request and closes the stream when done. Fatal errors
// become the stream's terminal error event, carrying the task id as the
// correlation id; a canceled caller context ends the stream without a
// terminal event, since nobody is listening.
func (p *Pipeline) Run(ctx context.Context, req Request, stream *Stream) {
	defer stream.Close()

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeouts.Pipeline)
	defer cancel()

	mode := req.Mode
	if mode == "" {
		mode = ModeCreate
	}
	modelKey := req.ModelKey
	if modelKey == "" {
		modelKey = p.cfg.DefaultModel
	}

	outcome := "ok"
	defer func() {
		if p.metrics != nil {
			p.metrics.PipelineRuns.WithLabelValues(mode, outcome).Inc()
		}
	}()

	stream.Status("assembling_context")
	assembleStart := time.Now()
	assembled, err := p.assembler.Assemble(ctx, req.Message, req.History, req.AttachedDocumentIDs, req.DefaultOwnerScope, contextsvc.Options{
		EnableRetrieval: p.cfg.Features.EnableRetrieval,
		EnableWebSearch: p.cfg.Features.EnableWebSearch,
		HeadChars:       p.cfg.DocumentHeadChars,
		TailChars:       p.cfg.DocumentTailChars,
		RetrievalTopK:   p.cfg.RetrievalTopK,
		SearchCount:     p.cfg.SearchResultCount,
		RetrievalBudget: p.cfg.Timeouts.Retrieval,
		SearchBudget:    p.cfg.Timeouts.Search,
	})
	if p.metrics != nil {
		p.metrics.ObserveStage("assemble", assembleStart)
	}
	if err != nil {
		outcome = "error"
		p.fail(stream, req.TaskID, appErrors.Wrap(err, "failed to assemble context"))
		return
	}
	for _, warning := range assembled.Warnings {
		stream.Status(warning)
	}

	p.appendTurn(ctx, req.UserID, domain.ChatTurn{Role: "user", Text: req.Message})

	stream.Status("calling_model")
	modelStart := time.Now()
	modelCtx, cancelModel := context.WithTimeout(ctx, p.cfg.Timeouts.Model)
	result, err := p.invoker.Invoke(modelCtx, modelKey, buildPrompt(req, assembled), llm.CompletionOptions{
		Temperature: 0.7,
		MaxTokens:   4096,
	}, req.Stream, stream.Delta)
	cancelModel()
	if p.metrics != nil {
		p.metrics.ObserveStage("model", modelStart)
	}
	if err != nil {
		outcome = "error"
		if ctx.Err() == context.Canceled {
			// The caller went away; there is nobody to deliver to.
			return
		}
		if errors.Is(err, context.DeadlineExceeded) {
			// The pipeline context may itself be the expired deadline;
			// the timed-out notice must still commit.
			p.appendTurn(context.WithoutCancel(ctx), req.UserID, domain.ChatTurn{Role: "assistant", Text: "The request timed out before a reply completed."})
			p.fail(stream, req.TaskID, appErrors.NewUpstream("the model call timed out", err))
			return
		}
		p.fail(stream, req.TaskID, appErrors.Wrap(err, "model call failed"))
		return
	}

	parsed := editparse.Parse(result.Text)
	reply := parsed.Reply

	// Reconciliation works on the full stored documents; the assembled
	// copies were truncated for the prompt.
	loaded, err := p.docs.GetByIDs(ctx, req.AttachedDocumentIDs)
	if err != nil {
		outcome = "error"
		p.fail(stream, req.TaskID, appErrors.Wrap(err, "failed to load documents for reconciliation"))
		return
	}

	reconcileStart := time.Now()
	plan := p.reconciler.Plan(parsed.Proposals, loaded, req.DefaultOwnerScope)
	if len(plan.Changes) > 0 {
		stream.Docs(StageDraft, plan.Changes)
	}
	if err := p.reconciler.Persist(ctx, &plan); err != nil {
		outcome = "error"
		p.fail(stream, req.TaskID, appErrors.Wrap(err, "failed to persist document changes"))
		return
	}
	if p.metrics != nil {
		p.metrics.ObserveStage("reconcile", reconcileStart)
		p.metrics.DocumentsUpserted.Add(float64(len(plan.Documents)))
	}
	if len(plan.Changes) > 0 {
		stream.Docs(StageFinal, plan.Changes)
	}
	if plan.MediaNote != "" {
		reply = reply + "\n\n" + plan.MediaNote
	}

	receipt := p.billing.Charge(ctx, req.TaskID, req.UserID, modelKey)
	if p.metrics != nil {
		p.metrics.CreditsCharged.Add(float64(receipt.CreditsCharged))
	}

	if mode == ModeCreate && p.automations != nil && p.cfg.Features.EnableAutomations {
		if _, trailer := p.automations.Extract(ctx, req.UserID, req.Message, req.Meta); trailer != "" {
			reply = reply + trailer
		}
	}

	p.appendTurn(ctx, req.UserID, domain.ChatTurn{Role: "assistant", Text: reply})

	stream.Final(FinalPayload{
		Reply:       reply,
		UpdatedDocs: plan.Documents,
		Changes:     plan.Changes,
		TaskID:      req.TaskID,
		CreditsUsed: receipt.CreditsCharged,
	})
}

// fail logs the fatal error and emits the terminal error event. The task id
// doubles as the correlation id the user can quote back to support.
func (p *Pipeline) fail(stream *Stream, taskID string, err error) {
	err = appErrors.WithCorrelation(err, taskID)
	p.logger.Error("pipeline failed",
		zap.String("task_id", taskID),
		zap.Error(err))

	message := "the request could not be completed"
	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.UserMessage()
	}
	stream.Error(message, taskID)
}

func (p *Pipeline) appendTurn(ctx context.Context, userID string, turn domain.ChatTurn) {
	if p.turns == nil {
		return
	}
	if err := p.turns.AppendTurn(ctx, userID, turn); err != nil {
		p.logger.Warn("failed to record chat turn",
			zap.String("user_id", userID),
			zap.Error(err))
	}
}
