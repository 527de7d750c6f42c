// Package lifecycle tracks the state of one user's suggestion session.
package lifecycle

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/capitalize-ai/gift-suggester/internal/model"
	"github.com/capitalize-ai/gift-suggester/pkg/logger"
)

// DetailSomethingWrong is shown when the gateway could not be reached at all.
const DetailSomethingWrong = model.DetailSomethingWrong

var (
	// ErrRequestInFlight is returned by Submit while a request is outstanding.
	ErrRequestInFlight = errors.New("a suggestion request is already in flight")
	// ErrNothingToRegenerate is returned by Regenerate before any submission.
	ErrNothingToRegenerate = errors.New("no previous message to regenerate")
)

// Phase is the request phase of a session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a snapshot of a session. Response is set only in PhaseSuccess and
// Err only in PhaseFailed.
type State struct {
	Phase       Phase
	Response    *model.SuggestionResponse
	Err         *model.ErrorDetail
	LastMessage string
}

// Suggester fetches suggestions for a request.
type Suggester interface {
	Suggest(ctx context.Context, req model.SuggestionRequest) (*model.SuggestionResponse, error)
}

// detailer is implemented by errors that already carry a user-facing detail.
type detailer interface {
	ErrorDetail() model.ErrorDetail
}

// Listener observes every state transition.
type Listener func(State)

// Option configures a Controller.
type Option func(*Controller)

// WithListener registers a listener called after each transition. Listeners
// run on the goroutine that caused the transition and must not call back
// into the Controller.
func WithListener(l Listener) Option {
	return func(c *Controller) { c.listeners = append(c.listeners, l) }
}

// WithMaxLength overrides the upper bound on message length.
func WithMaxLength(n int) Option {
	return func(c *Controller) { c.maxLength = n }
}

// Controller owns the lifecycle state of one session. At most one request is
// outstanding at a time.
type Controller struct {
	suggester Suggester
	logger    *logger.Logger
	maxLength int
	listeners []Listener

	mu    sync.Mutex
	state State
}

// New creates a Controller in PhaseIdle.
func New(s Suggester, log *logger.Logger, opts ...Option) *Controller {
	c := &Controller{
		suggester: s,
		logger:    log,
		maxLength: model.MaxMessageLength,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CanRegenerate reports whether Regenerate would start a request.
func (c *Controller) CanRegenerate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.LastMessage != "" && c.state.Phase != PhaseLoading
}

// Submit validates message and, if valid, requests suggestions for it. It
// blocks until the request completes. A validation failure leaves the state
// untouched.
func (c *Controller) Submit(ctx context.Context, message string) error {
	if err := model.ValidateUserMessage(message, c.maxLength); err != nil {
		return err
	}

	c.mu.Lock()
	if c.state.Phase == PhaseLoading {
		c.mu.Unlock()
		return ErrRequestInFlight
	}
	snapshot := c.setLoading(message)
	c.mu.Unlock()
	c.notify(snapshot)

	resp, err := c.suggester.Suggest(ctx, model.SuggestionRequest{UserMessage: message})

	c.mu.Lock()
	if err != nil {
		detail := toErrorDetail(err)
		snapshot = c.setFailed(detail)
		c.mu.Unlock()
		c.logFailure(detail, err)
		c.notify(snapshot)
		return detail
	}
	snapshot = c.setSuccess(resp)
	c.mu.Unlock()

	c.logger.Info("suggestions received", zap.Int("count", len(resp.Suggestions)))
	c.notify(snapshot)
	return nil
}

// Regenerate replays the last submitted message.
func (c *Controller) Regenerate(ctx context.Context) error {
	c.mu.Lock()
	last := c.state.LastMessage
	c.mu.Unlock()

	if last == "" {
		return ErrNothingToRegenerate
	}
	return c.Submit(ctx, last)
}

// Transition setters. Callers hold c.mu.

func (c *Controller) setLoading(message string) State {
	c.state = State{Phase: PhaseLoading, LastMessage: message}
	return c.state
}

func (c *Controller) setSuccess(resp *model.SuggestionResponse) State {
	if resp == nil {
		resp = &model.SuggestionResponse{}
	}
	c.state = State{Phase: PhaseSuccess, Response: resp, LastMessage: c.state.LastMessage}
	return c.state
}

func (c *Controller) setFailed(detail model.ErrorDetail) State {
	c.state = State{Phase: PhaseFailed, Err: &detail, LastMessage: c.state.LastMessage}
	return c.state
}

func (c *Controller) notify(s State) {
	for _, l := range c.listeners {
		l(s)
	}
}

func (c *Controller) logFailure(detail model.ErrorDetail, err error) {
	fields := []zap.Field{
		zap.String("class", string(detail.Class)),
		zap.Error(err),
	}
	if detail.Class == model.ClassValidation {
		c.logger.Info("suggestion request rejected", fields...)
		return
	}
	c.logger.Warn("suggestion request failed", fields...)
}

func toErrorDetail(err error) model.ErrorDetail {
	var d detailer
	if errors.As(err, &d) {
		return d.ErrorDetail()
	}
	return model.ErrorDetail{Message: DetailSomethingWrong, Class: model.ClassUpstreamUnreachable}
}
