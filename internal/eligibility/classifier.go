package eligibility

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// Classifier sends a rendered request to the external classifier and returns
// its raw text. Errors wrap ErrTransport or ErrUpstream. Implementations do
// not retry.
type Classifier interface {
	Classify(ctx context.Context, req Request) (string, error)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, req Request) (string, error)

func (f ClassifierFunc) Classify(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// AgentClassifier calls a go-agents chat agent.
type AgentClassifier struct {
	cfg     gaconfig.AgentConfig
	timeout time.Duration
}

// NewAgentClassifier creates a classifier for a finalized agent config. A
// positive timeout bounds every call.
func NewAgentClassifier(cfg gaconfig.AgentConfig, timeout time.Duration) *AgentClassifier {
	return &AgentClassifier{cfg: cfg, timeout: timeout}
}

func (c *AgentClassifier) Provider() string {
	if c.cfg.Provider == nil {
		return ""
	}
	return c.cfg.Provider.Name
}

func (c *AgentClassifier) Model() string {
	if c.cfg.Model == nil {
		return ""
	}
	return c.cfg.Model.Name
}

func (c *AgentClassifier) Classify(ctx context.Context, req Request) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	a, err := agent.New(&c.cfg)
	if err != nil {
		return "", fmt.Errorf("%w: create agent: %v", ErrUpstream, err)
	}

	resp, err := a.Chat(ctx, req.Prompt)
	if err != nil {
		return "", classifyError(ctx, err)
	}

	return resp.Content(), nil
}

// classifyError sorts a failed call into transport or upstream.
func classifyError(ctx context.Context, err error) error {
	var netErr net.Error
	switch {
	case ctx.Err() != nil,
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.As(err, &netErr):
		return fmt.Errorf("%w: %v", ErrTransport, err)
	default:
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
}
