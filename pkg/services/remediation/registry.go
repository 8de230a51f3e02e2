package remediation

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vanhoangkha/trusted-advisor-tools/pkg/models/domain"
)

// Remediator is the per-finding-type capability set the pipeline dispatches
// to: decode the inbound envelope, decide and act, and name the notification.
type Remediator interface {
	// Name identifies the remediator in the registry and in logs.
	Name() string
	// Decode parses the raw event envelope into a Finding, failing with a
	// ValidationError on malformed input.
	Decode(raw []byte) (domain.Finding, error)
	// Remediate runs the idempotency guard and, when it proceeds, performs
	// the single corrective mutation.
	Remediate(ctx context.Context, finding domain.Finding) (domain.RemediationOutcome, error)
	// Subject is the notification subject line for an applied remediation.
	Subject(finding domain.Finding) string
}

// Registry manages the remediators available to the pipeline.
type Registry interface {
	// Register adds a remediator under its own name.
	Register(r Remediator) error
	// Get returns the remediator registered under name.
	Get(name string) (Remediator, error)
	// List returns the registered names, sorted.
	List() []string
}

// ErrNotRegistered wraps lookups of unknown remediator names.
type ErrNotRegistered struct {
	Name string
}

func (e *ErrNotRegistered) Error() string {
	return fmt.Sprintf("remediator %q is not registered", e.Name)
}

type registry struct {
	mu          sync.RWMutex
	remediators map[string]Remediator
}

// NewRegistry creates an empty remediator registry.
func NewRegistry() Registry {
	return &registry{remediators: make(map[string]Remediator)}
}

func (r *registry) Register(rem Remediator) error {
	if rem == nil {
		return fmt.Errorf("remediator cannot be nil")
	}
	if rem.Name() == "" {
		return fmt.Errorf("remediator name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.remediators[rem.Name()]; exists {
		return fmt.Errorf("remediator %q is already registered", rem.Name())
	}

	r.remediators[rem.Name()] = rem
	return nil
}

func (r *registry) Get(name string) (Remediator, error) {
	r.mu.RLock()
	rem, exists := r.remediators[name]
	r.mu.RUnlock()

	if !exists {
		return nil, &ErrNotRegistered{Name: name}
	}
	return rem, nil
}

func (r *registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.remediators))
	for name := range r.remediators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
