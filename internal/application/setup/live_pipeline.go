package setup

import (
	"sync/atomic"

	"github.com/andrescamacho/mediator-go/internal/application/mediator"
	"github.com/andrescamacho/mediator-go/internal/application/throttle"
	"github.com/andrescamacho/mediator-go/internal/infrastructure/config"
)

// LivePipeline is the serving dispatch pipeline together with the circuit
// breakers of the mediator that currently serves. Reload builds into a fresh
// BreakerSet and publishes it only once the new mediator is live, so a
// rejected configuration leaves both untouched.
type LivePipeline struct {
	registry *HandlerRegistry
	deps     PipelineDeps
	live     *mediator.Live
	breakers atomic.Pointer[throttle.BreakerSet]
}

// NewLivePipeline builds the initial pipeline. deps.Breakers is ignored;
// every build gets its own set.
func NewLivePipeline(cfg config.DispatchConfig, registry *HandlerRegistry, deps PipelineDeps) (*LivePipeline, error) {
	p := &LivePipeline{registry: registry, deps: deps, live: mediator.NewLive(nil)}
	if err := p.Reload(cfg); err != nil {
		return nil, err
	}
	return p, nil
}

// Reload rebuilds the pipeline from cfg and swaps it in. On error the
// running mediator and its breakers keep serving.
func (p *LivePipeline) Reload(cfg config.DispatchConfig) error {
	deps := p.deps
	deps.Breakers = throttle.NewBreakerSet()

	med, err := BuildMediator(cfg, p.registry, deps)
	if err != nil {
		return err
	}

	p.live.Swap(med)
	p.breakers.Store(deps.Breakers)
	return nil
}

// Sender dispatches through whichever mediator is live
func (p *LivePipeline) Sender() mediator.Sender {
	return p.live
}

// Routes lists the request types of the live mediator
func (p *LivePipeline) Routes() []string {
	if med := p.live.Current(); med != nil {
		return med.Routes()
	}
	return nil
}

// States reports the breakers of the live mediator by request name
func (p *LivePipeline) States() map[string]string {
	if set := p.breakers.Load(); set != nil {
		return set.States()
	}
	return map[string]string{}
}
