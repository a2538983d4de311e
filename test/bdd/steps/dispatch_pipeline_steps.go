package steps

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/mediator-go/internal/application/mediator"
	"github.com/andrescamacho/mediator-go/internal/application/recovery"
	"github.com/andrescamacho/mediator-go/test/helpers"
)

// EchoQuery is the request type the dispatch scenarios route
type EchoQuery struct {
	mediator.Returns[string]
}

// OrphanCommand never gets a handler
type OrphanCommand struct {
	mediator.Returns[mediator.Unit]
}

type dispatchPipelineContext struct {
	trace    *helpers.Trace
	handlers []mediator.Handler[*EchoQuery, string]
	defaults []string
	specific map[string][]string
	built    []*mediator.Mediator
	buildErr error
	result   string
	results  []string
	traces   [][]string
	err      error
}

func (dpc *dispatchPipelineContext) reset() {
	dpc.trace = helpers.NewTrace()
	dpc.handlers = nil
	dpc.defaults = nil
	dpc.specific = make(map[string][]string)
	dpc.built = nil
	dpc.buildErr = nil
	dpc.result = ""
	dpc.results = nil
	dpc.traces = nil
	dpc.err = nil
}

func (dpc *dispatchPipelineContext) factory(name string) mediator.DecoratorFactory {
	if name == "recovery" {
		return recovery.Decorator()
	}
	return dpc.trace.Decorator(name)
}

func (dpc *dispatchPipelineContext) factories(names []string) []mediator.DecoratorFactory {
	out := make([]mediator.DecoratorFactory, len(names))
	for i, name := range names {
		out[i] = dpc.factory(name)
	}
	return out
}

func (dpc *dispatchPipelineContext) build() (*mediator.Mediator, error) {
	b := mediator.NewBuilder().UseDefaults(dpc.factories(dpc.defaults)...)
	for _, h := range dpc.handlers {
		mediator.RegisterHandler[*EchoQuery, string](b, h)
	}
	for typeName, names := range dpc.specific {
		switch typeName {
		case "EchoQuery":
			mediator.Decorate[*EchoQuery](b, dpc.factories(names)...)
		case "OrphanCommand":
			mediator.Decorate[*OrphanCommand](b, dpc.factories(names)...)
		}
	}
	return b.Build()
}

func (dpc *dispatchPipelineContext) request(typeName string) (any, error) {
	switch typeName {
	case "EchoQuery":
		return &EchoQuery{}, nil
	case "OrphanCommand":
		return &OrphanCommand{}, nil
	}
	return nil, fmt.Errorf("unknown request type %q", typeName)
}

// Given steps

func (dpc *dispatchPipelineContext) aHandlerThatReplies(typeName, reply string) error {
	dpc.handlers = append(dpc.handlers, mediator.HandleFunc[*EchoQuery, string](func(ctx context.Context, q *EchoQuery) (string, error) {
		dpc.trace.Record("inner")
		return reply, nil
	}))
	return nil
}

func (dpc *dispatchPipelineContext) aHandlerThatFailsWith(typeName, message string) error {
	dpc.handlers = append(dpc.handlers, mediator.HandleFunc[*EchoQuery, string](func(ctx context.Context, q *EchoQuery) (string, error) {
		return "", errors.New(message)
	}))
	return nil
}

func (dpc *dispatchPipelineContext) aHandlerThatPanics(typeName string) error {
	dpc.handlers = append(dpc.handlers, mediator.HandleFunc[*EchoQuery, string](func(ctx context.Context, q *EchoQuery) (string, error) {
		panic("handler exploded")
	}))
	return nil
}

func (dpc *dispatchPipelineContext) defaultDecorators(table *godog.Table) error {
	dpc.defaults = column(table, "name")
	return nil
}

func (dpc *dispatchPipelineContext) decoratorsFor(typeName string, table *godog.Table) error {
	dpc.specific[typeName] = column(table, "name")
	return nil
}

func (dpc *dispatchPipelineContext) thePipelineIsBuilt() error {
	med, err := dpc.build()
	dpc.buildErr = err
	if med != nil {
		dpc.built = append(dpc.built, med)
	}
	return nil
}

func (dpc *dispatchPipelineContext) thePipelineIsBuiltTwice() error {
	for i := 0; i < 2; i++ {
		med, err := dpc.build()
		if err != nil {
			return err
		}
		dpc.built = append(dpc.built, med)
	}
	return nil
}

// When steps

func (dpc *dispatchPipelineContext) dispatch(ctx context.Context, typeName string, times int) error {
	if dpc.buildErr != nil {
		return fmt.Errorf("pipeline failed to build: %w", dpc.buildErr)
	}
	if len(dpc.built) == 0 {
		return fmt.Errorf("pipeline was not built")
	}
	req, err := dpc.request(typeName)
	if err != nil {
		return err
	}

	for i := 0; i < times; i++ {
		dpc.trace.Reset()
		resp, err := dpc.built[0].Send(ctx, req)
		dpc.err = err
		if s, ok := resp.(string); ok {
			dpc.result = s
		}
		dpc.traces = append(dpc.traces, dpc.trace.Events())
	}
	return nil
}

func (dpc *dispatchPipelineContext) iDispatchAn(typeName string) error {
	return dpc.dispatch(context.Background(), typeName, 1)
}

func (dpc *dispatchPipelineContext) iDispatchAnTimes(typeName string, times int) error {
	return dpc.dispatch(context.Background(), typeName, times)
}

func (dpc *dispatchPipelineContext) iDispatchAnWithACancelledContext(typeName string) error {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return dpc.dispatch(ctx, typeName, 1)
}

// Then steps

func (dpc *dispatchPipelineContext) theDispatchShouldSucceedWith(expected string) error {
	if dpc.err != nil {
		return fmt.Errorf("expected success, got error: %v", dpc.err)
	}
	if dpc.result != expected {
		return fmt.Errorf("expected result '%s', got '%s'", expected, dpc.result)
	}
	return nil
}

func (dpc *dispatchPipelineContext) everyDispatchShouldTrace(table *godog.Table) error {
	expected := column(table, "event")
	if len(dpc.traces) == 0 {
		return fmt.Errorf("no dispatch was recorded")
	}
	for i, got := range dpc.traces {
		if !reflect.DeepEqual(expected, got) {
			return fmt.Errorf("dispatch %d: expected trace %v, got %v", i+1, expected, got)
		}
	}
	return nil
}

func (dpc *dispatchPipelineContext) buildingShouldFailWithABindingErrorMentioning(reason string) error {
	if dpc.buildErr == nil {
		return fmt.Errorf("expected build to fail, but it succeeded")
	}
	var binding *mediator.BindingError
	if !errors.As(dpc.buildErr, &binding) {
		return fmt.Errorf("expected a binding error, got %T: %v", dpc.buildErr, dpc.buildErr)
	}
	if !strings.Contains(dpc.buildErr.Error(), reason) {
		return fmt.Errorf("expected build error to mention '%s', got '%s'", reason, dpc.buildErr.Error())
	}
	return nil
}

func (dpc *dispatchPipelineContext) noDecoratorShouldHaveRun() error {
	for _, events := range dpc.traces {
		if len(events) > 0 {
			return fmt.Errorf("expected no decorator to run, got %v", events)
		}
	}
	return nil
}

func (dpc *dispatchPipelineContext) bothPipelinesShouldProduceTheSameResultAndTrace() error {
	if len(dpc.built) != 2 {
		return fmt.Errorf("expected 2 pipelines, got %d", len(dpc.built))
	}

	var results []any
	var traces [][]string
	for _, med := range dpc.built {
		dpc.trace.Reset()
		resp, err := med.Send(context.Background(), &EchoQuery{})
		if err != nil {
			return fmt.Errorf("dispatch failed: %w", err)
		}
		results = append(results, resp)
		traces = append(traces, dpc.trace.Events())
	}

	if results[0] != results[1] {
		return fmt.Errorf("results differ: %v vs %v", results[0], results[1])
	}
	if !reflect.DeepEqual(traces[0], traces[1]) {
		return fmt.Errorf("traces differ: %v vs %v", traces[0], traces[1])
	}
	return nil
}

func (dpc *dispatchPipelineContext) theFailureShouldWrap(message string) error {
	var unhandled *mediator.UnhandledFailureError
	if !errors.As(dpc.err, &unhandled) {
		return fmt.Errorf("expected UnhandledFailure, got %T: %v", dpc.err, dpc.err)
	}
	if unhandled.Cause == nil || unhandled.Cause.Error() != message {
		return fmt.Errorf("expected cause '%s', got '%v'", message, unhandled.Cause)
	}
	return nil
}

func InitializeDispatchPipelineScenario(ctx *godog.ScenarioContext) {
	dpc := &dispatchPipelineContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		dpc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a handler for "([^"]*)" that replies "([^"]*)"$`, dpc.aHandlerThatReplies)
	ctx.Step(`^a handler for "([^"]*)" that fails with "([^"]*)"$`, dpc.aHandlerThatFailsWith)
	ctx.Step(`^a handler for "([^"]*)" that panics$`, dpc.aHandlerThatPanics)
	ctx.Step(`^default decorators:$`, dpc.defaultDecorators)
	ctx.Step(`^decorators for "([^"]*)":$`, dpc.decoratorsFor)
	ctx.Step(`^the pipeline is built$`, dpc.thePipelineIsBuilt)
	ctx.Step(`^the pipeline is built twice$`, dpc.thePipelineIsBuiltTwice)

	// When steps
	ctx.Step(`^I dispatch an "([^"]*)"$`, dpc.iDispatchAn)
	ctx.Step(`^I dispatch an "([^"]*)" (\d+) times$`, dpc.iDispatchAnTimes)
	ctx.Step(`^I dispatch an "([^"]*)" with a cancelled context$`, dpc.iDispatchAnWithACancelledContext)

	// Then steps
	ctx.Step(`^the dispatch should succeed with "([^"]*)"$`, dpc.theDispatchShouldSucceedWith)
	ctx.Step(`^every dispatch should trace:$`, dpc.everyDispatchShouldTrace)
	ctx.Step(`^building should fail with a binding error mentioning "([^"]*)"$`, dpc.buildingShouldFailWithABindingErrorMentioning)
	ctx.Step(`^no decorator should have run$`, dpc.noDecoratorShouldHaveRun)
	ctx.Step(`^both pipelines should produce the same result and trace$`, dpc.bothPipelinesShouldProduceTheSameResultAndTrace)
	ctx.Step(`^the failure should wrap "([^"]*)"$`, dpc.theFailureShouldWrap)
	ctx.Step(`^the dispatch should fail with taxonomy "([^"]*)"$`, func(expected string) error {
		return expectTaxonomy(dpc.err, expected)
	})
}

func expectTaxonomy(err error, expected string) error {
	if err == nil {
		return fmt.Errorf("expected failure with taxonomy %s, but dispatch succeeded", expected)
	}
	if got := mediator.TaxonomyOf(err); got != expected {
		return fmt.Errorf("expected taxonomy %s, got %q (%v)", expected, got, err)
	}
	return nil
}
