package mediator_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/mediator-go/internal/application/mediator"
	"github.com/andrescamacho/mediator-go/test/helpers"
)

type pingQuery struct {
	mediator.Returns[string]
	Name string
}

type countCommand struct {
	mediator.Returns[int]
}

type orphanQuery struct {
	mediator.Returns[mediator.Unit]
}

func pingHandler(trace *helpers.Trace) mediator.Handler[*pingQuery, string] {
	return mediator.HandleFunc[*pingQuery, string](func(ctx context.Context, q *pingQuery) (string, error) {
		if trace != nil {
			trace.Record("inner")
		}
		return "pong " + q.Name, nil
	})
}

func TestMediator_DispatchReturnsHandlerResult(t *testing.T) {
	// Arrange
	b := mediator.NewBuilder()
	mediator.RegisterHandler(b, pingHandler(nil))
	med, err := b.Build()
	require.NoError(t, err)

	// Act
	result, err := mediator.Dispatch(context.Background(), med, &pingQuery{Name: "ana"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "pong ana", result)
}

func TestMediator_SendUnregisteredType(t *testing.T) {
	// Arrange
	trace := helpers.NewTrace()
	b := mediator.NewBuilder().UseDefaults(trace.Decorator("A"))
	mediator.RegisterHandler(b, pingHandler(trace))
	med, err := b.Build()
	require.NoError(t, err)

	// Act
	_, err = med.Send(context.Background(), &countCommand{})

	// Assert
	var unregistered *mediator.UnregisteredRequestTypeError
	require.ErrorAs(t, err, &unregistered)
	assert.Contains(t, err.Error(), "countCommand")
	assert.Equal(t, mediator.TaxonomyUnregisteredRequestType, mediator.TaxonomyOf(err))
	assert.Empty(t, trace.Events(), "no decorator may run for an unregistered type")
}

func TestMediator_SendNilRequest(t *testing.T) {
	med, err := mediator.NewBuilder().Build()
	require.NoError(t, err)

	_, err = med.Send(context.Background(), nil)

	var unregistered *mediator.UnregisteredRequestTypeError
	require.ErrorAs(t, err, &unregistered)
	assert.EqualError(t, err, "request cannot be nil")
}

func TestMediator_DecoratorOrder(t *testing.T) {
	// Arrange
	trace := helpers.NewTrace()
	b := mediator.NewBuilder().UseDefaults(trace.Decorator("A"), trace.Decorator("B"))
	mediator.RegisterHandler(b, pingHandler(trace))
	med, err := b.Build()
	require.NoError(t, err)

	expected := []string{"A-before", "B-before", "inner", "B-after", "A-after"}

	for i := 0; i < 3; i++ {
		trace.Reset()

		// Act
		_, err := mediator.Dispatch(context.Background(), med, &pingQuery{})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, expected, trace.Events())
	}
}

func TestMediator_TypeSpecificListReplacesDefaults(t *testing.T) {
	trace := helpers.NewTrace()
	b := mediator.NewBuilder().UseDefaults(trace.Decorator("default"))
	mediator.RegisterHandler(b, pingHandler(trace))
	mediator.Decorate[*pingQuery](b, trace.Decorator("specific"))
	med, err := b.Build()
	require.NoError(t, err)

	_, err = mediator.Dispatch(context.Background(), med, &pingQuery{})

	require.NoError(t, err)
	assert.Equal(t, []string{"specific-before", "inner", "specific-after"}, trace.Events())
}

func TestMediator_EmptyTypeSpecificListDisablesDefaults(t *testing.T) {
	trace := helpers.NewTrace()
	b := mediator.NewBuilder().UseDefaults(trace.Decorator("default"))
	mediator.RegisterHandler(b, pingHandler(trace))
	mediator.Decorate[*pingQuery](b)
	med, err := b.Build()
	require.NoError(t, err)

	_, err = mediator.Dispatch(context.Background(), med, &pingQuery{})

	require.NoError(t, err)
	assert.Equal(t, []string{"inner"}, trace.Events())
}

func TestMediator_OverrideByNameWins(t *testing.T) {
	trace := helpers.NewTrace()
	b := mediator.NewBuilder().UseDefaults(trace.Decorator("default"))
	mediator.RegisterHandler(b, pingHandler(trace))
	mediator.Decorate[*pingQuery](b, trace.Decorator("specific"))
	b.Override("pingQuery", trace.Decorator("override"))
	med, err := b.Build()
	require.NoError(t, err)

	_, err = mediator.Dispatch(context.Background(), med, &pingQuery{})

	require.NoError(t, err)
	assert.Equal(t, []string{"override-before", "inner", "override-after"}, trace.Events())
}

func TestMediator_NilDecoratorIsSkipped(t *testing.T) {
	trace := helpers.NewTrace()
	skip := func(d mediator.Descriptor) mediator.Decorator { return nil }
	b := mediator.NewBuilder().UseDefaults(trace.Decorator("A"), skip, trace.Decorator("B"))
	mediator.RegisterHandler(b, pingHandler(trace))
	med, err := b.Build()
	require.NoError(t, err)

	_, err = mediator.Dispatch(context.Background(), med, &pingQuery{})

	require.NoError(t, err)
	assert.Equal(t, []string{"A-before", "B-before", "inner", "B-after", "A-after"}, trace.Events())
}

func TestMediator_DescriptorCarriesTypeAndValidators(t *testing.T) {
	var seen mediator.Descriptor
	capture := func(d mediator.Descriptor) mediator.Decorator {
		seen = d
		return nil
	}
	validator := mediator.ValidatorFunc[*pingQuery](func(ctx context.Context, q *pingQuery) ([]mediator.FieldError, error) {
		return nil, nil
	})

	b := mediator.NewBuilder().UseDefaults(capture)
	mediator.RegisterHandler(b, pingHandler(nil))
	mediator.AddValidators[*pingQuery](b, validator)
	_, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, "pingQuery", seen.Name)
	assert.Equal(t, "*mediator_test.pingQuery", seen.Type.String())
	assert.Len(t, seen.Validators, 1)
}

func TestMediator_RebuildIsIdempotent(t *testing.T) {
	// Arrange
	trace := helpers.NewTrace()
	b := mediator.NewBuilder().UseDefaults(trace.Decorator("A"), trace.Decorator("B"))
	mediator.RegisterHandler(b, pingHandler(trace))

	first, err := b.Build()
	require.NoError(t, err)
	second, err := b.Build()
	require.NoError(t, err)

	// Act
	r1, err := mediator.Dispatch(context.Background(), first, &pingQuery{Name: "x"})
	require.NoError(t, err)
	firstTrace := trace.Events()
	trace.Reset()
	r2, err := mediator.Dispatch(context.Background(), second, &pingQuery{Name: "x"})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, r1, r2)
	assert.Equal(t, firstTrace, trace.Events())
}

func TestMediator_HandlerFailurePassesThroughUnchanged(t *testing.T) {
	boom := errors.New("boom")
	b := mediator.NewBuilder()
	mediator.RegisterHandler[*countCommand, int](b, mediator.HandleFunc[*countCommand, int](func(ctx context.Context, c *countCommand) (int, error) {
		return 0, boom
	}))
	med, err := b.Build()
	require.NoError(t, err)

	_, err = mediator.Dispatch(context.Background(), med, &countCommand{})

	assert.Same(t, boom, err)
}

func TestMediator_CancelledContext(t *testing.T) {
	trace := helpers.NewTrace()
	b := mediator.NewBuilder().UseDefaults(trace.Decorator("A"))
	mediator.RegisterHandler(b, pingHandler(trace))
	med, err := b.Build()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = mediator.Dispatch(ctx, med, &pingQuery{})

	var cancelled *mediator.CancelledError
	require.ErrorAs(t, err, &cancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, trace.Events())
}

func TestMediator_UnexpectedResultType(t *testing.T) {
	replace := func(d mediator.Descriptor) mediator.Decorator {
		return func(ctx context.Context, request any, next mediator.HandlerFunc) (mediator.Response, error) {
			return 42, nil
		}
	}
	b := mediator.NewBuilder().UseDefaults(replace)
	mediator.RegisterHandler(b, pingHandler(nil))
	med, err := b.Build()
	require.NoError(t, err)

	_, err = mediator.Dispatch(context.Background(), med, &pingQuery{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected result type")
}

func TestMediator_RoutesAndHandles(t *testing.T) {
	b := mediator.NewBuilder()
	mediator.RegisterHandler(b, pingHandler(nil))
	mediator.RegisterHandler[*countCommand, int](b, mediator.HandleFunc[*countCommand, int](func(ctx context.Context, c *countCommand) (int, error) {
		return 1, nil
	}))
	med, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"countCommand", "pingQuery"}, med.Routes())
	assert.True(t, med.Handles(&pingQuery{}))
	assert.False(t, med.Handles(&orphanQuery{}))
	assert.False(t, med.Handles(pingQuery{}), "value and pointer types are distinct identities")
}

func TestMediator_ConcurrentDispatch(t *testing.T) {
	b := mediator.NewBuilder()
	mediator.RegisterHandler(b, pingHandler(nil))
	med, err := b.Build()
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := mediator.Dispatch(context.Background(), med, &pingQuery{Name: "n"}); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("unexpected dispatch error: %v", err)
	}
}

func TestLive_SwapRoutesNewDispatches(t *testing.T) {
	// Arrange
	oldBuilder := mediator.NewBuilder()
	mediator.RegisterHandler(oldBuilder, pingHandler(nil))
	oldMed, err := oldBuilder.Build()
	require.NoError(t, err)

	newBuilder := mediator.NewBuilder()
	mediator.RegisterHandler[*pingQuery, string](newBuilder, mediator.HandleFunc[*pingQuery, string](func(ctx context.Context, q *pingQuery) (string, error) {
		return "v2", nil
	}))
	newMed, err := newBuilder.Build()
	require.NoError(t, err)

	live := mediator.NewLive(oldMed)

	// Act
	before, err := mediator.Dispatch(context.Background(), live, &pingQuery{Name: "a"})
	require.NoError(t, err)
	previous := live.Swap(newMed)
	after, err := mediator.Dispatch(context.Background(), live, &pingQuery{Name: "a"})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, "pong a", before)
	assert.Equal(t, "v2", after)
	assert.Same(t, oldMed, previous)
	assert.Same(t, newMed, live.Current())
	assert.Same(t, newMed, live.Swap(nil), "nil swap keeps the current mediator")
}

func TestLive_EmptyHolder(t *testing.T) {
	live := mediator.NewLive(nil)

	_, err := live.Send(context.Background(), &pingQuery{})

	var unregistered *mediator.UnregisteredRequestTypeError
	assert.ErrorAs(t, err, &unregistered)
}
