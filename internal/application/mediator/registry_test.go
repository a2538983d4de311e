package mediator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/mediator-go/internal/application/mediator"
	"github.com/andrescamacho/mediator-go/test/helpers"
)

type anyRequest interface {
	mediator.Request[string]
}

func bindingErrors(t *testing.T, err error) []*mediator.BindingError {
	t.Helper()
	require.Error(t, err)

	var found []*mediator.BindingError
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			var be *mediator.BindingError
			if errors.As(e, &be) {
				found = append(found, be)
			}
		}
	}
	return found
}

func TestBuilder_DuplicateHandler(t *testing.T) {
	// Arrange
	b := mediator.NewBuilder()
	mediator.RegisterHandler(b, pingHandler(nil))
	mediator.RegisterHandler(b, pingHandler(nil))

	// Act
	med, err := b.Build()

	// Assert
	assert.Nil(t, med)
	found := bindingErrors(t, err)
	require.Len(t, found, 1)
	assert.Contains(t, found[0].Reason, "2 handlers registered")
	assert.Equal(t, mediator.TaxonomyBindingError, mediator.TaxonomyOf(err))
}

func TestBuilder_DecoratorsWithoutHandler(t *testing.T) {
	trace := helpers.NewTrace()
	b := mediator.NewBuilder()
	mediator.RegisterHandler(b, pingHandler(nil))
	mediator.Decorate[*orphanQuery](b, trace.Decorator("A"))

	_, err := b.Build()

	found := bindingErrors(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "*mediator_test.orphanQuery", found[0].RequestType.String())
	assert.Equal(t, "no handler registered", found[0].Reason)
}

func TestBuilder_ValidatorsWithoutHandler(t *testing.T) {
	b := mediator.NewBuilder()
	mediator.AddValidators[*orphanQuery](b, mediator.ValidatorFunc[*orphanQuery](func(ctx context.Context, q *orphanQuery) ([]mediator.FieldError, error) {
		return nil, nil
	}))

	_, err := b.Build()

	found := bindingErrors(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "no handler registered", found[0].Reason)
}

func TestBuilder_ReportsEveryProblem(t *testing.T) {
	b := mediator.NewBuilder()
	mediator.RegisterHandler(b, pingHandler(nil))
	mediator.RegisterHandler(b, pingHandler(nil))
	mediator.Decorate[*orphanQuery](b)
	mediator.RegisterHandler[*countCommand, int](b, nil)
	b.Override("missingQuery")

	_, err := b.Build()

	found := bindingErrors(t, err)
	assert.Len(t, found, 5, "duplicate, orphan, nil handler + missing handler, unknown override")
}

func TestBuilder_NilDecoratorFactory(t *testing.T) {
	b := mediator.NewBuilder().UseDefaults(nil)
	mediator.RegisterHandler(b, pingHandler(nil))

	_, err := b.Build()

	found := bindingErrors(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "decorator factory cannot be nil", found[0].Reason)
}

func TestBuilder_NilValidator(t *testing.T) {
	b := mediator.NewBuilder()
	mediator.RegisterHandler(b, pingHandler(nil))
	mediator.AddValidators[*pingQuery](b, nil)

	_, err := b.Build()

	found := bindingErrors(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "validator cannot be nil", found[0].Reason)
}

func TestBuilder_InterfaceRequestType(t *testing.T) {
	b := mediator.NewBuilder()
	mediator.Decorate[anyRequest](b)

	_, err := b.Build()

	found := bindingErrors(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "request type must be a concrete type", found[0].Reason)
}

func TestBuilder_EmptyBuildsEmptyMediator(t *testing.T) {
	med, err := mediator.NewBuilder().Build()

	require.NoError(t, err)
	assert.Empty(t, med.Routes())
}

func TestValidatorFunc_RejectsForeignRequest(t *testing.T) {
	v := mediator.ValidatorFunc[*pingQuery](func(ctx context.Context, q *pingQuery) ([]mediator.FieldError, error) {
		return nil, nil
	})

	_, err := v.Validate(context.Background(), &countCommand{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid request type")
}

func TestCatalog_Resolve(t *testing.T) {
	trace := helpers.NewTrace()
	catalog := mediator.NewCatalog().
		Add("a", trace.Decorator("A")).
		Add("b", trace.Decorator("B"))

	factories, err := catalog.Resolve("b", "a")
	require.NoError(t, err)

	b := mediator.NewBuilder().UseDefaults(factories...)
	mediator.RegisterHandler(b, pingHandler(trace))
	med, err := b.Build()
	require.NoError(t, err)

	_, err = mediator.Dispatch(context.Background(), med, &pingQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"B-before", "A-before", "inner", "A-after", "B-after"}, trace.Events())
	assert.Equal(t, []string{"a", "b"}, catalog.Names())
}

func TestCatalog_ResolveUnknown(t *testing.T) {
	catalog := mediator.NewCatalog().Add("a", helpers.NewTrace().Decorator("A"))

	_, err := catalog.Resolve("a", "nope", "other")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
	assert.Contains(t, err.Error(), "other")
}

func TestRequestName(t *testing.T) {
	assert.Equal(t, "pingQuery", mediator.NameOf(&pingQuery{}))
	assert.Equal(t, "pingQuery", mediator.NameOf(pingQuery{}))
	assert.Equal(t, "UnknownRequest", mediator.NameOf(nil))
}

func TestErrors_Taxonomy(t *testing.T) {
	cause := errors.New("disk on fire")
	unhandled := &mediator.UnhandledFailureError{Cause: cause}
	validation := &mediator.ValidationFailedError{Errors: []mediator.FieldError{
		{Field: "first_name", Message: "is required"},
		{Field: "email", Message: "must be a valid email address"},
	}}

	assert.ErrorIs(t, unhandled, cause)
	assert.Equal(t, mediator.TaxonomyUnhandledFailure, mediator.TaxonomyOf(unhandled))
	assert.Equal(t, "validation failed: first_name: is required; email: must be a valid email address", validation.Error())
	assert.True(t, mediator.IsClassified(validation))
	assert.False(t, mediator.IsClassified(cause))
	assert.Equal(t, "", mediator.TaxonomyOf(nil))
}

func TestMediator_OverrideMatchesLowerCasedName(t *testing.T) {
	trace := helpers.NewTrace()
	b := mediator.NewBuilder().UseDefaults(trace.Decorator("default"))
	mediator.RegisterHandler(b, pingHandler(trace))
	b.Override("pingquery", trace.Decorator("override"))
	med, err := b.Build()
	require.NoError(t, err)

	_, err = mediator.Dispatch(context.Background(), med, &pingQuery{})

	require.NoError(t, err)
	assert.Equal(t, []string{"override-before", "inner", "override-after"}, trace.Events())
}
