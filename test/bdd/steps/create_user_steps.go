package steps

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/cucumber/godog"
	"github.com/google/uuid"

	"github.com/andrescamacho/mediator-go/internal/application/mediator"
	"github.com/andrescamacho/mediator-go/internal/application/setup"
	"github.com/andrescamacho/mediator-go/internal/application/user/commands"
	"github.com/andrescamacho/mediator-go/internal/application/user/queries"
	"github.com/andrescamacho/mediator-go/internal/domain/shared"
	"github.com/andrescamacho/mediator-go/internal/domain/user"
	"github.com/andrescamacho/mediator-go/internal/infrastructure/config"
	"github.com/andrescamacho/mediator-go/test/helpers"
)

type createUserContext struct {
	repo    *helpers.MockUserRepository
	logger  *helpers.RecordingLogger
	clock   *shared.MockClock
	med     *mediator.Mediator
	stored  int
	id      uuid.UUID
	fetched *queries.UserDTO
	err     error
}

func (cuc *createUserContext) reset() {
	cuc.repo = helpers.NewMockUserRepository()
	cuc.logger = helpers.NewRecordingLogger()
	cuc.clock = shared.NewMockClock(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	cuc.med = nil
	cuc.stored = 0
	cuc.id = uuid.Nil
	cuc.fetched = nil
	cuc.err = nil
}

// Given steps

func (cuc *createUserContext) theUserPipelineWithDecorators(table *godog.Table) error {
	med, err := setup.BuildMediator(
		config.DispatchConfig{Decorators: column(table, "name")},
		setup.NewHandlerRegistry(cuc.repo, cuc.clock),
		setup.PipelineDeps{Logger: cuc.logger, Clock: cuc.clock},
	)
	if err != nil {
		return err
	}
	cuc.med = med
	return nil
}

func (cuc *createUserContext) aUserExists(first, last, email string) error {
	u, err := user.NewUser(first, last, email, cuc.clock)
	if err != nil {
		return err
	}
	cuc.repo.Seed(u)
	cuc.clock.Advance(time.Second)
	return nil
}

func (cuc *createUserContext) theUserRepositoryIsDown() error {
	cuc.repo.GoDown(errors.New("connection refused"))
	return nil
}

// When steps

func (cuc *createUserContext) iCreateAUser(first, last, email string) error {
	cuc.stored = cuc.repo.Count()
	cuc.logger.Reset()
	cuc.id, cuc.err = mediator.Dispatch(context.Background(), cuc.med, commands.NewCreateUserCommand(first, last, email))
	return nil
}

func (cuc *createUserContext) iGetTheCreatedUser() error {
	if cuc.err != nil {
		return fmt.Errorf("user was not created: %w", cuc.err)
	}
	cuc.fetched, cuc.err = mediator.Dispatch(context.Background(), cuc.med, queries.NewGetUserQuery(cuc.id.String()))
	return nil
}

// Then steps

func (cuc *createUserContext) theUserShouldBeCreatedWithAnIdentifier() error {
	if cuc.err != nil {
		return fmt.Errorf("expected user to be created, got error: %v", cuc.err)
	}
	if cuc.id == uuid.Nil {
		return fmt.Errorf("expected a non-empty identifier")
	}
	return nil
}

func (cuc *createUserContext) exactlyLogObservationsShouldBeRecorded(count int) error {
	if got := len(cuc.logger.Entries()); got != count {
		return fmt.Errorf("expected %d log observations, got %d: %v", count, got, cuc.logger.Messages())
	}
	return nil
}

func (cuc *createUserContext) theLogObservationsShouldBe(table *godog.Table) error {
	expected := column(table, "message")
	if got := cuc.logger.Messages(); !reflect.DeepEqual(expected, got) {
		return fmt.Errorf("expected log messages %v, got %v", expected, got)
	}
	return nil
}

func (cuc *createUserContext) validationFailure() (*mediator.ValidationFailedError, error) {
	var failed *mediator.ValidationFailedError
	if !errors.As(cuc.err, &failed) {
		return nil, fmt.Errorf("expected validation failure, got %v", cuc.err)
	}
	return failed, nil
}

func (cuc *createUserContext) thereShouldBeValidationErrors(count int) error {
	failed, err := cuc.validationFailure()
	if err != nil {
		return err
	}
	if len(failed.Errors) != count {
		return fmt.Errorf("expected %d validation errors, got %d: %v", count, len(failed.Errors), failed.Errors)
	}
	return nil
}

func (cuc *createUserContext) theValidationErrorsShouldInclude(expected string) error {
	failed, err := cuc.validationFailure()
	if err != nil {
		return err
	}
	for _, fe := range failed.Errors {
		if fe.String() == expected {
			return nil
		}
	}
	return fmt.Errorf("expected validation error '%s', got %v", expected, failed.Errors)
}

func (cuc *createUserContext) theHandlerShouldNotHaveStoredAUser() error {
	if calls := cuc.repo.Calls("Add"); calls != 0 {
		return fmt.Errorf("expected no Add calls, got %d", calls)
	}
	if cuc.repo.Count() != cuc.stored {
		return fmt.Errorf("expected %d stored users, got %d", cuc.stored, cuc.repo.Count())
	}
	return nil
}

func (cuc *createUserContext) theUserEmailShouldBe(expected string) error {
	if cuc.err != nil {
		return fmt.Errorf("expected user lookup to succeed, got error: %v", cuc.err)
	}
	if cuc.fetched.Email != expected {
		return fmt.Errorf("expected email '%s', got '%s'", expected, cuc.fetched.Email)
	}
	return nil
}

func InitializeCreateUserScenario(ctx *godog.ScenarioContext) {
	cuc := &createUserContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		cuc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^the user pipeline with decorators:$`, cuc.theUserPipelineWithDecorators)
	ctx.Step(`^a user "([^"]*)" "([^"]*)" with email "([^"]*)" exists$`, cuc.aUserExists)
	ctx.Step(`^the user repository is down$`, cuc.theUserRepositoryIsDown)

	// When steps
	ctx.Step(`^I create a user "([^"]*)" "([^"]*)" with email "([^"]*)"$`, cuc.iCreateAUser)
	ctx.Step(`^I get the created user$`, cuc.iGetTheCreatedUser)

	// Then steps
	ctx.Step(`^the user should be created with an identifier$`, cuc.theUserShouldBeCreatedWithAnIdentifier)
	ctx.Step(`^exactly (\d+) log observations should be recorded$`, cuc.exactlyLogObservationsShouldBeRecorded)
	ctx.Step(`^the log observations should be:$`, cuc.theLogObservationsShouldBe)
	ctx.Step(`^there should be (\d+) validation errors$`, cuc.thereShouldBeValidationErrors)
	ctx.Step(`^the validation errors should include "([^"]*)"$`, cuc.theValidationErrorsShouldInclude)
	ctx.Step(`^the handler should not have stored a user$`, cuc.theHandlerShouldNotHaveStoredAUser)
	ctx.Step(`^the user email should be "([^"]*)"$`, cuc.theUserEmailShouldBe)
	ctx.Step(`^the dispatch should fail with taxonomy "([^"]*)"$`, func(expected string) error {
		return expectTaxonomy(cuc.err, expected)
	})
}
