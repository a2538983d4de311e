package bdd

import (
	"testing"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/mediator-go/test/bdd/steps"
)

func runFeature(t *testing.T, path string, initialize func(*godog.ScenarioContext)) {
	t.Helper()
	suite := godog.TestSuite{
		ScenarioInitializer: initialize,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{path},
			Strict:   true,
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatalf("non-zero status returned, failed to run %s", path)
	}
}

func TestDispatchPipeline(t *testing.T) {
	runFeature(t, "features/application/dispatch_pipeline.feature", steps.InitializeDispatchPipelineScenario)
}

func TestCreateUser(t *testing.T) {
	runFeature(t, "features/application/create_user.feature", steps.InitializeCreateUserScenario)
}
