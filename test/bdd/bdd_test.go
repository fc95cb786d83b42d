package bdd

import (
	"os"
	"testing"

	"github.com/cucumber/godog"
	"github.com/joho/godotenv"
)

func TestMain(m *testing.M) {
	// Load .env.test if present, else .env. Overload so test values always
	// win over any shell/CI env.
	if _, err := os.Stat(".env.test"); err == nil {
		_ = godotenv.Overload(".env.test")
	} else {
		_ = godotenv.Overload()
	}
	// A decodable base64(user:password) pair; no real credential is needed
	// because every scenario talks to a local test server.
	if os.Getenv("PAYSAFE_API_KEY") == "" {
		_ = os.Setenv("PAYSAFE_API_KEY", "YmRkLXVzZXI6YmRkLXNlY3JldA==")
	}
	os.Exit(m.Run())
}

func TestBDDFeatures(t *testing.T) {
	opts := godog.Options{
		Format: "pretty",
		Paths:  []string{"features"},
		Strict: true,
	}

	suite := godog.TestSuite{
		Name: "paysafe-go",
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			world := NewCheckoutWorld(t)
			world.Register(sc)
		},
		Options: &opts,
	}

	if suite.Run() != 0 {
		t.Fail()
	}
}
