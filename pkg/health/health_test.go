package health

import (
	"errors"
	"testing"

	"sentimentai/voice-server/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChecker() *Checker {
	return NewChecker(logger.New(logger.Config{Level: "error"}))
}

func TestCheckerSelfCheck(t *testing.T) {
	c := newTestChecker()
	c.RunChecks()

	components := c.Components()
	require.Len(t, components, 1)
	assert.Equal(t, "self", components[0].Name)
	assert.Equal(t, StatusUp, components[0].Status)
	assert.True(t, c.Healthy())
}

func TestCheckerFailingComponent(t *testing.T) {
	c := newTestChecker()
	c.RegisterCheck("upstream", func() (Status, string, error) {
		return StatusDown, "unreachable", errors.New("dial timeout")
	})

	c.RunChecks()
	assert.False(t, c.Healthy())

	for _, component := range c.Components() {
		if component.Name == "upstream" {
			assert.Equal(t, StatusDown, component.Status)
			assert.Equal(t, "dial timeout", component.Error)
		}
	}
}

func TestCheckerDegradedStillHealthy(t *testing.T) {
	c := newTestChecker()
	c.RegisterCheck("cache", func() (Status, string, error) {
		return StatusDegraded, "slow", nil
	})

	c.RunChecks()
	assert.True(t, c.Healthy(), "degraded components do not fail the health endpoint")
}

func TestCheckerUncheckedComponentIsDown(t *testing.T) {
	c := newTestChecker()
	c.RegisterCheck("upstream", func() (Status, string, error) {
		return StatusUp, "", nil
	})

	// Before the first run a registered component counts as down.
	assert.False(t, c.Healthy())
}
