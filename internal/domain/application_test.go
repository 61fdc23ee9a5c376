package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplicationStatusTerminal(t *testing.T) {
	assert.True(t, ApplicationStatusApproved.Terminal())
	assert.True(t, ApplicationStatusRejected.Terminal())
	assert.False(t, ApplicationStatusOpen.Terminal())
	assert.False(t, ApplicationStatusSubmitted.Terminal())
}

func TestApplicationStatusNonTerminal(t *testing.T) {
	assert.True(t, ApplicationStatusOpen.NonTerminal())
	assert.True(t, ApplicationStatusSubmitted.NonTerminal())
	assert.False(t, ApplicationStatusApproved.NonTerminal())
	assert.False(t, ApplicationStatusRejected.NonTerminal())
}
