package core_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhijit1892/ragdemo/core"
)

func TestStateWithPassagesCopies(t *testing.T) {
	src := []core.Passage{{Text: "a", SourceLabel: "s1", Score: 0.9}}
	s0 := core.NewState("q")
	s1 := s0.WithPassages(src)

	src[0].Text = "mutated"
	assert.Equal(t, "a", s1.RetrievedPassages[0].Text)
	assert.Nil(t, s0.RetrievedPassages)
	assert.Equal(t, "q", s1.Question)
	assert.Empty(t, s1.Answer)
}

func TestStateWithAnswerLeavesReceiver(t *testing.T) {
	s1 := core.NewState("q").WithPassages([]core.Passage{{Text: "a"}})
	s2 := s1.WithAnswer("ans")

	assert.Empty(t, s1.Answer)
	assert.Equal(t, "ans", s2.Answer)

	s2.RetrievedPassages[0].Text = "changed"
	assert.Equal(t, "a", s1.RetrievedPassages[0].Text)
}

func TestValidateMessages(t *testing.T) {
	tests := []struct {
		name    string
		msgs    []core.Message
		wantErr bool
	}{
		{"empty", nil, true},
		{"system only", []core.Message{core.NewSystemMessage("x")}, true},
		{"unknown role", []core.Message{{Role: "tool", Content: "x"}, core.NewUserMessage("q")}, true},
		{"system and user", []core.Message{core.NewSystemMessage("x"), core.NewUserMessage("q")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := core.ValidateMessages(tt.msgs)
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrInvalidRequest)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestModelConfigValidate(t *testing.T) {
	assert.NoError(t, core.DefaultModelConfig("m").Validate())
	assert.ErrorIs(t, core.DefaultModelConfig("m").WithTemperature(2.5).Validate(), core.ErrInvalidRequest)
	assert.ErrorIs(t, core.DefaultModelConfig("m").WithTemperature(-0.1).Validate(), core.ErrInvalidRequest)
	assert.ErrorIs(t, core.DefaultModelConfig("m").WithMaxTokens(0).Validate(), core.ErrInvalidRequest)
}

func TestPipelineErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("run: %w", core.NewPipelineError("execute", "generate", core.ErrServiceUnavailable))

	assert.ErrorIs(t, err, core.ErrServiceUnavailable)
	node, ok := core.FailedNode(err)
	require.True(t, ok)
	assert.Equal(t, "generate", node)
	assert.Contains(t, err.Error(), "[node=generate]")

	_, ok = core.FailedNode(errors.New("plain"))
	assert.False(t, ok)
}

func TestMissingCredentialIsAuthentication(t *testing.T) {
	assert.ErrorIs(t, core.ErrMissingCredential, core.ErrAuthentication)
}
