package overrides

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deep-agent/pkg/database"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	service, err := NewService(db, nil)
	require.NoError(t, err)
	return service
}

func validRequest() *database.SaveOverrideRequest {
	return &database.SaveOverrideRequest{
		AgentName:       "research_agent",
		ImprovedPrompt:  "be thorough",
		ChangeReason:    "quality below threshold",
		ConfidenceScore: 0.85,
	}
}

func TestNewService_RequiresDatabase(t *testing.T) {
	_, err := NewService(nil, nil)
	require.Error(t, err)

	var configErr *ConfigurationError
	assert.ErrorAs(t, err, &configErr)
}

func TestSave_Valid(t *testing.T) {
	service := newTestService(t)

	override, err := service.Save(context.Background(), validRequest())
	require.NoError(t, err)
	assert.True(t, override.IsActive)
	assert.Equal(t, "research_agent", override.AgentName)
}

func TestSave_Validation(t *testing.T) {
	service := newTestService(t)

	cases := []struct {
		name   string
		mutate func(*database.SaveOverrideRequest)
		field  string
	}{
		{"missing agent name", func(r *database.SaveOverrideRequest) { r.AgentName = "" }, "agent_name"},
		{"missing prompt", func(r *database.SaveOverrideRequest) { r.ImprovedPrompt = "" }, "improved_prompt"},
		{"missing reason", func(r *database.SaveOverrideRequest) { r.ChangeReason = "" }, "change_reason"},
		{"confidence too low", func(r *database.SaveOverrideRequest) { r.ConfidenceScore = -0.1 }, "confidence_score"},
		{"confidence too high", func(r *database.SaveOverrideRequest) { r.ConfidenceScore = 1.1 }, "confidence_score"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(req)

			_, err := service.Save(context.Background(), req)
			require.Error(t, err)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tc.field, validationErr.Field)
		})
	}
}

func TestSave_NilRequest(t *testing.T) {
	service := newTestService(t)

	_, err := service.Save(context.Background(), nil)
	require.Error(t, err)
}

func TestActive_AbsenceIsNotAnError(t *testing.T) {
	service := newTestService(t)

	override, err := service.Active(context.Background(), "research_agent")
	require.NoError(t, err)
	assert.Nil(t, override)
}

func TestActive_ReturnsNewestSave(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	_, err := service.Save(ctx, validRequest())
	require.NoError(t, err)

	second := validRequest()
	second.ImprovedPrompt = "be thorough and cite sources"
	_, err = service.Save(ctx, second)
	require.NoError(t, err)

	active, err := service.Active(ctx, "research_agent")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "be thorough and cite sources", active.ImprovedPrompt)
}

func TestRemove(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	_, err := service.Save(ctx, validRequest())
	require.NoError(t, err)

	removed, err := service.Remove(ctx, "research_agent")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = service.Remove(ctx, "research_agent")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestInstructionFor_OverrideSupersedesDefault(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	instruction := service.InstructionFor(ctx, "research_agent", "default prompt")
	assert.Equal(t, "default prompt", instruction)

	_, err := service.Save(ctx, validRequest())
	require.NoError(t, err)

	instruction = service.InstructionFor(ctx, "research_agent", "default prompt")
	assert.Equal(t, "be thorough", instruction)
}

func TestInstructionFor_FallsBackAfterRemoval(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	_, err := service.Save(ctx, validRequest())
	require.NoError(t, err)
	_, err = service.Remove(ctx, "research_agent")
	require.NoError(t, err)

	instruction := service.InstructionFor(ctx, "research_agent", "default prompt")
	assert.Equal(t, "default prompt", instruction)
}
