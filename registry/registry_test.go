package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/devflow/tool"
	"github.com/zero-day-ai/devflow/toolerr"
)

type emptyRequest struct{}

func named(name string) tool.Tool {
	return tool.Define(name, "tool "+name, func(ctx context.Context, req emptyRequest) (*tool.Result, error) {
		return tool.Text(name), nil
	})
}

func TestNew_PreservesRegistrationOrder(t *testing.T) {
	r, err := New(named("b"), named("a"), named("c"))
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a", "c"}, r.Names())
	assert.Equal(t, 3, r.Len())

	list := r.List()
	require.Len(t, list, 3)
	assert.Equal(t, "b", list[0].Name)
	assert.Equal(t, "tool b", list[0].Description)
	assert.Equal(t, "object", list[0].InputSchema.Type)
}

func TestList_IsStable(t *testing.T) {
	r, err := New(named("get_commit_title"), named("commit_plan"))
	require.NoError(t, err)

	first := r.List()
	first[0].Name = "mutated"

	second := r.List()
	third := r.List()
	assert.Equal(t, second, third)
	assert.Equal(t, "get_commit_title", second[0].Name)
}

func TestNew_RejectsInvalidTools(t *testing.T) {
	_, err := New(named("a"), named("a"))
	require.Error(t, err)
	assert.Equal(t, toolerr.ErrCodeDuplicateTool, toolerr.Code(err))

	_, err = New(named("a"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "position 1 is nil")
}

func TestResolve(t *testing.T) {
	r, err := New(named("commit_plan"))
	require.NoError(t, err)

	got, err := r.Resolve("commit_plan")
	require.NoError(t, err)
	assert.Equal(t, "commit_plan", got.Name())

	_, err = r.Resolve("git_reset")
	require.Error(t, err)
	assert.ErrorIs(t, err, toolerr.ErrToolNotFound)
	assert.True(t, toolerr.IsValidation(err))
	assert.Contains(t, err.Error(), `tool "git_reset" not found`)
}

func TestEmptyRegistry(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	assert.Empty(t, r.List())
	assert.NotNil(t, r.List())
}
