package errtrace_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utkarsh5026/errtrace/pkg/errtrace"
	"github.com/utkarsh5026/errtrace/pkg/future"
)

func TestDefaultConfig(t *testing.T) {
	cfg := errtrace.DefaultConfig()
	require.NotNil(t, cfg.Annotator)
	require.NotNil(t, cfg.IsDeferred)
	require.NotNil(t, cfg.MethodName)

	assert.Equal(t, "Account.Withdraw", cfg.MethodName("Account", "Withdraw"))

	_, ok := cfg.IsDeferred(future.Resolved(1))
	assert.True(t, ok)
	_, ok = cfg.IsDeferred(42)
	assert.False(t, ok)
	_, ok = cfg.IsDeferred(nil)
	assert.False(t, ok)
}

func TestConfigureShallowMerge(t *testing.T) {
	restoreConfig(t)

	errtrace.Configure(errtrace.Config{
		MethodName: func(typeName, method string) string { return method + "@" + typeName },
	})
	cfg := errtrace.CurrentConfig()
	assert.Equal(t, "Withdraw@Account", cfg.MethodName("Account", "Withdraw"))
	require.NotNil(t, cfg.Annotator, "fields left nil keep their value")
	require.NotNil(t, cfg.IsDeferred)

	got := cfg.Annotator("Foo.bar", errors.New("x"))
	assert.Equal(t, []string{"Foo.bar"}, errtrace.FramesOf(got), "annotator is still the default")

	errtrace.Configure(errtrace.Config{
		Annotator: func(name string, err error) error { return err },
	})
	cfg = errtrace.CurrentConfig()
	assert.Equal(t, "Withdraw@Account", cfg.MethodName("Account", "Withdraw"), "earlier fields survive later merges")
}

func TestResetConfig(t *testing.T) {
	errtrace.Configure(errtrace.Config{
		MethodName: func(typeName, method string) string { return "custom" },
	})
	errtrace.ResetConfig()

	assert.Equal(t, "Dog.Bark", errtrace.CurrentConfig().MethodName("Dog", "Bark"))
}

func TestCurrentConfigIsACopy(t *testing.T) {
	restoreConfig(t)

	cfg := errtrace.CurrentConfig()
	cfg.MethodName = func(string, string) string { return "mutated" }

	assert.Equal(t, "A.b", errtrace.CurrentConfig().MethodName("A", "b"))
}
