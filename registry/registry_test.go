package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Registry_ResolveCachesInstance(t *testing.T) {
	r := New()
	calls := 0
	r.Register("lang-a", ServiceNameProvider, func(*Registry) (any, error) {
		calls++
		return "provider", nil
	})

	first, err := r.Resolve("lang-a", ServiceNameProvider)
	require.NoError(t, err)
	second, err := r.Resolve("lang-a", ServiceNameProvider)
	require.NoError(t, err)

	assert.Equal(t, "provider", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func Test_Registry_ResolveUnknownService(t *testing.T) {
	r := New()
	_, err := r.Resolve("lang-a", ServiceHover)
	assert.Error(t, err)
}

func Test_Registry_ResolveIsPerLanguage(t *testing.T) {
	r := New()
	r.Register("lang-a", ServiceLinker, func(*Registry) (any, error) { return "a-linker", nil })
	r.Register("lang-b", ServiceLinker, func(*Registry) (any, error) { return "b-linker", nil })

	a, err := r.Resolve("lang-a", ServiceLinker)
	require.NoError(t, err)
	b, err := r.Resolve("lang-b", ServiceLinker)
	require.NoError(t, err)

	assert.Equal(t, "a-linker", a)
	assert.Equal(t, "b-linker", b)
}

func Test_Registry_DetectsCycle(t *testing.T) {
	r := New()
	r.Register("lang-a", ServiceLinker, func(reg *Registry) (any, error) {
		return reg.Resolve("lang-a", ServiceIndexManager)
	})
	r.Register("lang-a", ServiceIndexManager, func(reg *Registry) (any, error) {
		return reg.Resolve("lang-a", ServiceLinker)
	})

	_, err := r.Resolve("lang-a", ServiceLinker)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cyclic")
}

func Test_Registry_FactoryErrorNotCached(t *testing.T) {
	r := New()
	calls := 0
	r.Register("lang-a", ServiceHover, func(*Registry) (any, error) {
		calls++
		if calls == 1 {
			return nil, assert.AnError
		}
		return "hover-service", nil
	})

	_, err := r.Resolve("lang-a", ServiceHover)
	require.Error(t, err)

	v, err := r.Resolve("lang-a", ServiceHover)
	require.NoError(t, err)
	assert.Equal(t, "hover-service", v)
	assert.Equal(t, 2, calls)
}
