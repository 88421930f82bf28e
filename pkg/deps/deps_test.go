package deps

import (
	"testing"

	"github.com/arthur-debert/loom/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndFinalize(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register("rack", "~> 3.0", GroupRuntime))
	require.NoError(t, reg.Register("rspec", "", GroupTest))

	decls := reg.Finalize()
	require.Len(t, decls, 2)
	assert.Equal(t, "rack", decls[0].Name)
	assert.Equal(t, "rspec", decls[1].Name)
}

func TestSameNameSameConstraintIsIdempotent(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register("pagy", "~> 9.0", GroupRuntime))
	require.NoError(t, reg.Register("pagy", "~> 9.0", GroupRuntime))

	decls := reg.Finalize()
	assert.Len(t, decls, 1)
}

func TestConflictingConstraintFails(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register("redis", "~> 5.0", GroupRuntime))
	err := reg.Register("redis", "~> 4.0", GroupRuntime)

	assert.True(t, errors.IsErrorCode(err, errors.ErrDuplicateDependency),
		"conflicting constraint should fail with DUPLICATE_DEPENDENCY, got %v", err)
}

func TestRegisterAfterFinalizeFails(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("pkgA", "1.0", GroupRuntime))

	reg.Finalize()

	err := reg.Register("pkgB", "1.0", GroupRuntime)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRegistryClosed),
		"register after finalize should fail with REGISTRY_CLOSED, got %v", err)
}

func TestFinalizeIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("rack", "~> 3.0", GroupRuntime))

	first := reg.Finalize()
	second := reg.Finalize()
	assert.Equal(t, first, second)
	assert.True(t, reg.Closed())
}

func TestFirstRegistrationOrderPreserved(t *testing.T) {
	reg := NewRegistry()
	names := []string{"zeta", "alpha", "mid"}
	for _, n := range names {
		require.NoError(t, reg.Register(n, "", GroupRuntime))
	}

	decls := reg.Finalize()
	for i, n := range names {
		assert.Equal(t, n, decls[i].Name)
	}
}

func TestEmptyNameRejected(t *testing.T) {
	reg := NewRegistry()
	err := reg.Register("", "1.0", GroupRuntime)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestParseGroup(t *testing.T) {
	g, err := ParseGroup("")
	require.NoError(t, err)
	assert.Equal(t, GroupRuntime, g)

	g, err = ParseGroup("development")
	require.NoError(t, err)
	assert.Equal(t, GroupDevelopment, g)

	_, err = ParseGroup("optional")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}
