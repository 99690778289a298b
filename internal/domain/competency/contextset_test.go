package competency_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ganot/skillkeeper/internal/domain/competency"
)

func TestNewContextSetNormalizes(t *testing.T) {
	set := competency.NewContextSet("rat", "mouse", "rat", "", "mouse")
	require.Equal(t, competency.ContextSet{"mouse", "rat"}, set)

	require.Nil(t, competency.NewContextSet())
	require.Nil(t, competency.NewContextSet("", ""))
}

func TestContextSetEqual(t *testing.T) {
	a := competency.NewContextSet("mouse", "rat")
	b := competency.NewContextSet("rat", "mouse")
	require.True(t, a.Equal(b))

	// Subsets and supersets never match
	sub := competency.NewContextSet("mouse")
	super := competency.NewContextSet("mouse", "rat", "zebrafish")
	require.False(t, a.Equal(sub))
	require.False(t, a.Equal(super))

	// The empty set only equals itself
	require.True(t, competency.NewContextSet().Equal(nil))
	require.False(t, a.Equal(nil))
}

func TestContextSetKeyAndContains(t *testing.T) {
	set := competency.NewContextSet("rat", "mouse")
	require.Equal(t, "mouse|rat", set.Key())
	require.True(t, set.Contains("rat"))
	require.False(t, set.Contains("zebrafish"))

	require.True(t, competency.ContextSet(nil).Empty())
	require.Equal(t, "", competency.ContextSet(nil).Key())
}
