package listing_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/chore/internal/core/domain"
	"go.trai.ch/chore/internal/ui/listing"
)

func TestWrite_PythonRecipe(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	g := domain.NewGraph()
	for _, c := range domain.PythonRecipe() {
		require.NoError(t, g.AddCommand(&c))
	}

	var buf bytes.Buffer
	require.NoError(t, listing.Write(&buf, g))

	gold := goldie.New(t)
	gold.Assert(t, "python_recipe", buf.Bytes())
}

func TestWrite_SortedAndAligned(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	g := domain.NewGraph()
	for _, c := range []domain.Command{
		{Name: domain.NewInternedString("zeta"), Description: "Last"},
		{Name: domain.NewInternedString("a"), Description: "First"},
		{Name: domain.NewInternedString("middle")},
	} {
		require.NoError(t, g.AddCommand(&c))
	}

	var buf bytes.Buffer
	require.NoError(t, listing.Write(&buf, g))

	assert.Equal(t, "Available commands:\n  a       First\n  middle\n  zeta    Last\n", buf.String())
}

func TestWrite_EmptyGraph(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	require.NoError(t, listing.Write(&buf, domain.NewGraph()))
	assert.Equal(t, "Available commands:\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestWrite_PropagatesWriteError(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	err := listing.Write(failingWriter{}, domain.NewGraph())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed pipe")
}
