package move

import (
	"testing"

	"github.com/matryer/is"

	"github.com/soledad-ai/soledad/board"
)

func TestEquals(t *testing.T) {
	is := is.New(t)
	is.True(New(3, 17).Equals(New(3, 17)))
	is.True(!New(3, 17).Equals(New(3, 18)))
	is.True(!New(3, 17).Equals(Placement(17)))
	is.True(Placement(17).IsPlacement())
	is.True(!New(3, 17).IsPlacement())
}

func TestShortDescription(t *testing.T) {
	is := is.New(t)
	g := board.MustGeometry(5, 5)
	is.Equal(New(g.Index(2, 1), g.Index(0, 2)).ShortDescription(g), "b3-c1")
	is.Equal(Placement(g.Index(4, 4)).ShortDescription(g), ">e5")
}
