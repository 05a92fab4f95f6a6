package game

import (
	"testing"

	"github.com/matryer/is"

	"github.com/soledad-ai/soledad/board"
)

func TestToDisplayText(t *testing.T) {
	is := is.New(t)
	g := board.MustGeometry(3, 3)
	var occ board.Bitboard
	occ.Set(1)
	s, err := NewStateFromPosition(g, occ, 0, 8, Player2)
	is.NoErr(err)

	want := "   a b c\n" +
		" 1 1 # .\n" +
		" 2 . . .\n" +
		" 3 . . 2\n" +
		"p1: a1  p2: c3  p2 to move  ply 3\n"
	is.Equal(s.ToDisplayText(), want)
}

func TestStateString(t *testing.T) {
	is := is.New(t)
	g := board.MustGeometry(3, 3)
	var occ board.Bitboard
	s, err := NewStateFromPosition(g, occ, 0, board.NoSquare, Player2)
	is.NoErr(err)
	is.Equal(s.String(), "<state p1:a1 p2:- onturn:p2 ply:1 blocked:[a1]>")
}
