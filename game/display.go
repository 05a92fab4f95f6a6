package game

import (
	"fmt"
	"strings"
)

// ToDisplayText renders the state as a monospaced grid. Player squares show
// as 1 and 2, other blocked cells as #, open cells as dots.
func (s State) ToDisplayText() string {
	var sb strings.Builder
	header := "   "
	for c := 0; c < s.geo.Width(); c++ {
		header += fmt.Sprintf("%c ", 'a'+c)
	}
	sb.WriteString(strings.TrimRight(header, " "))
	sb.WriteByte('\n')
	for r := 0; r < s.geo.Height(); r++ {
		sb.WriteString(fmt.Sprintf("%2d ", r+1))
		for c := 0; c < s.geo.Width(); c++ {
			sq := s.geo.Index(r, c)
			ch := "."
			switch {
			case sq == s.locs[Player1]:
				ch = "1"
			case sq == s.locs[Player2]:
				ch = "2"
			case s.occupied.Test(sq):
				ch = "#"
			}
			sb.WriteString(ch)
			if c < s.geo.Width()-1 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(fmt.Sprintf("p1: %s  p2: %s  %s to move  ply %d\n",
		s.geo.SquareName(s.locs[Player1]), s.geo.SquareName(s.locs[Player2]),
		s.onturn, s.ply))
	if s.Terminal() {
		sb.WriteString(fmt.Sprintf("game over, %s wins\n", s.onturn.Opponent()))
	}
	return sb.String()
}

// String is a compact one-line form for logs.
func (s State) String() string {
	blocked := make([]string, 0, s.occupied.Count())
	for _, sq := range s.occupied.Squares() {
		blocked = append(blocked, s.geo.SquareName(sq))
	}
	return fmt.Sprintf("<state p1:%s p2:%s onturn:%s ply:%d blocked:[%s]>",
		s.geo.SquareName(s.locs[Player1]), s.geo.SquareName(s.locs[Player2]),
		s.onturn, s.ply, strings.Join(blocked, " "))
}
