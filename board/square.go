package board

// A Square indexes one board cell, row-major from the top-left corner.
type Square int16

// NoSquare marks the location of a player that has not entered the board yet.
const NoSquare Square = -1
