// Package candycrush implements the match-three swap variant.
//
// Board owns the candy grid. A click selects a cell; clicking an orthogonal
// neighbour swaps the two candies and keeps the swap only when it creates a
// run of three or more. RemoveAndSettle clears the matched cells, lets the
// columns fall, refills from the top and rescans, so a caller can loop on
// HasMatches to resolve a cascade.
//
// Game is the controller. It scores each cascade pass with an increasing
// multiplier, keeps a countdown clock per player, passes the turn after
// every scoring move and ends the match when the active player's clock runs out.
package candycrush
