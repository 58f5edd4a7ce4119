package game

// PlayerID is the host's identifier for a connected client.
type PlayerID uint32

// EntityID identifies a ship, hostile or structure in the simulated world.
type EntityID uint32

// GroupID identifies a player group. Zero means "no group".
type GroupID uint32

// ZoneID names a bounded area of the world (a star system).
type ZoneID string

func containsPlayer(list []PlayerID, p PlayerID) bool {
	return indexOfPlayer(list, p) >= 0
}

func indexOfPlayer(list []PlayerID, p PlayerID) int {
	for i, id := range list {
		if id == p {
			return i
		}
	}
	return -1
}
