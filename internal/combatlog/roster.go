package combatlog

// Roster resolves actor ids for one report
type Roster struct {
	names   map[int]string
	byName  map[string]int
	players map[int]struct{}
	env     map[int]struct{}
}

// NewRoster indexes the actor table. When two actors share a name the first
// one wins the name lookup.
func NewRoster(actors []Actor) *Roster {
	r := &Roster{
		names:   make(map[int]string, len(actors)),
		byName:  make(map[string]int, len(actors)),
		players: make(map[int]struct{}),
		env:     make(map[int]struct{}),
	}
	for _, a := range actors {
		r.names[a.ID] = a.Name
		if _, exists := r.byName[a.Name]; !exists {
			r.byName[a.Name] = a.ID
		}
		switch a.Type {
		case "Player":
			r.players[a.ID] = struct{}{}
		case "Environment":
			r.env[a.ID] = struct{}{}
		}
	}
	return r
}

// Name returns the display name of an actor, or "Unknown"
func (r *Roster) Name(id int) string {
	if id == EnvironmentID {
		return "Environment"
	}
	if name, ok := r.names[id]; ok {
		return name
	}
	return "Unknown"
}

// Lookup resolves an actor id by exact display name
func (r *Roster) Lookup(name string) (int, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// Has reports whether the id belongs to a known actor
func (r *Roster) Has(id int) bool {
	_, ok := r.names[id]
	return ok
}

// IsPlayer reports whether the actor is a raid participant
func (r *Roster) IsPlayer(id int) bool {
	_, ok := r.players[id]
	return ok
}

// IsEnvironment reports whether the id denotes the environment pseudo-actor
func (r *Roster) IsEnvironment(id int) bool {
	if id == EnvironmentID {
		return true
	}
	_, ok := r.env[id]
	return ok
}
