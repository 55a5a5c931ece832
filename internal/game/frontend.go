package game

// Frontend is notified of everything a player should see. Callbacks run on
// the scheduler; a frontend must not block in them and must route player
// input back through Session.Submit.
type Frontend interface {
	PlayerActivityChanged(p *Player)
	PlayerReceivedEvent(p *Player, message string)
}

// View is a frontend-neutral rendering of what a player currently sees.
type View struct {
	PlayerID    int64        `json:"player_id"`
	Name        string       `json:"name"`
	Activity    string       `json:"activity"`
	Location    string       `json:"location"`
	Description string       `json:"description"`
	Health      int          `json:"health"`
	MaxHealth   int          `json:"max_health"`
	Level       int          `json:"level"`
	Experience  int          `json:"experience"`
	NextLevel   int          `json:"next_level"`
	Actions     []ActionView `json:"actions"`
}

type ActionView struct {
	Key   string `json:"key"`
	Group string `json:"group,omitempty"`
	Name  string `json:"name"`
}

// ViewOf renders p's current state. Call it from the scheduler.
func ViewOf(p *Player) View {
	v := View{
		PlayerID:   p.id,
		Name:       p.name,
		Health:     p.health,
		MaxHealth:  p.MaxHealth(),
		Level:      p.Level(),
		Experience: p.Experience,
		NextLevel:  p.XPToNextLevel(),
	}
	if p.location != nil {
		v.Location = p.location.Name
	}
	if p.activity != nil {
		v.Activity = p.activity.Kind()
		v.Description = p.activity.Description(p)
		for _, a := range p.activity.Base().EnabledActions() {
			v.Actions = append(v.Actions, ActionView{Key: a.key, Group: a.group, Name: a.name})
		}
	}
	return v
}
