package game

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	goerrors "github.com/pixil98/go-errors"
	"github.com/pixil98/go-rpg/internal/storage"
)

const (
	PlayersFile    = "players.json"
	ActivitiesFile = "activities.json"

	playersDocID    = "players"
	activitiesDocID = "activities"
)

// Persister knows where session state lives and how to write it.
type Persister struct {
	dir    string
	writer *storage.Writer
}

func NewPersister(dir string, w *storage.Writer) *Persister {
	return &Persister{dir: dir, writer: w}
}

func (p *Persister) path(name string) string {
	return filepath.Join(p.dir, name)
}

// PlayerRecord is the persisted form of a player.
type PlayerRecord struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Attributes    *AttributeSet   `json:"attributes"`
	Experience    int             `json:"experience"`
	VirtuePoints  int             `json:"virtue_points"`
	Health        int             `json:"health"`
	Location      int64           `json:"location"`
	Activity      string          `json:"activity"`
	ActivityState storage.Payload `json:"activity_state,omitempty"`
	Equipment     []int64         `json:"equipment,omitempty"`
	Inventory     []int64         `json:"inventory,omitempty"`
}

// PlayerRoster is the players document.
type PlayerRoster []PlayerRecord

func (r *PlayerRoster) Validate() error {
	el := goerrors.NewErrorList()
	ids := map[int64]bool{}
	names := map[string]bool{}
	for _, rec := range *r {
		if ids[rec.ID] {
			el.Add(fmt.Errorf("duplicate player id %d", rec.ID))
		}
		ids[rec.ID] = true

		n := strings.ToLower(rec.Name)
		if names[n] {
			el.Add(fmt.Errorf("duplicate player name %q", rec.Name))
		}
		names[n] = true
	}
	return el.Err()
}

func recordOf(p *Player) PlayerRecord {
	rec := PlayerRecord{
		ID:            p.id,
		Name:          p.name,
		Attributes:    p.Attributes,
		Experience:    p.Experience,
		VirtuePoints:  p.VirtuePoints,
		Health:        p.health,
		ActivityState: p.ActivityState,
	}
	if p.location != nil {
		rec.Location = p.location.ID
	}
	if p.activity != nil {
		rec.Activity = p.activity.Kind()
	}
	for _, it := range p.Equipment() {
		rec.Equipment = append(rec.Equipment, it.ID)
	}
	for _, it := range p.inventory {
		rec.Inventory = append(rec.Inventory, it.ID)
	}
	return rec
}

// Save writes the players and activities documents. Run it on the scheduler,
// or after the scheduler has stopped.
func (s *Session) Save(ctx context.Context) error {
	if s.persister == nil {
		return fmt.Errorf("session has no persister")
	}

	roster := PlayerRoster{}
	for _, p := range s.Players() {
		roster = append(roster, recordOf(p))
	}
	snap, err := s.cache.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshotting activities: %w", err)
	}

	el := goerrors.NewErrorList()
	el.Add(s.persister.writer.Save(ctx, s.persister.path(PlayersFile), storage.NewDocument(playersDocID, &roster)))
	el.Add(s.persister.writer.Save(ctx, s.persister.path(ActivitiesFile), storage.NewDocument(activitiesDocID, snap)))
	if err := el.Err(); err != nil {
		return err
	}

	slog.InfoContext(ctx, "session saved", "players", len(roster), "custom_activities", len(snap.Custom))
	return nil
}

// Load restores players and activities saved by Save. It must run before the
// scheduler starts. Missing files mean a fresh world. Entries that cannot be
// restored are skipped and listed in the report; their players fall back to
// the activity named in their record or the default activity.
func (s *Session) Load(ctx context.Context) (*LoadReport, error) {
	report := &LoadReport{}
	if s.persister == nil {
		return report, fmt.Errorf("session has no persister")
	}

	roster := &PlayerRoster{}
	rosterDoc, err := storage.ReadDocument(s.persister.path(PlayersFile), playersDocID, roster)
	if errors.Is(err, fs.ErrNotExist) {
		slog.InfoContext(ctx, "no saved players, starting a fresh world")
		return report, nil
	}
	if err != nil {
		return report, err
	}

	records := map[int64]PlayerRecord{}
	for _, rec := range *rosterDoc.Spec {
		s.restorePlayer(rec, report)
		records[rec.ID] = rec
	}

	var restored []Activity
	snapDoc, err := storage.ReadDocument(s.persister.path(ActivitiesFile), activitiesDocID, &ActivitySnapshot{})
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.WarnContext(ctx, "no saved activities, players return to their recorded activity")
	case err != nil:
		report.reject(fmt.Errorf("activities document: %w", err))
	default:
		restored = s.cache.Restore(snapDoc.Spec, report)
	}

	for _, p := range s.Players() {
		if p.activity == nil {
			s.reattach(p, records[p.id].Activity, report)
		}
	}

	for _, a := range restored {
		if r, ok := a.(Resumer); ok {
			r.Resume()
		}
	}

	if report.Clean() {
		slog.InfoContext(ctx, "session loaded", "players", len(s.players))
	} else {
		slog.WarnContext(ctx, "session loaded with errors", "players", len(s.players), "rejected", len(report.rejected))
	}
	return report, nil
}

func (s *Session) restorePlayer(rec PlayerRecord, report *LoadReport) {
	attrs := rec.Attributes
	if attrs == nil {
		report.reject(fmt.Errorf("player %d has no attributes, using starting attributes", rec.ID))
		attrs, _ = s.rules.startingAttributes()
	}
	p := newPlayer(rec.ID, rec.Name, attrs)
	p.Experience = rec.Experience
	p.VirtuePoints = rec.VirtuePoints
	p.ActivityState = rec.ActivityState

	for _, id := range rec.Equipment {
		it, ok := s.catalog.Item(id)
		if !ok {
			report.reject(fmt.Errorf("player %d: equipped item %d no longer exists", rec.ID, id))
			continue
		}
		if err := p.Equip(it); err != nil {
			report.reject(fmt.Errorf("player %d: %w", rec.ID, err))
		}
	}
	for _, id := range rec.Inventory {
		it, ok := s.catalog.Item(id)
		if !ok {
			report.reject(fmt.Errorf("player %d: inventory item %d no longer exists", rec.ID, id))
			continue
		}
		p.AddToInventory(it)
	}
	p.SetHealth(rec.Health)

	loc, ok := s.catalog.Location(rec.Location)
	if !ok {
		report.reject(fmt.Errorf("player %d: location %d no longer exists", rec.ID, rec.Location))
		loc, _ = s.catalog.Location(s.rules.StartingLocation)
	}

	s.players[p.id] = p
	s.ChangeLocation(p, loc)
}

// reattach engages p in the shared activity named by kind without running
// its begin hook, or in the default activity when kind has no shared instance.
func (s *Session) reattach(p *Player, kind string, report *LoadReport) {
	var (
		a   Activity
		err error
	)
	if desc, ok := s.registry.Lookup(kind); ok {
		switch desc.Lifecycle {
		case Singleton:
			a, err = s.cache.Singleton(kind)
		case PerLocation:
			a, err = s.cache.ForLocation(kind, p.location)
		}
	}
	if a == nil || err != nil {
		a, err = s.cache.ForLocation(s.defaultKind, p.location)
	}
	if err != nil {
		report.reject(fmt.Errorf("player %d: %w", p.id, err))
		return
	}
	s.attach(p, a)
}
