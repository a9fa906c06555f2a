package service

import (
	"fmt"
	"time"

	"github.com/wricardo/tmge/game/engine"
)

// sessionObserver turns engine notifications into events, pushes snapshots
// to the broadcaster and records final scores once per game.
type sessionObserver struct {
	svc       *gameServiceImpl
	sessionID string

	score    int
	level    int
	lines    int
	activeID string
	recorded bool

	pending []GameEvent
}

func newSessionObserver(svc *gameServiceImpl, sessionID string, g engine.Game) *sessionObserver {
	o := &sessionObserver{svc: svc, sessionID: sessionID}
	o.sync(g.DisplayData())
	return o
}

func (o *sessionObserver) sync(d *engine.Display) {
	o.score = d.Score
	o.level = d.Level
	if d.Lines != nil {
		o.lines = *d.Lines
	}
	o.activeID = activeID(d)
}

func activeID(d *engine.Display) string {
	for _, p := range d.Players {
		if p.IsActive {
			return p.ID
		}
	}
	return ""
}

func activeName(d *engine.Display) string {
	for _, p := range d.Players {
		if p.IsActive {
			return p.Name
		}
	}
	return ""
}

// OnUpdate is called synchronously by the game after every handled input or tick
func (o *sessionObserver) OnUpdate(g engine.Game) {
	d := g.DisplayData()
	now := time.Now()

	var events []GameEvent
	if d.Score > o.score {
		events = append(events, GameEvent{
			Type:      "score",
			Message:   fmt.Sprintf("+%d points (total %d)", d.Score-o.score, d.Score),
			Timestamp: now,
			Value:     d.Score - o.score,
		})
	}
	if d.Lines != nil && *d.Lines > o.lines {
		events = append(events, GameEvent{
			Type:      "lines",
			Message:   fmt.Sprintf("%d line(s) cleared", *d.Lines-o.lines),
			Timestamp: now,
			Value:     *d.Lines - o.lines,
		})
	}
	if d.Level > o.level {
		events = append(events, GameEvent{
			Type:      "level_up",
			Message:   fmt.Sprintf("Level %d reached", d.Level),
			Timestamp: now,
			Value:     d.Level,
		})
	}
	if id := activeID(d); id != o.activeID && !d.GameOver {
		events = append(events, GameEvent{
			Type:      "turn",
			Message:   fmt.Sprintf("%s to play", activeName(d)),
			Timestamp: now,
			Player:    activeName(d),
		})
	}
	if d.GameOver && !o.recorded {
		o.recorded = true
		events = append(events, GameEvent{
			Type:      "game_over",
			Message:   fmt.Sprintf("Game over with %d points", d.Score),
			Timestamp: now,
			Value:     d.Score,
		})
		o.svc.recordFinal(o.sessionID, g)
	}
	o.sync(d)

	o.pending = append(o.pending, events...)

	if b := o.svc.broadcaster; b != nil {
		b.BroadcastDisplay(o.sessionID, d)
		for _, ev := range events {
			b.BroadcastEvent(o.sessionID, ev.Type, ev)
		}
	}
}

// drain returns and clears the events collected since the last call
func (o *sessionObserver) drain() []GameEvent {
	events := o.pending
	o.pending = nil
	return events
}
