package game

import (
	"github.com/parlorgames/parlor/pkg/protocol"
)

// ScheduledSound is a sound due at an absolute sound-scheduler tick.
// Entries always reference ticks at or after the current counter.
type ScheduledSound struct {
	Tick   int64   `json:"tick"`
	Name   string  `json:"name"`
	Volume float64 `json:"volume"`
	Pan    float64 `json:"pan"`
	Pitch  float64 `json:"pitch"`
}

// SequenceSound is one step of a sound sequence: a name plus the delay
// in ticks after the previous step.
type SequenceSound struct {
	Name       string
	DelayAfter int64
}

// ScheduleSound queues name to play delayTicks from now.
func (b *Base) ScheduleSound(name string, delayTicks int64, volume, pan, pitch float64) {
	b.Sounds = append(b.Sounds, ScheduledSound{
		Tick:   b.SoundTick + delayTicks,
		Name:   name,
		Volume: volume,
		Pan:    pan,
		Pitch:  pitch,
	})
}

// ScheduleSoundSequence queues a chain of sounds, each delayed
// relative to the previous one, starting startDelay ticks from now.
func (b *Base) ScheduleSoundSequence(seq []SequenceSound, startDelay int64) {
	at := startDelay
	for _, s := range seq {
		at += s.DelayAfter
		b.ScheduleSound(s.Name, at, 1.0, 0, 1.0)
	}
}

// flushSounds broadcasts every due entry, keeps the rest and advances
// the counter by one. Runs once per game tick.
func (b *Base) flushSounds() {
	if len(b.Sounds) > 0 {
		kept := b.Sounds[:0]
		for _, s := range b.Sounds {
			if s.Tick <= b.SoundTick {
				b.PlaySoundAll(s.Name, s.Volume, s.Pan, s.Pitch)
			} else {
				kept = append(kept, s)
			}
		}
		b.Sounds = kept
	}
	b.SoundTick++
}

// PlaySoundAll broadcasts an immediate sound to every seat.
func (b *Base) PlaySoundAll(name string, volume, pan, pitch float64) {
	pkt := protocol.NewPlaySound(name, volume, pan, pitch)
	for _, p := range b.Players {
		if seat := p.Seat(); seat != nil {
			seat.Enqueue(pkt)
		}
	}
}

// PlayMusic starts looping music for everyone and remembers it for
// late joiners.
func (b *Base) PlayMusic(name string) {
	b.Music = name
	pkt := protocol.NewPlayMusic(name, true)
	for _, p := range b.Players {
		if seat := p.Seat(); seat != nil {
			seat.Enqueue(pkt)
		}
	}
}

// PlayAmbience starts an ambience loop for everyone and remembers it.
func (b *Base) PlayAmbience(loop, intro, outro string) {
	b.Ambience = loop
	pkt := protocol.NewPlayAmbience(loop, intro, outro)
	for _, p := range b.Players {
		if seat := p.Seat(); seat != nil {
			seat.Enqueue(pkt)
		}
	}
}

// StopAmbience stops the ambience loop for everyone.
func (b *Base) StopAmbience() {
	b.Ambience = ""
	pkt := protocol.NewStopAmbience()
	for _, p := range b.Players {
		if seat := p.Seat(); seat != nil {
			seat.Enqueue(pkt)
		}
	}
}

// sendAtmosphere brings a newly attached seat up to date with the
// game's current music and ambience.
func (b *Base) sendAtmosphere(p *Player) {
	seat := p.Seat()
	if seat == nil || seat.IsBotSeat() {
		return
	}
	if b.Music != "" {
		seat.Enqueue(protocol.NewPlayMusic(b.Music, true))
	}
	if b.Ambience != "" {
		seat.Enqueue(protocol.NewPlayAmbience(b.Ambience, "", ""))
	}
}
