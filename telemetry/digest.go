package telemetry

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"sort"
)

// StateDigest hashes the simulation-relevant parts of a snapshot. Two runs
// with the same seed and configuration produce the same digest at every tick.
func StateDigest(s *Snapshot) string {
	h := sha256.New()
	var tmp [8]byte
	putU64 := func(v uint64) {
		binary.LittleEndian.PutUint64(tmp[:], v)
		h.Write(tmp[:])
	}
	putI := func(v int) { putU64(uint64(int64(v))) }
	putB := func(v bool) {
		if v {
			putU64(1)
		} else {
			putU64(0)
		}
	}

	putU64(s.Tick)
	putI(s.Width)
	putI(s.Height)
	putU64(math.Float64bits(s.BandCenter.X))
	putU64(math.Float64bits(s.BandCenter.Y))

	creatures := make([]CreatureState, len(s.Creatures))
	copy(creatures, s.Creatures)
	sort.Slice(creatures, func(i, j int) bool { return creatures[i].ID < creatures[j].ID })
	putI(len(creatures))
	for _, c := range creatures {
		putU64(c.ID)
		putI(c.X)
		putI(c.Y)
		putI(c.Calories)
		h.Write([]byte(c.Intent))
		if c.Action != nil {
			h.Write([]byte(c.Action.Kind))
			putI(c.Action.Destination.X)
			putI(c.Action.Destination.Y)
			putU64(c.Action.Target)
			putI(c.Action.Progress)
		}
		putI(len(c.Path))
		for _, p := range c.Path {
			putI(p.X)
			putI(p.Y)
		}
		putB(c.Pregnant)
		putI(c.PregnancyProgress)
		putB(c.OutsideBand)
	}

	plants := make([]PlantState, len(s.Plants))
	copy(plants, s.Plants)
	sort.Slice(plants, func(i, j int) bool { return plants[i].ID < plants[j].ID })
	putI(len(plants))
	for _, p := range plants {
		putU64(p.ID)
		putI(p.X)
		putI(p.Y)
		putI(p.Nutrition)
		putB(p.Harvestable)
		putB(p.Edible)
	}

	return hex.EncodeToString(h.Sum(nil))
}
