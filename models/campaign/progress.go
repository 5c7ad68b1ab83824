package campaign

import "encoding/json"

type MissionRecord struct {
	Completed    bool    `json:"completed"`
	Stars        int     `json:"stars"`
	BestAccuracy float64 `json:"best_accuracy"`
	Attempts     int     `json:"attempts"`
}

// Progress is one player's campaign save.
type Progress struct {
	Missions        map[int]*MissionRecord `json:"missions"`
	HighestUnlocked int                    `json:"highest_unlocked"`
	TotalStars      int                    `json:"total_stars"`
}

func NewProgress() *Progress {
	return &Progress{
		Missions:        make(map[int]*MissionRecord),
		HighestUnlocked: 1,
	}
}

// DecodeProgress reads a saved campaign. Saves written before a mission
// map existed still decode into a usable value.
func DecodeProgress(data []byte) (*Progress, error) {
	p := NewProgress()
	if err := json.Unmarshal(data, p); err != nil {
		return nil, err
	}
	if p.Missions == nil {
		p.Missions = make(map[int]*MissionRecord)
	}
	for id, r := range p.Missions {
		if r == nil {
			delete(p.Missions, id)
		}
	}
	if p.HighestUnlocked < 1 {
		p.HighestUnlocked = 1
	}
	return p, nil
}

func (p *Progress) Clone() *Progress {
	c := &Progress{
		Missions:        make(map[int]*MissionRecord, len(p.Missions)),
		HighestUnlocked: p.HighestUnlocked,
		TotalStars:      p.TotalStars,
	}
	for id, r := range p.Missions {
		if r == nil {
			continue
		}
		rec := *r
		c.Missions[id] = &rec
	}
	return c
}

func (p *Progress) Record(id int) (MissionRecord, bool) {
	r, ok := p.Missions[id]
	if !ok || r == nil {
		return MissionRecord{}, false
	}
	return *r, true
}

// record keeps the best stars and accuracy seen so far. A win unlocks
// the next mission.
func (p *Progress) record(m Mission, won bool, accuracy float64, missionCount int) int {
	if p.Missions == nil {
		p.Missions = make(map[int]*MissionRecord)
	}
	r, ok := p.Missions[m.ID]
	if !ok || r == nil {
		r = &MissionRecord{}
		p.Missions[m.ID] = r
	}
	r.Attempts++

	stars := m.Stars.Award(won, accuracy)
	if !won {
		return stars
	}

	r.Completed = true
	r.Stars = max(r.Stars, stars)
	r.BestAccuracy = max(r.BestAccuracy, accuracy)
	if m.ID >= p.HighestUnlocked && m.ID < missionCount {
		p.HighestUnlocked = m.ID + 1
	}

	p.TotalStars = 0
	for _, rec := range p.Missions {
		p.TotalStars += rec.Stars
	}
	return stars
}
