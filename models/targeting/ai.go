package targeting

import (
	"math"
	"math/rand"
	"slices"
	"sort"

	cerr "github.com/saeidalz13/warzones/internal/error"
	mb "github.com/saeidalz13/warzones/models/battleship"
)

const (
	hitNeighbourBonus = 2
	skyPatternBonus   = 2
	clusterChance     = 0.25
	clusterRadius     = 2
	topCandidateShare = 0.3
	minTopCandidates  = 3
)

type Move = mb.Target

// BoardView is what the computer may know about the board it attacks.
// *battleship.TargetView satisfies it.
type BoardView interface {
	Available(layer mb.Layer, index int) bool
	LayerShipCells(layer mb.Layer) int
	LayerShipCount(layer mb.Layer) int
}

// HitReport carries what the resolver said about a hit.
type HitReport struct {
	Treasure bool
	// Positions of the ship that sank with this hit, if any.
	Sunk []int
}

type layerState struct {
	hits           []int
	shipHits       int
	sunkShips      int
	orientation    mb.Orientation
	hasOrientation bool
	prob           [mb.CellCount]int
	attacked       [mb.CellCount]bool
}

// AI picks attacks for the computer side. It keeps one hunting state per
// layer and only learns about the board through RecordHit and
// RecordMiss.
type AI struct {
	rng         *rand.Rand
	fixed       *Personality
	personality Personality
	pattern     skyPattern
	layers      [mb.LayerCount]layerState
	attacks     []Move
}

type Option func(*AI)

// WithPersonality stops Reset from rolling a new personality.
func WithPersonality(p Personality) Option {
	return func(a *AI) {
		a.fixed = &p
	}
}

func New(rng *rand.Rand, opts ...Option) *AI {
	a := &AI{rng: rng}
	for _, opt := range opts {
		opt(a)
	}
	a.Reset()
	return a
}

// Reset forgets everything about the previous game and rolls a new
// personality and sky pattern. Overrides are cleared.
func (a *AI) Reset() {
	if a.fixed != nil {
		a.personality = *a.fixed
	} else {
		a.personality = RandomPersonality(a.rng)
	}
	a.pattern = skyPattern(a.rng.Intn(skyPatternCount))
	a.layers = [mb.LayerCount]layerState{}
	a.attacks = make([]Move, 0, mb.CellCount*mb.LayerCount)
	a.initProbabilityMaps()
}

func (a *AI) Override(o Overrides) {
	if o.Unpredictability != nil {
		a.personality.Unpredictability = *o.Unpredictability
	}
	if o.ClusterPreference != nil {
		a.personality.ClusterPreference = *o.ClusterPreference
	}
}

func (a *AI) Personality() Personality {
	return a.personality
}

func (a *AI) Probability(layer mb.Layer) [mb.CellCount]int {
	return a.layers[layer].prob
}

func (a *AI) UnresolvedHits(layer mb.Layer) []int {
	return slices.Clone(a.layers[layer].hits)
}

func (a *AI) Orientation(layer mb.Layer) (mb.Orientation, bool) {
	return a.layers[layer].orientation, a.layers[layer].hasOrientation
}

func (a *AI) ShipHits(layer mb.Layer) int {
	return a.layers[layer].shipHits
}

// LayerComplete reports whether every ship cell on the layer has been
// hit. Treasure hits never count.
func (a *AI) LayerComplete(view BoardView, layer mb.Layer) bool {
	return a.layers[layer].shipHits >= view.LayerShipCells(layer)
}

func (a *AI) initProbabilityMaps() {
	for l := range a.layers {
		for i := range a.layers[l].prob {
			a.layers[l].prob[i] = 1
		}
	}

	// Only cells that can anchor the 2x2 ship get a bonus.
	space := &a.layers[mb.LayerSpace].prob
	last := mb.BoardSize - 2
	centre := float64(last) / 2
	for r := 0; r <= last; r++ {
		for c := 0; c <= last; c++ {
			i := mb.Index(r, c)
			if a.personality.EdgePreference == PreferCenter {
				dist := math.Hypot(float64(r)-centre, float64(c)-centre)
				space[i] += max(1, 3-int(math.Floor(dist)))
				continue
			}

			rowEdge, colEdge := r == 0 || r == last, c == 0 || c == last
			switch {
			case rowEdge && colEdge:
				space[i] += 3
			case rowEdge || colEdge:
				space[i] += 2
			default:
				space[i]++
			}
		}
	}

	sky := &a.layers[mb.LayerSky].prob
	for i := range sky {
		if r, c := mb.RowCol(i); a.pattern.matches(r, c, a.personality.Seed) {
			sky[i] += skyPatternBonus
		}
	}

	for l := range a.layers {
		for i := range a.layers[l].prob {
			a.layers[l].prob[i] = max(1, a.layers[l].prob[i]+a.rng.Intn(3)-1)
		}
	}
}

func (a *AI) available(view BoardView, layer mb.Layer, index int) bool {
	return !a.layers[layer].attacked[index] && view.Available(layer, index)
}

func (a *AI) availableCells(view BoardView, layer mb.Layer) []int {
	cells := make([]int, 0, mb.CellCount)
	for i := 0; i < mb.CellCount; i++ {
		if a.available(view, layer, i) {
			cells = append(cells, i)
		}
	}
	return cells
}

func (a *AI) filterAvailable(view BoardView, layer mb.Layer, cells []int) []int {
	return slices.DeleteFunc(slices.Clone(cells), func(i int) bool {
		return !a.available(view, layer, i)
	})
}

// CalculateMove picks the next attack. It returns cerr.ErrNoLegalAIMove
// once no cell on any layer can be attacked.
func (a *AI) CalculateMove(view BoardView) (Move, error) {
	if m, ok := a.pursue(view); ok {
		return m, nil
	}

	if a.rng.Float64() < a.personality.Unpredictability {
		if m, ok := a.randomMove(view); ok {
			return m, nil
		}
	}

	if m, ok := a.strategyMove(view); ok {
		return m, nil
	}

	// Every layer looks complete but cells remain, e.g. after a desync.
	if m, ok := a.randomMove(view); ok {
		return m, nil
	}
	return Move{}, cerr.ErrNoLegalAIMove
}

// pursue finishes off ships that have already been found.
func (a *AI) pursue(view BoardView) (Move, bool) {
	space := &a.layers[mb.LayerSpace]
	if len(space.hits) > 0 && !a.LayerComplete(view, mb.LayerSpace) {
		if m, ok := a.squareMove(view); ok {
			return m, true
		}
	}

	for _, layer := range [2]mb.Layer{mb.LayerSea, mb.LayerSub} {
		if len(a.layers[layer].hits) > 0 && !a.LayerComplete(view, layer) {
			if m, ok := a.lineMove(view, layer); ok {
				return m, true
			}
		}
	}

	// One unit found and the layer still not clear means a second jet
	// joined the sky.
	sky := &a.layers[mb.LayerSky]
	if (len(sky.hits) > 0 || sky.shipHits > 0) && !a.LayerComplete(view, mb.LayerSky) {
		if m, ok := a.patternMove(view); ok {
			return m, true
		}
	}
	return Move{}, false
}

func (a *AI) squareMove(view BoardView) (Move, bool) {
	hits := a.layers[mb.LayerSpace].hits

	var candidates []int
	switch len(hits) {
	case 1:
		candidates = a.squaresAround(view, hits[0])
	case 2:
		candidates = a.squareFromPair(view, hits[0], hits[1])
	case 3:
		candidates = a.squareCorners(view, hits)
	}

	if len(candidates) == 0 {
		candidates = a.neighbourCandidates(view, mb.LayerSpace, hits, mb.Surrounding)
	}
	if len(candidates) == 0 {
		return Move{}, false
	}
	return Move{Layer: mb.LayerSpace, Index: candidates[a.rng.Intn(len(candidates))]}, true
}

// squaresAround lists the other cells of every 2x2 square that could
// contain hit.
func (a *AI) squaresAround(view BoardView, hit int) []int {
	r, c := mb.RowCol(hit)
	seen := [mb.CellCount]bool{}
	candidates := make([]int, 0, 8)

	for _, anchor := range [4][2]int{{r - 1, c - 1}, {r - 1, c}, {r, c - 1}, {r, c}} {
		ar, ac := anchor[0], anchor[1]
		if ar < 0 || ac < 0 || ar > mb.BoardSize-2 || ac > mb.BoardSize-2 {
			continue
		}
		for _, cell := range [4][2]int{{ar, ac}, {ar, ac + 1}, {ar + 1, ac}, {ar + 1, ac + 1}} {
			i := mb.Index(cell[0], cell[1])
			if i != hit && !seen[i] && a.available(view, mb.LayerSpace, i) {
				seen[i] = true
				candidates = append(candidates, i)
			}
		}
	}
	return candidates
}

func (a *AI) squareFromPair(view BoardView, h0, h1 int) []int {
	r0, c0 := mb.RowCol(h0)
	r1, c1 := mb.RowCol(h1)

	var options [][][2]int
	switch {
	case r0 == r1 && abs(c0-c1) == 1:
		options = [][][2]int{
			{{r0 - 1, c0}, {r0 - 1, c1}},
			{{r0 + 1, c0}, {r0 + 1, c1}},
		}
	case c0 == c1 && abs(r0-r1) == 1:
		options = [][][2]int{
			{{r0, c0 - 1}, {r1, c0 - 1}},
			{{r0, c0 + 1}, {r1, c0 + 1}},
		}
	case abs(r0-r1) == 1 && abs(c0-c1) == 1:
		options = [][][2]int{{{r0, c1}, {r1, c0}}}
	}

	for _, option := range options {
		candidates := make([]int, 0, 2)
		for _, cell := range option {
			if !mb.InBounds(cell[0], cell[1]) {
				continue
			}
			if i := mb.Index(cell[0], cell[1]); a.available(view, mb.LayerSpace, i) {
				candidates = append(candidates, i)
			}
		}
		if len(candidates) > 0 {
			return candidates
		}
	}
	return nil
}

// squareCorners returns the missing corner of the bounding box of three
// hits.
func (a *AI) squareCorners(view BoardView, hits []int) []int {
	minR, minC := mb.BoardSize, mb.BoardSize
	maxR, maxC := -1, -1
	for _, h := range hits {
		r, c := mb.RowCol(h)
		minR, maxR = min(minR, r), max(maxR, r)
		minC, maxC = min(minC, c), max(maxC, c)
	}
	if maxR-minR != 1 || maxC-minC != 1 {
		return nil
	}

	candidates := make([]int, 0, 1)
	for _, i := range []int{mb.Index(minR, minC), mb.Index(minR, maxC), mb.Index(maxR, minC), mb.Index(maxR, maxC)} {
		if !slices.Contains(hits, i) && a.available(view, mb.LayerSpace, i) {
			candidates = append(candidates, i)
		}
	}
	return candidates
}

func (a *AI) neighbourCandidates(view BoardView, layer mb.Layer, hits []int, neighbours func(int) []int) []int {
	seen := [mb.CellCount]bool{}
	candidates := make([]int, 0, 8)
	for _, h := range hits {
		for _, n := range neighbours(h) {
			if !seen[n] && a.available(view, layer, n) {
				seen[n] = true
				candidates = append(candidates, n)
			}
		}
	}
	a.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	return candidates
}

func (a *AI) lineMove(view BoardView, layer mb.Layer) (Move, bool) {
	st := &a.layers[layer]

	if len(st.hits) == 1 {
		candidates := a.neighbourCandidates(view, layer, st.hits, mb.Orthogonal)
		if len(candidates) > 0 {
			return Move{Layer: layer, Index: candidates[0]}, true
		}
	} else if st.hasOrientation {
		if m, ok := a.nextLineMove(view, layer); ok {
			return m, true
		}
	}

	if candidates := a.neighbourCandidates(view, layer, st.hits, mb.Orthogonal); len(candidates) > 0 {
		return Move{Layer: layer, Index: candidates[0]}, true
	}
	return a.bestMoveForLayer(view, layer)
}

// nextLineMove extends the run of hits that shares the first hit's row
// or column from either end.
func (a *AI) nextLineMove(view BoardView, layer mb.Layer) (Move, bool) {
	st := &a.layers[layer]
	anchorR, anchorC := mb.RowCol(st.hits[0])
	horizontal := st.orientation == mb.Horizontal

	line := make([]int, 0, len(st.hits))
	for _, h := range st.hits {
		r, c := mb.RowCol(h)
		if horizontal && r == anchorR {
			line = append(line, c)
		} else if !horizontal && c == anchorC {
			line = append(line, r)
		}
	}
	slices.Sort(line)

	candidates := make([]int, 0, 2)
	for _, p := range [2]int{line[0] - 1, line[len(line)-1] + 1} {
		r, c := p, anchorC
		if horizontal {
			r, c = anchorR, p
		}
		if !mb.InBounds(r, c) {
			continue
		}
		if i := mb.Index(r, c); a.available(view, layer, i) {
			candidates = append(candidates, i)
		}
	}

	if len(candidates) == 0 {
		return Move{}, false
	}
	return Move{Layer: layer, Index: candidates[a.rng.Intn(len(candidates))]}, true
}

func (a *AI) patternMove(view BoardView) (Move, bool) {
	sky := &a.layers[mb.LayerSky]
	candidates := make([]candidate, 0, mb.CellCount)
	for _, i := range a.availableCells(view, mb.LayerSky) {
		if r, c := mb.RowCol(i); a.pattern.matches(r, c, a.personality.Seed) {
			candidates = append(candidates, candidate{index: i, score: float64(sky.prob[i])})
		}
	}

	if len(candidates) == 0 {
		return a.bestMoveForLayer(view, mb.LayerSky)
	}
	return Move{Layer: mb.LayerSky, Index: a.pickTop(candidates)}, true
}

// openLayers lists layers with attackable cells, optionally only those
// whose ships are not all found yet.
func (a *AI) openLayers(view BoardView, incompleteOnly bool) []mb.Layer {
	layers := make([]mb.Layer, 0, mb.LayerCount)
	for _, layer := range mb.Layers {
		if incompleteOnly && a.LayerComplete(view, layer) {
			continue
		}
		if len(a.availableCells(view, layer)) > 0 {
			layers = append(layers, layer)
		}
	}
	return layers
}

func (a *AI) randomMove(view BoardView) (Move, bool) {
	layers := a.openLayers(view, true)
	if len(layers) == 0 {
		layers = a.openLayers(view, false)
	}
	if len(layers) == 0 {
		return Move{}, false
	}

	layer := layers[a.rng.Intn(len(layers))]
	cells := a.availableCells(view, layer)
	return Move{Layer: layer, Index: cells[a.rng.Intn(len(cells))]}, true
}

func (a *AI) strategyMove(view BoardView) (Move, bool) {
	scores := make([]candidate, 0, mb.LayerCount)
	for _, layer := range mb.Layers {
		cells := a.availableCells(view, layer)
		if len(cells) == 0 || a.LayerComplete(view, layer) {
			continue
		}

		remaining := max(1, view.LayerShipCount(layer)-a.layers[layer].sunkShips)
		score := float64(remaining) / float64(len(cells)) * 100
		switch layer {
		case mb.LayerSpace:
			score *= 1.3 + a.rng.Float64()*0.4
		case mb.LayerSea:
			score *= 1.1 + a.rng.Float64()*0.2
		}
		score *= 0.8 + a.rng.Float64()*0.4

		scores = append(scores, candidate{index: int(layer), score: score})
	}
	if len(scores) == 0 {
		return Move{}, false
	}

	chosen := scores[a.rng.Intn(len(scores))].index
	if a.rng.Float64() >= a.personality.Unpredictability {
		chosen = a.weightedPick(scores)
	}
	return a.bestMoveForLayer(view, mb.Layer(chosen))
}

func (a *AI) bestMoveForLayer(view BoardView, layer mb.Layer) (Move, bool) {
	if a.personality.ClusterPreference && len(a.attacks) > 0 && a.rng.Float64() < clusterChance {
		if m, ok := a.nearbyMove(view, layer); ok {
			return m, true
		}
	}

	prob := &a.layers[layer].prob
	candidates := make([]candidate, 0, mb.CellCount)
	for _, i := range a.availableCells(view, layer) {
		candidates = append(candidates, candidate{index: i, score: float64(prob[i]) * (0.8 + a.rng.Float64()*0.4)})
	}
	if len(candidates) == 0 {
		return Move{}, false
	}
	return Move{Layer: layer, Index: a.pickTop(candidates)}, true
}

// nearbyMove re-targets around an earlier attack on the same layer,
// favouring closer cells.
func (a *AI) nearbyMove(view BoardView, layer mb.Layer) (Move, bool) {
	prior := make([]int, 0, len(a.attacks))
	for _, m := range a.attacks {
		if m.Layer == layer {
			prior = append(prior, m.Index)
		}
	}
	if len(prior) == 0 {
		return Move{}, false
	}

	originR, originC := mb.RowCol(prior[a.rng.Intn(len(prior))])
	candidates := make([]candidate, 0, 12)
	for _, i := range a.availableCells(view, layer) {
		r, c := mb.RowCol(i)
		if d := abs(r-originR) + abs(c-originC); d >= 1 && d <= clusterRadius {
			candidates = append(candidates, candidate{index: i, score: float64(clusterRadius + 1 - d)})
		}
	}
	if len(candidates) == 0 {
		return Move{}, false
	}
	return Move{Layer: layer, Index: a.weightedPick(candidates)}, true
}

type candidate struct {
	index int
	score float64
}

// pickTop draws from the best scored share of candidates, weighted by
// score, so the single best cell is not always chosen.
func (a *AI) pickTop(candidates []candidate) int {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	top := max(minTopCandidates, int(math.Ceil(float64(len(candidates))*topCandidateShare)))
	return a.weightedPick(candidates[:min(top, len(candidates))])
}

func (a *AI) weightedPick(candidates []candidate) int {
	total := 0.0
	for _, c := range candidates {
		total += c.score
	}
	if total <= 0 {
		return candidates[a.rng.Intn(len(candidates))].index
	}

	roll := a.rng.Float64() * total
	for _, c := range candidates {
		roll -= c.score
		if roll < 0 {
			return c.index
		}
	}
	return candidates[len(candidates)-1].index
}

func (a *AI) markAttacked(layer mb.Layer, index int) {
	st := &a.layers[layer]
	st.attacked[index] = true
	st.prob[index] = 0
	a.attacks = append(a.attacks, Move{Layer: layer, Index: index})
}

// RecordHit must be called once for every hit the computer lands,
// including treasure.
func (a *AI) RecordHit(layer mb.Layer, index int, report HitReport) {
	a.markAttacked(layer, index)
	if report.Treasure {
		a.jitter()
		return
	}

	st := &a.layers[layer]
	st.shipHits++
	st.hits = append(st.hits, index)
	for _, n := range mb.Orthogonal(index) {
		if !st.attacked[n] {
			st.prob[n] += hitNeighbourBonus
		}
	}

	if len(report.Sunk) > 0 {
		st.sunkShips++
		st.hits = slices.DeleteFunc(st.hits, func(h int) bool {
			return slices.Contains(report.Sunk, h)
		})
		st.hasOrientation = false
	}
	if !st.hasOrientation && len(st.hits) >= 2 {
		st.orientation, st.hasOrientation = orientationOf(st.hits[0], st.hits[1])
	}
	a.jitter()
}

func (a *AI) RecordMiss(layer mb.Layer, index int) {
	a.markAttacked(layer, index)

	st := &a.layers[layer]
	for _, n := range mb.Surrounding(index) {
		if st.prob[n] > 0 {
			st.prob[n] = max(1, st.prob[n]-1)
		}
	}
	a.jitter()
}

func (a *AI) jitter() {
	for l := range a.layers {
		st := &a.layers[l]
		for i := range st.prob {
			if !st.attacked[i] && st.prob[i] > 0 {
				st.prob[i] = max(1, st.prob[i]+a.rng.Intn(3)-1)
			}
		}
	}
}

func orientationOf(h0, h1 int) (mb.Orientation, bool) {
	r0, c0 := mb.RowCol(h0)
	r1, c1 := mb.RowCol(h1)
	switch {
	case r0 == r1:
		return mb.Horizontal, true
	case c0 == c1:
		return mb.Vertical, true
	}
	return mb.Horizontal, false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
