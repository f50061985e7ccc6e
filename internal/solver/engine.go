package solver

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"
)

// The search is an ALNS-style loop: remove a few customers with a roulette-
// selected removal operator, reinsert them with a selected insertion
// operator, polish with local search, and accept by simulated annealing.
// Operator weights adapt to what keeps producing improvements.

type problem struct {
	dist     [][]float64
	demands  []int
	capacity int
	depot    int
	vehicles int
	penalty  float64

	initTemp        float64
	cooling         float64
	iterationsLimit int
	display         bool
	progress        func(ProgressEvent)
}

// Metrics records search behavior for one solve invocation.
type Metrics struct {
	RemovalSelects        [2]int // random, shaw
	InsertSelects         [2]int // greedy, regret2
	Iterations            int
	Improvements          int
	AcceptedWorse         int
	BestCost              float64
	FinalCost             float64
	FinalRemovalWeights   [2]float64
	FinalInsertionWeights [2]float64
	Snapshots             []WeightSnapshot
}

type WeightSnapshot struct {
	Iteration int
	Removal   [2]float64
	Insertion [2]float64
}

func solve(p problem, seed int64, stop StopCondition) ([][]int, Metrics) {
	rng := rand.New(rand.NewSource(seed))

	curr := greedySeed(p)
	best := cloneRoutes(curr)
	bestCost := cost(p, curr)

	remW := []float64{1, 1} // random, shaw
	insW := []float64{1, 1} // greedy, regret2
	temp := 1.0
	if p.initTemp > 0 {
		temp = p.initTemp
	}
	cool := 0.995
	if p.cooling > 0 && p.cooling < 1 {
		cool = p.cooling
	}

	m := Metrics{BestCost: bestCost}
	start := time.Now()
	const snapshotEvery = 50
	for !stop.Done(m.Iterations, time.Since(start)) {
		m.Iterations++
		if p.iterationsLimit > 0 && m.Iterations >= p.iterationsLimit {
			break
		}
		k := 1 + rng.Intn(3)
		op := selectOp(remW, rng)
		m.RemovalSelects[op]++
		ip := selectOp(insW, rng)
		m.InsertSelects[ip]++

		cand := cloneRoutes(curr)
		var removed []int
		switch op {
		case 0:
			removed = pickRandomNodes(cand, k, rng)
		case 1:
			removed = shawRemoval(p, cand, k, rng)
		}
		cand = removeNodes(cand, removed)
		switch ip {
		case 0:
			cand = greedyInsert(p, cand, removed)
		case 1:
			cand = regretInsert(p, cand, removed)
		}
		cand = twoOptImprove(p, cand)
		cand = crossExchangeImprove(p, cand)
		cCost := cost(p, cand)

		delta := cCost - bestCost
		if delta < 0 || rng.Float64() < math.Exp(-delta/(temp+1e-9)) {
			curr = cand
			if cCost < bestCost {
				best = cloneRoutes(cand)
				bestCost = cCost
				remW[op] += 0.1
				insW[ip] += 0.1
				m.Improvements++
				m.BestCost = bestCost
				elapsed := time.Since(start)
				if p.progress != nil {
					p.progress(ProgressEvent{Iteration: m.Iterations, Best: bestCost, Elapsed: elapsed})
				}
				if p.display {
					fmt.Printf("iter %8d  best %12.2f  elapsed %s\n", m.Iterations, bestCost, elapsed.Round(time.Second))
				}
			} else {
				remW[op] += 0.01
				insW[ip] += 0.01
				m.AcceptedWorse++
			}
		} else {
			remW[op] = math.Max(0.01, remW[op]*0.999)
			insW[ip] = math.Max(0.01, insW[ip]*0.999)
		}
		temp *= cool
		if m.Iterations%snapshotEvery == 0 {
			s := WeightSnapshot{
				Iteration: m.Iterations,
				Removal:   [2]float64{remW[0], remW[1]},
				Insertion: [2]float64{insW[0], insW[1]},
			}
			m.Snapshots = append(m.Snapshots, s)
			if p.display {
				fmt.Printf("iter %8d  weights removal=[%.2f %.2f] insertion=[%.2f %.2f]\n",
					s.Iteration, s.Removal[0], s.Removal[1], s.Insertion[0], s.Insertion[1])
			}
		}
	}
	m.FinalCost = bestCost
	m.FinalRemovalWeights = [2]float64{remW[0], remW[1]}
	m.FinalInsertionWeights = [2]float64{insW[0], insW[1]}
	return best, m
}

// greedySeed builds the initial solution by round-robin cheapest feasible
// appends; customers that fit nowhere go to the least-loaded route.
func greedySeed(p problem) [][]int {
	n := len(p.demands)
	used := make([]bool, n)
	used[p.depot] = true
	routes := make([][]int, p.vehicles)
	for vi := range routes {
		routes[vi] = []int{}
	}
	customers := n - 1
	assigned := 0
	for assigned < customers {
		progress := false
		for vi := range routes {
			bestIdx, bestDelta := -1, math.MaxFloat64
			for i := 0; i < n; i++ {
				if used[i] || !canTake(p, routes[vi], i) {
					continue
				}
				if d := appendCost(p, routes[vi], i); d < bestDelta {
					bestDelta = d
					bestIdx = i
				}
			}
			if bestIdx >= 0 {
				routes[vi] = append(routes[vi], bestIdx)
				used[bestIdx] = true
				assigned++
				progress = true
				if assigned == customers {
					break
				}
			}
		}
		if !progress {
			break
		}
	}
	for i := 0; i < n; i++ {
		if !used[i] {
			vi := leastLoaded(p, routes)
			routes[vi] = append(routes[vi], i)
			used[i] = true
		}
	}
	return routes
}

func pickRandomNodes(routes [][]int, k int, rng *rand.Rand) []int {
	var all []int
	for _, r := range routes {
		all = append(all, r...)
	}
	if len(all) == 0 {
		return nil
	}
	var removed []int
	for i := 0; i < k && len(all) > 0; i++ {
		j := rng.Intn(len(all))
		removed = append(removed, all[j])
		all = append(all[:j], all[j+1:]...)
	}
	return removed
}

// shawRemoval removes a random seed customer plus the k-1 customers closest
// to it, so related stops get reinserted together.
func shawRemoval(p problem, routes [][]int, k int, rng *rand.Rand) []int {
	var assigned []int
	for _, r := range routes {
		assigned = append(assigned, r...)
	}
	if len(assigned) == 0 {
		return nil
	}
	seedIdx := assigned[rng.Intn(len(assigned))]
	type rel struct {
		idx  int
		dist float64
	}
	var rels []rel
	for _, idx := range assigned {
		if idx == seedIdx {
			continue
		}
		rels = append(rels, rel{idx: idx, dist: p.dist[seedIdx][idx]})
	}
	sort.Slice(rels, func(i, j int) bool { return rels[i].dist < rels[j].dist })
	removed := []int{seedIdx}
	for i := 0; i < len(rels) && len(removed) < k; i++ {
		removed = append(removed, rels[i].idx)
	}
	return removed
}

func removeNodes(routes [][]int, removed []int) [][]int {
	if len(removed) == 0 {
		return routes
	}
	rm := map[int]bool{}
	for _, i := range removed {
		rm[i] = true
	}
	out := make([][]int, len(routes))
	for vi, r := range routes {
		out[vi] = []int{}
		for _, idx := range r {
			if !rm[idx] {
				out[vi] = append(out[vi], idx)
			}
		}
	}
	return out
}

// greedyInsert places each removed customer at its cheapest capacity-feasible
// position; with no feasible slot it falls back to the least-loaded route.
func greedyInsert(p problem, routes [][]int, removed []int) [][]int {
	nodes := append([]int(nil), removed...)
	for len(nodes) > 0 {
		bestNode, bestRoute, bestPos := -1, -1, -1
		bestDelta := math.MaxFloat64
		for ni, idx := range nodes {
			for vi, r := range routes {
				if !canTake(p, r, idx) {
					continue
				}
				for pos := 0; pos <= len(r); pos++ {
					if d := insertCost(p, r, idx, pos); d < bestDelta {
						bestDelta = d
						bestNode = ni
						bestRoute = vi
						bestPos = pos
					}
				}
			}
		}
		if bestNode == -1 {
			vi := leastLoaded(p, routes)
			routes[vi] = append(routes[vi], nodes[0])
			nodes = nodes[1:]
			continue
		}
		routes[bestRoute] = insertAt(routes[bestRoute], nodes[bestNode], bestPos)
		nodes = append(nodes[:bestNode], nodes[bestNode+1:]...)
	}
	return routes
}

// regretInsert prefers the customer whose second-best slot is much worse than
// its best slot (regret-2), then runs a relocation pass.
func regretInsert(p problem, routes [][]int, removed []int) [][]int {
	nodes := append([]int(nil), removed...)
	for len(nodes) > 0 {
		bestNode, bestRoute, bestPos := -1, -1, -1
		bestRegret := -1.0
		for ni, idx := range nodes {
			best1, best2 := math.MaxFloat64, math.MaxFloat64
			br, bp := -1, -1
			for vi, r := range routes {
				if !canTake(p, r, idx) {
					continue
				}
				for pos := 0; pos <= len(r); pos++ {
					c := insertCost(p, r, idx, pos)
					if c < best1 {
						best2 = best1
						best1 = c
						br = vi
						bp = pos
					} else if c < best2 {
						best2 = c
					}
				}
			}
			if br == -1 {
				continue
			}
			regret := best2 - best1
			if best2 == math.MaxFloat64 {
				regret = best1
			}
			if regret > bestRegret {
				bestRegret = regret
				bestNode = ni
				bestRoute = br
				bestPos = bp
			}
		}
		if bestNode == -1 {
			vi := leastLoaded(p, routes)
			routes[vi] = append(routes[vi], nodes[0])
			nodes = nodes[1:]
			continue
		}
		routes[bestRoute] = insertAt(routes[bestRoute], nodes[bestNode], bestPos)
		nodes = append(nodes[:bestNode], nodes[bestNode+1:]...)
	}
	return orOptImprove(p, routes)
}

// orOptImprove relocates single customers within their route while it helps.
func orOptImprove(p problem, routes [][]int) [][]int {
	for vi, r := range routes {
		improved := true
		for improved {
			improved = false
			base := routeCost(p, r)
			for i := 0; i < len(r); i++ {
				for j := 0; j <= len(r); j++ {
					if j == i || j == i+1 {
						continue
					}
					cand := append([]int(nil), r[:i]...)
					cand = append(cand, r[i+1:]...)
					pos := j
					if pos > i {
						pos--
					}
					cand = insertAt(cand, r[i], pos)
					if c := routeCost(p, cand); c+1e-6 < base {
						r = cand
						base = c
						improved = true
					}
				}
			}
		}
		routes[vi] = r
	}
	return routes
}

// twoOptImprove reverses intra-route segments while the route shortens.
// Capacity is unaffected by reversal, so no feasibility check is needed.
func twoOptImprove(p problem, routes [][]int) [][]int {
	for vi, r := range routes {
		n := len(r)
		improved := true
		for improved {
			improved = false
			base := routeCost(p, r)
			for i := 0; i < n-1; i++ {
				for k := i + 1; k < n; k++ {
					cand := append([]int(nil), r...)
					for a, b := i, k; a < b; a, b = a+1, b-1 {
						cand[a], cand[b] = cand[b], cand[a]
					}
					if c := routeCost(p, cand); c+1e-6 < base {
						r = cand
						base = c
						improved = true
					}
				}
			}
		}
		routes[vi] = r
	}
	return routes
}

// crossExchangeImprove swaps customer pairs between routes when both routes
// stay within capacity and total distance drops.
func crossExchangeImprove(p problem, routes [][]int) [][]int {
	m := len(routes)
	if m < 2 {
		return routes
	}
	improved := true
	for improved {
		improved = false
		for a := 0; a < m; a++ {
			for b := a + 1; b < m; b++ {
				for i := 0; i < len(routes[a]); i++ {
					for j := 0; j < len(routes[b]); j++ {
						ca := append([]int(nil), routes[a]...)
						cb := append([]int(nil), routes[b]...)
						ca[i], cb[j] = cb[j], ca[i]
						if routeLoad(p, ca) > p.capacity || routeLoad(p, cb) > p.capacity {
							continue
						}
						before := routeCost(p, routes[a]) + routeCost(p, routes[b])
						after := routeCost(p, ca) + routeCost(p, cb)
						if after+1e-6 < before {
							routes[a] = ca
							routes[b] = cb
							improved = true
						}
					}
				}
			}
		}
	}
	return routes
}

// cost is the search objective: route distance plus heavy penalties for
// unassigned customers and capacity overload.
func cost(p problem, routes [][]int) float64 {
	total := routesCost(p, routes)
	present := map[int]bool{p.depot: true}
	for _, r := range routes {
		for _, idx := range r {
			present[idx] = true
		}
		if over := routeLoad(p, r) - p.capacity; over > 0 {
			total += p.penalty * (1 + float64(over)/float64(p.capacity))
		}
	}
	for i := range p.demands {
		if !present[i] {
			total += p.penalty
		}
	}
	return total
}

// routesCost is the plain distance sum, reported as the objective.
func routesCost(p problem, routes [][]int) float64 {
	total := 0.0
	for _, r := range routes {
		total += routeCost(p, r)
	}
	return total
}

func routeCost(p problem, r []int) float64 {
	if len(r) == 0 {
		return 0
	}
	total := p.dist[p.depot][r[0]]
	for i := 0; i < len(r)-1; i++ {
		total += p.dist[r[i]][r[i+1]]
	}
	total += p.dist[r[len(r)-1]][p.depot]
	return total
}

func feasible(p problem, routes [][]int) bool {
	present := map[int]bool{p.depot: true}
	for _, r := range routes {
		if routeLoad(p, r) > p.capacity {
			return false
		}
		for _, idx := range r {
			present[idx] = true
		}
	}
	for i := range p.demands {
		if !present[i] {
			return false
		}
	}
	return true
}

func routeLoad(p problem, r []int) int {
	load := 0
	for _, idx := range r {
		load += p.demands[idx]
	}
	return load
}

func canTake(p problem, r []int, idx int) bool {
	return routeLoad(p, r)+p.demands[idx] <= p.capacity
}

func appendCost(p problem, r []int, idx int) float64 {
	if len(r) == 0 {
		return 2 * p.dist[p.depot][idx]
	}
	last := r[len(r)-1]
	return p.dist[last][idx] + p.dist[idx][p.depot] - p.dist[last][p.depot]
}

func insertCost(p problem, r []int, idx, pos int) float64 {
	prev := p.depot
	if pos > 0 {
		prev = r[pos-1]
	}
	next := p.depot
	if pos < len(r) {
		next = r[pos]
	}
	return p.dist[prev][idx] + p.dist[idx][next] - p.dist[prev][next]
}

func insertAt(r []int, idx, pos int) []int {
	if pos >= len(r) {
		return append(r, idx)
	}
	out := append([]int(nil), r[:pos]...)
	out = append(out, idx)
	return append(out, r[pos:]...)
}

func leastLoaded(p problem, routes [][]int) int {
	best := 0
	for vi := range routes {
		if routeLoad(p, routes[vi]) < routeLoad(p, routes[best]) {
			best = vi
		}
	}
	return best
}

func nonEmptyRoutes(routes [][]int) int {
	n := 0
	for _, r := range routes {
		if len(r) > 0 {
			n++
		}
	}
	return n
}

func selectOp(weights []float64, rng *rand.Rand) int {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if sum <= 0 {
		return 0
	}
	r := rng.Float64() * sum
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r <= acc {
			return i
		}
	}
	return len(weights) - 1
}

func cloneRoutes(routes [][]int) [][]int {
	out := make([][]int, len(routes))
	for i, r := range routes {
		out[i] = append([]int(nil), r...)
	}
	return out
}
