package vrplib

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Package vrplib reads capacitated vehicle-routing instances in the VRPLIB
// plain-text format (NAME/DIMENSION/CAPACITY headers followed by coordinate,
// demand and depot sections).

// RoundFunc turns a raw Euclidean edge weight into the value the solver
// works with.
type RoundFunc func(float64) float64

var (
	Round RoundFunc = math.Round
	Trunc RoundFunc = math.Trunc
	Exact RoundFunc = func(v float64) float64 { return v }
)

// RoundPolicy resolves a policy name from configuration.
func RoundPolicy(name string) (RoundFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "round":
		return Round, nil
	case "trunc":
		return Trunc, nil
	case "none", "exact":
		return Exact, nil
	}
	return nil, fmt.Errorf("unknown rounding policy %q", name)
}

// Instance is one parsed routing problem. Node 0 is always the depot after
// parsing; Dist is the full matrix with the rounding policy already applied.
type Instance struct {
	Name      string
	Comment   string
	Type      string
	Dimension int
	Capacity  int
	Coords    [][2]float64
	Demands   []int
	Depot     int
	Dist      [][]float64
}

// Customers returns the number of non-depot nodes.
func (in *Instance) Customers() int { return in.Dimension - 1 }

// TotalDemand sums demand over all nodes.
func (in *Instance) TotalDemand() int {
	total := 0
	for _, d := range in.Demands {
		total += d
	}
	return total
}

// Read parses the instance at path and precomputes its distance matrix under
// the given rounding policy.
func Read(path string, round RoundFunc) (*Instance, error) {
	if round == nil {
		round = Round
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open instance: %w", err)
	}
	defer f.Close()

	in := &Instance{Depot: 0}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	section := ""
	edgeWeightType := "EUC_2D"
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line == "EOF" {
			break
		}
		if key, val, ok := headerLine(line); ok {
			section = ""
			switch key {
			case "NAME":
				in.Name = val
			case "COMMENT":
				in.Comment = val
			case "TYPE":
				in.Type = val
			case "DIMENSION":
				n, err := strconv.Atoi(val)
				if err != nil || n < 2 {
					return nil, fmt.Errorf("%s: bad DIMENSION %q", path, val)
				}
				in.Dimension = n
				in.Coords = make([][2]float64, n)
				in.Demands = make([]int, n)
			case "CAPACITY":
				c, err := strconv.Atoi(val)
				if err != nil || c <= 0 {
					return nil, fmt.Errorf("%s: bad CAPACITY %q", path, val)
				}
				in.Capacity = c
			case "EDGE_WEIGHT_TYPE":
				edgeWeightType = val
			}
			continue
		}
		switch line {
		case "NODE_COORD_SECTION", "DEMAND_SECTION", "DEPOT_SECTION":
			section = line
			continue
		}
		switch section {
		case "NODE_COORD_SECTION":
			if err := in.parseCoord(line); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		case "DEMAND_SECTION":
			if err := in.parseDemand(line); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		case "DEPOT_SECTION":
			id, err := strconv.Atoi(line)
			if err != nil {
				return nil, fmt.Errorf("%s: bad depot line %q", path, line)
			}
			if id > 0 {
				in.Depot = id - 1
			}
		default:
			return nil, fmt.Errorf("%s: unexpected line %q", path, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read instance: %w", err)
	}
	if err := in.validate(edgeWeightType); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	in.buildMatrix(round)
	return in, nil
}

func headerLine(line string) (key, val string, ok bool) {
	i := strings.Index(line, ":")
	if i < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:i])
	if key == "" || strings.Contains(key, " ") {
		return "", "", false
	}
	return key, strings.TrimSpace(line[i+1:]), true
}

func (in *Instance) parseCoord(line string) error {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return fmt.Errorf("bad coord line %q", line)
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil || id < 1 || id > in.Dimension {
		return fmt.Errorf("bad node id in %q", line)
	}
	x, errX := strconv.ParseFloat(fields[1], 64)
	y, errY := strconv.ParseFloat(fields[2], 64)
	if errX != nil || errY != nil {
		return fmt.Errorf("bad coordinates in %q", line)
	}
	in.Coords[id-1] = [2]float64{x, y}
	return nil
}

func (in *Instance) parseDemand(line string) error {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return fmt.Errorf("bad demand line %q", line)
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil || id < 1 || id > in.Dimension {
		return fmt.Errorf("bad node id in %q", line)
	}
	d, err := strconv.Atoi(fields[1])
	if err != nil || d < 0 {
		return fmt.Errorf("bad demand in %q", line)
	}
	in.Demands[id-1] = d
	return nil
}

func (in *Instance) validate(edgeWeightType string) error {
	if in.Dimension == 0 {
		return fmt.Errorf("missing DIMENSION")
	}
	if in.Capacity == 0 {
		return fmt.Errorf("missing CAPACITY")
	}
	if edgeWeightType != "EUC_2D" {
		return fmt.Errorf("unsupported EDGE_WEIGHT_TYPE %q", edgeWeightType)
	}
	if in.Depot < 0 || in.Depot >= in.Dimension {
		return fmt.Errorf("depot %d out of range", in.Depot+1)
	}
	if in.Demands[in.Depot] != 0 {
		return fmt.Errorf("depot has non-zero demand %d", in.Demands[in.Depot])
	}
	for i, d := range in.Demands {
		if i != in.Depot && d > in.Capacity {
			return fmt.Errorf("node %d demand %d exceeds capacity %d", i+1, d, in.Capacity)
		}
	}
	return nil
}

func (in *Instance) buildMatrix(round RoundFunc) {
	n := in.Dimension
	in.Dist = make([][]float64, n)
	for i := 0; i < n; i++ {
		in.Dist[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			dx := in.Coords[i][0] - in.Coords[j][0]
			dy := in.Coords[i][1] - in.Coords[j][1]
			in.Dist[i][j] = round(math.Hypot(dx, dy))
		}
	}
}
