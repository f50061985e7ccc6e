package vrplib

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Solution is a reference solution read from a VRPLIB .sol file, used to
// report gaps against best-known costs.
type Solution struct {
	Routes [][]int
	Cost   float64
}

// ReadSolution parses a .sol file of the form
//
//	Route #1: 5 2 9
//	Route #2: 7 3
//	Cost 27591
func ReadSolution(path string) (*Solution, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open solution: %w", err)
	}
	defer f.Close()

	sol := &Solution{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "route"):
			i := strings.Index(line, ":")
			if i < 0 {
				return nil, fmt.Errorf("%s: bad route line %q", path, line)
			}
			var route []int
			for _, tok := range strings.Fields(line[i+1:]) {
				id, err := strconv.Atoi(tok)
				if err != nil {
					return nil, fmt.Errorf("%s: bad node %q in route line", path, tok)
				}
				route = append(route, id)
			}
			sol.Routes = append(sol.Routes, route)
		case strings.HasPrefix(lower, "cost"):
			val := strings.TrimSpace(line[4:])
			val = strings.TrimSpace(strings.TrimPrefix(val, ":"))
			c, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: bad cost line %q", path, line)
			}
			sol.Cost = c
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read solution: %w", err)
	}
	if sol.Cost == 0 && len(sol.Routes) == 0 {
		return nil, fmt.Errorf("%s: no routes or cost found", path)
	}
	return sol, nil
}
