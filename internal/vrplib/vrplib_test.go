package vrplib

import (
	"os"
	"path/filepath"
	"testing"
)

const toyInstance = `NAME : toy-n5-k2
COMMENT : test fixture
TYPE : CVRP
DIMENSION : 5
EDGE_WEIGHT_TYPE : EUC_2D
CAPACITY : 10
NODE_COORD_SECTION
1 0 0
2 0 3
3 4 0
4 3 4
5 1 1
DEMAND_SECTION
1 0
2 4
3 4
4 6
5 3
DEPOT_SECTION
1
-1
EOF
`

func writeToy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "toy.vrp")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestReadParsesHeadersAndSections(t *testing.T) {
	in, err := Read(writeToy(t, toyInstance), Round)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if in.Name != "toy-n5-k2" || in.Type != "CVRP" {
		t.Fatalf("bad headers: %+v", in)
	}
	if in.Dimension != 5 || in.Capacity != 10 || in.Depot != 0 {
		t.Fatalf("bad dimensions: dim=%d cap=%d depot=%d", in.Dimension, in.Capacity, in.Depot)
	}
	if in.Customers() != 4 || in.TotalDemand() != 17 {
		t.Fatalf("customers=%d demand=%d", in.Customers(), in.TotalDemand())
	}
	if got := in.Dist[0][1]; got != 3 {
		t.Fatalf("dist depot->node2 = %v, want 3", got)
	}
	if got := in.Dist[1][2]; got != 5 {
		t.Fatalf("dist node2->node3 = %v, want 5", got)
	}
}

func TestRoundingPolicies(t *testing.T) {
	// nodes 4 and 5: hypot(2,3) = 3.6055...
	rounded, err := Read(writeToy(t, toyInstance), Round)
	if err != nil {
		t.Fatalf("Read round: %v", err)
	}
	truncated, err := Read(writeToy(t, toyInstance), Trunc)
	if err != nil {
		t.Fatalf("Read trunc: %v", err)
	}
	exact, err := Read(writeToy(t, toyInstance), Exact)
	if err != nil {
		t.Fatalf("Read exact: %v", err)
	}
	if got := rounded.Dist[3][4]; got != 4 {
		t.Fatalf("round: got %v, want 4", got)
	}
	if got := truncated.Dist[3][4]; got != 3 {
		t.Fatalf("trunc: got %v, want 3", got)
	}
	if got := exact.Dist[3][4]; got < 3.6 || got > 3.61 {
		t.Fatalf("exact: got %v, want ~3.6056", got)
	}
}

func TestRoundPolicyNames(t *testing.T) {
	for _, name := range []string{"", "round", "trunc", "none", "Exact"} {
		if _, err := RoundPolicy(name); err != nil {
			t.Fatalf("RoundPolicy(%q): %v", name, err)
		}
	}
	if _, err := RoundPolicy("banker"); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope.vrp"), Round); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReadMalformed(t *testing.T) {
	cases := map[string]string{
		"no capacity":      "NAME : x\nDIMENSION : 2\nNODE_COORD_SECTION\n1 0 0\n2 1 1\nDEMAND_SECTION\n1 0\n2 1\nEOF\n",
		"bad coord":        "NAME : x\nDIMENSION : 2\nCAPACITY : 5\nNODE_COORD_SECTION\n1 a b\nEOF\n",
		"stray line":       "NAME : x\nDIMENSION : 2\nCAPACITY : 5\nwhat is this\nEOF\n",
		"unsupported type": "NAME : x\nDIMENSION : 2\nCAPACITY : 5\nEDGE_WEIGHT_TYPE : GEO\nNODE_COORD_SECTION\n1 0 0\n2 1 1\nDEMAND_SECTION\n1 0\n2 1\nEOF\n",
		"demand over cap":  "NAME : x\nDIMENSION : 2\nCAPACITY : 5\nNODE_COORD_SECTION\n1 0 0\n2 1 1\nDEMAND_SECTION\n1 0\n2 9\nEOF\n",
	}
	for label, content := range cases {
		if _, err := Read(writeToy(t, content), Round); err == nil {
			t.Fatalf("%s: expected parse error", label)
		}
	}
}

func TestReadSolution(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toy.sol")
	content := "Route #1: 2 4\nRoute #2: 3 5\nCost 27591\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	sol, err := ReadSolution(path)
	if err != nil {
		t.Fatalf("ReadSolution: %v", err)
	}
	if sol.Cost != 27591 {
		t.Fatalf("cost = %v, want 27591", sol.Cost)
	}
	if len(sol.Routes) != 2 || len(sol.Routes[0]) != 2 || sol.Routes[1][1] != 5 {
		t.Fatalf("bad routes: %+v", sol.Routes)
	}
}

func TestReadSolutionEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.sol")
	if err := os.WriteFile(path, []byte("\n"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := ReadSolution(path); err == nil {
		t.Fatal("expected error for empty solution file")
	}
}
