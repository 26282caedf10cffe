package model

import "strconv"

// ResultHeader is the header row of the results CSV.
var ResultHeader = []string{"graph_id", "rel_name", "expected", "predicted"}

type Result struct {
	GraphID   int    `json:"graph_id"`
	RelName   string `json:"rel_name"`
	Expected  string `json:"expected"`
	Predicted string `json:"predicted"`
}

func (r Result) Correct() bool {
	return r.Predicted != "" && r.Predicted == r.Expected
}

func (r Result) Row() []string {
	return []string{strconv.Itoa(r.GraphID), r.RelName, r.Expected, r.Predicted}
}

// Summary aggregates one evaluation run.
type Summary struct {
	RunID     string  `json:"run_id"`
	Total     int     `json:"total"`
	Instances int     `json:"instances"`
	Correct   int     `json:"correct"`
	Empty     int     `json:"empty"`
	Skipped   int     `json:"skipped_batches"`
	Accuracy  float64 `json:"accuracy"`
}
