// Package datautil compares generic (json decoded) data trees.
package datautil

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"

	"github.com/sagan/aimeta/constants"
)

type Op string

const (
	OpChanged Op = "~"
	OpAdded   Op = "+"
	OpRemoved Op = "-"
)

// Change is one leaf difference. From is unset for added values, To for removed ones.
type Change struct {
	Path string `json:"path"`
	Op   Op     `json:"op"`
	From any    `json:"from,omitempty"`
	To   any    `json:"to,omitempty"`
}

// DiffResult is the list of changes between two values, sorted by path.
type DiffResult struct {
	Changes []Change
}

// Diff computes the diff between a and b, which should be json decoded values
// (map[string]any, []any and scalars). If there are no differences, it returns nil.
func Diff(a, b any) *DiffResult {
	d := &DiffResult{}
	d.diff("", a, b)
	if len(d.Changes) == 0 {
		return nil
	}
	sort.SliceStable(d.Changes, func(i, j int) bool { return d.Changes[i].Path < d.Changes[j].Path })
	return d
}

// Empty reports whether there are no differences.
func (d *DiffResult) Empty() bool {
	return d == nil || len(d.Changes) == 0
}

func (d *DiffResult) MarshalJSON() ([]byte, error) {
	if d.Empty() {
		return []byte(constants.NULL), nil
	}
	return json.Marshal(d.Changes)
}

// Print writes a human-readable diff to the given writer.
//
// Format examples (paths):
//
//	~ parameters.Steps: 20 -> 30
//	+ models.Lora = detail.safetensors
//	- parameters.Seed = 42
func (d *DiffResult) Print(w io.Writer) error {
	if d.Empty() {
		_, err := fmt.Fprintln(w, "no differences")
		return err
	}
	for _, c := range d.Changes {
		var err error
		switch c.Op {
		case OpAdded:
			_, err = fmt.Fprintf(w, "+ %s = %v\n", c.Path, c.To)
		case OpRemoved:
			_, err = fmt.Fprintf(w, "- %s = %v\n", c.Path, c.From)
		default:
			_, err = fmt.Fprintf(w, "~ %s: %v -> %v\n", c.Path, c.From, c.To)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *DiffResult) diff(path string, a, b any) {
	if reflect.DeepEqual(a, b) {
		return
	}
	if aMap, ok := a.(map[string]any); ok {
		if bMap, ok := b.(map[string]any); ok {
			for k, av := range aMap {
				if bv, ok := bMap[k]; ok {
					d.diff(joinPath(path, k), av, bv)
				} else {
					d.Changes = append(d.Changes, Change{Path: joinPath(path, k), Op: OpRemoved, From: av})
				}
			}
			for k, bv := range bMap {
				if _, ok := aMap[k]; !ok {
					d.Changes = append(d.Changes, Change{Path: joinPath(path, k), Op: OpAdded, To: bv})
				}
			}
			return
		}
	}
	if aSlice, ok := a.([]any); ok {
		if bSlice, ok := b.([]any); ok {
			for i := range max(len(aSlice), len(bSlice)) {
				p := path + "[" + strconv.Itoa(i) + "]"
				switch {
				case i >= len(aSlice):
					d.Changes = append(d.Changes, Change{Path: p, Op: OpAdded, To: bSlice[i]})
				case i >= len(bSlice):
					d.Changes = append(d.Changes, Change{Path: p, Op: OpRemoved, From: aSlice[i]})
				default:
					d.diff(p, aSlice[i], bSlice[i])
				}
			}
			return
		}
	}
	d.Changes = append(d.Changes, Change{Path: path, Op: OpChanged, From: a, To: b})
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}
