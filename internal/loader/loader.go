// Package loader reads schedule documents from JSON and builds the task
// graph they describe.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/gjson"

	"github.com/AstridBonoan/plumbline/internal/metrics"
	"github.com/AstridBonoan/plumbline/internal/schedule"
)

// Document is the on-disk schedule format.
type Document struct {
	Name         string                `json:"name"`
	Tasks        []schedule.Task       `json:"tasks"`
	Dependencies []schedule.Dependency `json:"dependencies"`
}

// Read returns the raw bytes of a schedule document. "-" reads stdin.
func Read(path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read schedule: %w", err)
	}
	return data, nil
}

// Load reads a schedule from path and builds its graph. "-" reads stdin.
func Load(path string) (*schedule.Graph, *Document, error) {
	data, err := Read(path)
	if err != nil {
		return nil, nil, err
	}
	return Parse(data)
}

// Parse builds a task graph from raw JSON. The task list may sit at the top
// level or under a "schedule" or "project" envelope.
func Parse(data []byte) (*schedule.Graph, *Document, error) {
	if !gjson.ValidBytes(data) {
		metrics.InputRejects.WithLabelValues("invalid_json").Inc()
		return nil, nil, fmt.Errorf("parse schedule: invalid JSON")
	}

	doc, err := decode(data)
	if err != nil {
		metrics.InputRejects.WithLabelValues("bad_document").Inc()
		return nil, nil, err
	}

	g := schedule.NewGraph()
	for _, task := range doc.Tasks {
		if err := g.AddTask(task); err != nil {
			metrics.InputRejects.WithLabelValues(rejectReason(err)).Inc()
			return nil, nil, fmt.Errorf("build graph: %w", err)
		}
	}
	for _, dep := range doc.Dependencies {
		if err := g.AddDependency(dep); err != nil {
			metrics.InputRejects.WithLabelValues(rejectReason(err)).Inc()
			return nil, nil, fmt.Errorf("build graph: %w", err)
		}
	}
	return g, doc, nil
}

// decode locates the task list and unmarshals the document around it.
func decode(data []byte) (*Document, error) {
	root := gjson.ParseBytes(data)
	for _, key := range []string{"", "schedule", "project"} {
		node := root
		if key != "" {
			node = root.Get(key)
			if !node.Exists() {
				continue
			}
		}
		if !node.Get("tasks").IsArray() {
			continue
		}
		var doc Document
		if err := json.Unmarshal([]byte(node.Raw), &doc); err != nil {
			return nil, fmt.Errorf("parse schedule: %w", err)
		}
		return &doc, nil
	}
	return nil, errors.New("parse schedule: no task list found")
}

// rejectReason maps a graph error onto a metrics label.
func rejectReason(err error) string {
	var (
		dupErr     *schedule.DuplicateTaskError
		unknownErr *schedule.UnknownTaskError
		cycleErr   *schedule.CycleError
		valErr     *schedule.ValidationError
	)
	switch {
	case errors.As(err, &dupErr):
		return "duplicate_task"
	case errors.As(err, &unknownErr):
		return "unknown_task"
	case errors.As(err, &cycleErr):
		return "cycle"
	case errors.As(err, &valErr):
		return "validation"
	}
	return "other"
}
