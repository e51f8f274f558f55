// Package graphdoc decodes the declarative JSON task-graph document
// format into domain.Task values, shared between local file loads
// (the CLI) and documents fetched from the remote authoring service.
package graphdoc

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/felixgeelhaar/pacer/internal/scheduling/domain"
)

// Document is the top-level JSON structure of a task graph file.
type Document struct {
	Tasks []TaskImport `json:"tasks"`
}

// TaskImport mirrors one task node in the JSON document. Dependencies
// reference other tasks by Name.
type TaskImport struct {
	Name                  string   `json:"name"`
	Description           string   `json:"description,omitempty"`
	References            []string `json:"references,omitempty"`
	PointOfContact        string   `json:"point_of_contact,omitempty"`
	Effort                int      `json:"effort"`
	ParallelizationFactor int      `json:"parallelization_factor"`
	Dependencies          []string `json:"dependencies,omitempty"`
}

// Load reads and decodes a task graph document from a local file.
func Load(path string) ([]*domain.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph document: %w", err)
	}
	return Decode(data)
}

// Decode parses raw JSON bytes, such as those returned by the remote
// graph authoring service, into a dependency-resolved task list.
func Decode(data []byte) ([]*domain.Task, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing graph document: %w", err)
	}
	return resolve(doc)
}

// DecodeReader parses JSON from an arbitrary reader.
func DecodeReader(r io.Reader) ([]*domain.Task, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing graph document: %w", err)
	}
	return resolve(doc)
}

// resolve builds domain.Task values in two passes: the first pass
// constructs every task with an empty dependency list so forward
// references can be resolved in the second pass, then NewTask is
// called again to validate the fully-wired task.
func resolve(doc Document) ([]*domain.Task, error) {
	byName := make(map[string]TaskImport, len(doc.Tasks))
	for _, t := range doc.Tasks {
		if t.Name == "" {
			return nil, fmt.Errorf("%w: task with empty name", domain.ErrInvalidTask)
		}
		if _, dup := byName[t.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate task name %q", domain.ErrInvalidTask, t.Name)
		}
		byName[t.Name] = t
	}

	built := make(map[string]*domain.Task, len(doc.Tasks))
	var building func(name string, onPath map[string]bool) (*domain.Task, error)
	building = func(name string, onPath map[string]bool) (*domain.Task, error) {
		if task, ok := built[name]; ok {
			return task, nil
		}
		imp, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown dependency %q", domain.ErrInvalidTask, name)
		}
		if onPath[name] {
			return nil, domain.ErrCycleDetected
		}
		onPath[name] = true

		deps := make([]*domain.Task, 0, len(imp.Dependencies))
		for _, depName := range imp.Dependencies {
			dep, err := building(depName, onPath)
			if err != nil {
				return nil, err
			}
			deps = append(deps, dep)
		}

		task, err := domain.NewTask(imp.Name, imp.Description, imp.References, imp.PointOfContact, imp.Effort, imp.ParallelizationFactor, deps)
		if err != nil {
			return nil, err
		}
		built[name] = task
		delete(onPath, name)
		return task, nil
	}

	tasks := make([]*domain.Task, 0, len(doc.Tasks))
	for _, t := range doc.Tasks {
		task, err := building(t.Name, map[string]bool{})
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
