package generator

import (
	"github.com/TFMV/fakeset/metrics"
	"github.com/TFMV/fakeset/pkg/core"
)

// Task is one unit of dispatch: generate Size rows for chunk ChunkID.
type Task struct {
	ChunkID int
	Size    int
}

// Plan splits a record count into equally sized chunks.
//
// ChunkSize is TotalRecords / ChunkCount and NumChunks is
// TotalRecords / ChunkSize, both floored. When TotalRecords is not a multiple
// of ChunkSize the remainder is not generated; see Truncated.
type Plan struct {
	TotalRecords int
	ChunkSize    int
	NumChunks    int
}

// NewPlan computes the plan for totalRecords split into about chunkCount chunks.
func NewPlan(totalRecords, chunkCount int) (Plan, error) {
	if totalRecords <= 0 {
		return Plan{}, core.Invalidf("total_records must be positive, got %d", totalRecords)
	}
	if chunkCount <= 0 {
		return Plan{}, core.Invalidf("chunk_count must be positive, got %d", chunkCount)
	}

	chunkSize := totalRecords / chunkCount
	if chunkSize == 0 {
		return Plan{}, core.Invalidf("total_records %d is smaller than chunk_count %d: chunk size would be 0",
			totalRecords, chunkCount)
	}

	return Plan{
		TotalRecords: totalRecords,
		ChunkSize:    chunkSize,
		NumChunks:    totalRecords / chunkSize,
	}, nil
}

// Tasks returns one task per chunk with contiguous IDs starting at 0.
func (p Plan) Tasks() []Task {
	tasks := make([]Task, p.NumChunks)
	for i := range tasks {
		tasks[i] = Task{ChunkID: i, Size: p.ChunkSize}
	}
	return tasks
}

// Rows is the number of rows the plan produces.
func (p Plan) Rows() int { return p.ChunkSize * p.NumChunks }

// Truncated is the number of requested records the plan drops.
func (p Plan) Truncated() int { return p.TotalRecords - p.Rows() }

// Metadata converts the plan for run reports.
func (p Plan) Metadata() metrics.PlanMetadata {
	return metrics.PlanMetadata{
		TotalRecords: p.TotalRecords,
		ChunkSize:    p.ChunkSize,
		NumChunks:    p.NumChunks,
		Rows:         p.Rows(),
		Truncated:    p.Truncated(),
	}
}

// UniqueSize is floor(chunkSize * (1 - duplicateFraction)).
func UniqueSize(chunkSize int, duplicateFraction float64) int {
	return int(float64(chunkSize) * (1 - duplicateFraction))
}

// DuplicateSize is the number of resampled rows in a chunk of chunkSize.
func DuplicateSize(chunkSize int, duplicateFraction float64) int {
	return chunkSize - UniqueSize(chunkSize, duplicateFraction)
}
