package utils

import (
	"sync/atomic"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

var _ array.RecordReader = (*RecordSliceReader)(nil)

// RecordSliceReader is an array.RecordReader over records already in memory.
// It is used to hand generated datasets to APIs that consume streams, such as
// ADBC bulk ingestion.
type RecordSliceReader struct {
	refs    atomic.Int64
	schema  *arrow.Schema
	records []arrow.Record
	cur     int
}

// NewRecordSliceReader creates a reader over records, which must share
// schema. The reader retains the records until its last Release.
func NewRecordSliceReader(schema *arrow.Schema, records ...arrow.Record) *RecordSliceReader {
	for _, rec := range records {
		rec.Retain()
	}
	r := &RecordSliceReader{schema: schema, records: records, cur: -1}
	r.refs.Store(1)
	return r
}

// NewSingleRecordReader creates a reader yielding only record.
func NewSingleRecordReader(record arrow.Record) *RecordSliceReader {
	return NewRecordSliceReader(record.Schema(), record)
}

func (r *RecordSliceReader) Schema() *arrow.Schema {
	return r.schema
}

// Next advances to the next record.
func (r *RecordSliceReader) Next() bool {
	if r.cur+1 >= len(r.records) {
		r.cur = len(r.records)
		return false
	}
	r.cur++
	return true
}

// Record returns the current record, valid until the next call to Next.
func (r *RecordSliceReader) Record() arrow.Record {
	if r.cur < 0 || r.cur >= len(r.records) {
		return nil
	}
	return r.records[r.cur]
}

// Err always returns nil; the records are already materialized.
func (r *RecordSliceReader) Err() error {
	return nil
}

func (r *RecordSliceReader) Retain() {
	r.refs.Add(1)
}

// Release drops a reference. The records are released with the last one.
func (r *RecordSliceReader) Release() {
	if r.refs.Add(-1) == 0 {
		for _, rec := range r.records {
			rec.Release()
		}
		r.records = nil
	}
}
