package models

import (
	"time"

	"github.com/avoronov/storebox/internal/filex"
)

// StorageCapacity is the fixed per-account quota, 2 GiB.
const StorageCapacity int64 = 2 * 1024 * 1024 * 1024

// CategoryUsage accumulates the byte total for one category and the most
// recent modification seen in it. LatestModified is nil when the category
// has no records.
type CategoryUsage struct {
	Size           int64
	LatestModified *time.Time
}

// UsageReport is the per-category storage breakdown for one principal.
type UsageReport struct {
	Categories map[filex.Category]*CategoryUsage
	Used       int64
	Capacity   int64
}

// NewUsageReport returns a report with every category present at zero.
func NewUsageReport() *UsageReport {
	categories := make(map[filex.Category]*CategoryUsage, len(filex.Categories()))
	for _, c := range filex.Categories() {
		categories[c] = &CategoryUsage{}
	}
	return &UsageReport{Categories: categories, Capacity: StorageCapacity}
}

// Add folds one file into the report. The fold is commutative and
// associative, so record order does not matter.
func (r *UsageReport) Add(f *File) {
	usage, ok := r.Categories[f.Type]
	if !ok {
		usage = &CategoryUsage{}
		r.Categories[f.Type] = usage
	}
	usage.Size += f.Size
	r.Used += f.Size

	if usage.LatestModified == nil || f.UpdatedAt.After(*usage.LatestModified) {
		t := f.UpdatedAt
		usage.LatestModified = &t
	}
}
