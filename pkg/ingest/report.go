package ingest

import (
	"fmt"
	"time"

	"liyu1981.xyz/energy-dashboard-service/pkg/common"
	"liyu1981.xyz/energy-dashboard-service/pkg/models"
)

type Kind string

const (
	KindNILM Kind = "nilm"
	KindPV   Kind = "pv"
)

// KindAll selects every kind in ParseKinds.
const KindAll = "all"

// ParseKinds resolves a kind name, or KindAll when allowAll is set, to the
// kinds it selects in import order.
func ParseKinds(name string, allowAll bool) ([]Kind, error) {
	switch name {
	case string(KindNILM), string(KindPV):
		return []Kind{Kind(name)}, nil
	case KindAll:
		if allowAll {
			return []Kind{KindNILM, KindPV}, nil
		}
	}
	return nil, fmt.Errorf("unknown record kind %q", name)
}

type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// FileResult is the outcome for one source file, or for one
// building/location combination whose file was not found.
type FileResult struct {
	Building models.Building `json:"building,omitempty"`
	Location models.Location `json:"location,omitempty"`
	Path     string          `json:"path"`
	Status   Status          `json:"status"`
	Records  int             `json:"records"`
	Dropped  int             `json:"dropped"`
	Batches  int             `json:"batches"`
	Error    string          `json:"error,omitempty"`
}

type Report struct {
	Kind       Kind         `json:"kind"`
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt time.Time    `json:"finishedAt"`
	Cleared    int64        `json:"cleared"`
	Generated  bool         `json:"generated"`
	Files      []FileResult `json:"files"`
}

func (r *Report) Records() int {
	return common.Reducer(r.Files, func(total int, f FileResult) int {
		return total + f.Records
	}, 0)
}

func (r *Report) Count(status Status) int {
	n := 0
	for _, f := range r.Files {
		if f.Status == status {
			n++
		}
	}
	return n
}
