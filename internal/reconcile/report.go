package reconcile

import (
	"time"

	"tetsu/internal/resolver"
)

// Phase names a step of a reconciliation run.
type Phase string

const (
	PhaseDiscover Phase = "discover"
	PhaseProcess  Phase = "process"
	PhasePrune    Phase = "prune"
	PhaseDone     Phase = "done"
)

// Outcome classifies what happened to one file.
type Outcome string

const (
	OutcomeCached  Outcome = "cached"
	OutcomeMoved   Outcome = "moved"
	OutcomeHashed  Outcome = "hashed"
	OutcomeUnknown Outcome = "unknown"
	OutcomeFailed  Outcome = "failed"
)

// Result describes one processed file.
type Result struct {
	Path      string   `json:"path"`
	Outcome   Outcome  `json:"outcome"`
	FID       int64    `json:"fid,omitempty"`
	ED2K      string   `json:"ed2k,omitempty"`
	Size      int64    `json:"size"`
	Anime     string   `json:"anime,omitempty"`
	Episode   string   `json:"episode,omitempty"`
	Group     string   `json:"group,omitempty"`
	MovedFrom string   `json:"moved_from,omitempty"`
	Unknown   []string `json:"unknown,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// Counts totals a run's outcomes.
type Counts struct {
	Discovered int `json:"discovered"`
	Empty      int `json:"empty"`
	Cached     int `json:"cached"`
	Moved      int `json:"moved"`
	Hashed     int `json:"hashed"`
	Unknown    int `json:"unknown"`
	Failed     int `json:"failed"`
	Pruned     int `json:"pruned"`
}

// Report is the summary of a run. A run that aborted still returns the
// report gathered so far, with Phase set to where it stopped.
type Report struct {
	Root      string        `json:"root"`
	Phase     Phase         `json:"phase"`
	Counts    Counts        `json:"counts"`
	Results   []Result      `json:"results"`
	Pruned    []string      `json:"pruned,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed_ns"`
}

func (r *Report) add(result Result) {
	r.Results = append(r.Results, result)
	switch result.Outcome {
	case OutcomeCached:
		r.Counts.Cached++
	case OutcomeMoved:
		r.Counts.Moved++
	case OutcomeHashed:
		r.Counts.Hashed++
	case OutcomeUnknown:
		r.Counts.Unknown++
	case OutcomeFailed:
		r.Counts.Failed++
	}
}

func resultFromDescription(desc *resolver.Description) Result {
	result := Result{
		Path:      desc.Path,
		ED2K:      desc.ED2K,
		Size:      desc.Size,
		MovedFrom: desc.Entry.MovedFrom,
		Unknown:   desc.Unknown,
	}
	if desc.File == nil {
		result.Outcome = OutcomeUnknown
		return result
	}
	result.FID = desc.File.FID
	switch desc.Source {
	case resolver.SourceMoved:
		result.Outcome = OutcomeMoved
	case resolver.SourceHashed:
		result.Outcome = OutcomeHashed
	default:
		result.Outcome = OutcomeCached
	}
	if desc.Anime != nil {
		result.Anime = desc.Anime.Title()
	}
	if desc.Episode != nil {
		result.Episode = desc.Episode.Number
	}
	if desc.Group != nil {
		result.Group = desc.Group.ShortName
		if result.Group == "" {
			result.Group = desc.Group.Name
		}
	}
	return result
}
