package list

import "postbox/internal/post"

// Phase identifies which variant of the list state is active.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseSuccess
	PhaseFailed
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the published list screen state. Posts is set only for
// PhaseSuccess, Err only for PhaseFailed.
type State struct {
	Phase Phase
	Posts []post.Post
	Err   error
}

func loading() State {
	return State{Phase: PhaseLoading}
}

func success(posts []post.Post) State {
	return State{Phase: PhaseSuccess, Posts: posts}
}

func failed(err error) State {
	return State{Phase: PhaseFailed, Err: err}
}
