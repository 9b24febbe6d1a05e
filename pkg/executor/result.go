package executor

import (
	"github.com/halfdome/devkit/pkg/catalog"
)

// Operation is the direction of a transition.
type Operation string

const (
	OpInstall   Operation = "install"
	OpUninstall Operation = "uninstall"
)

// Status is the terminal state of one component in a batch. Every
// component processed produces exactly one Result.
type Status string

const (
	StatusInstalled Status = "installed"
	StatusRemoved   Status = "removed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Result is the outcome for a single component.
type Result struct {
	Component catalog.Component
	Status    Status
	// Message is the one-line human explanation shown to the user.
	Message string
	Err     error
}

// Summary aggregates a whole batch.
type Summary struct {
	Op      Operation
	Results []Result
}

func (s *Summary) count(status Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

// Succeeded counts components brought to the desired state this run.
func (s *Summary) Succeeded() int {
	if s.Op == OpInstall {
		return s.count(StatusInstalled)
	}
	return s.count(StatusRemoved)
}

// Skipped counts components already in the desired state.
func (s *Summary) Skipped() int { return s.count(StatusSkipped) }

// Failed counts components whose transition failed.
func (s *Summary) Failed() int { return s.count(StatusFailed) }

func skip(c catalog.Component, msg string) Result {
	return Result{Component: c, Status: StatusSkipped, Message: msg}
}

func fail(c catalog.Component, err error) Result {
	return Result{Component: c, Status: StatusFailed, Message: err.Error(), Err: err}
}

func done(c catalog.Component, status Status, msg string) Result {
	return Result{Component: c, Status: status, Message: msg}
}
