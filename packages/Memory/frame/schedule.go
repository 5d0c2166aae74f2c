package frame

import (
	"errors"
	"fmt"

	"github.com/mizz1e/snowdrop-sub000/packages/Memory/logging/logfields"
)

// ErrDuplicateJob is returned when a job name is added twice to a schedule.
var ErrDuplicateJob = errors.New("duplicate job")

// Job is one named unit of per-frame work.
type Job struct {
	Name string
	Run  func()

	failures int
}

// Schedule runs its jobs in insertion order. A panicking job is logged and
// skipped for that run; the remaining jobs still run.
type Schedule struct {
	Name string
	jobs []*Job
	runs uint64
}

func NewSchedule(name string) *Schedule {
	return &Schedule{Name: name}
}

func (s *Schedule) Add(name string, run func()) error {
	for _, j := range s.jobs {
		if j.Name == name {
			return fmt.Errorf("%w %q in schedule %s", ErrDuplicateJob, name, s.Name)
		}
	}
	s.jobs = append(s.jobs, &Job{Name: name, Run: run})
	return nil
}

func (s *Schedule) Run() {
	s.runs++
	for _, j := range s.jobs {
		s.run(j)
	}
}

func (s *Schedule) run(j *Job) {
	defer func() {
		if r := recover(); r != nil {
			j.failures++
			// First failure, then every 1000th.
			if j.failures%1000 == 1 {
				log.WithField(logfields.Stage, s.Name).
					WithField("job", j.Name).
					WithField("failures", j.failures).
					Errorf("Job panicked: %v", r)
			}
		}
	}()
	j.Run()
}

// Jobs returns the job names in run order.
func (s *Schedule) Jobs() []string {
	names := make([]string, len(s.jobs))
	for i, j := range s.jobs {
		names[i] = j.Name
	}
	return names
}

// Runs returns how many times the schedule has run.
func (s *Schedule) Runs() uint64 {
	return s.runs
}

// Failures returns the panic count of a job.
func (s *Schedule) Failures(name string) int {
	for _, j := range s.jobs {
		if j.Name == name {
			return j.failures
		}
	}
	return 0
}
