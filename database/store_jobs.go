package database

import (
	"sort"
	"time"

	"github.com/erinpaul2002/careops-backend/database/persist"
	"github.com/erinpaul2002/careops-backend/models"
	"github.com/erinpaul2002/careops-backend/utils"
)

// EnqueueJob stores a queued scheduled job.
func (s *Store) EnqueueJob(j *models.ScheduledJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j.Status = models.JobQueued
	j.UpdatedAt = time.Now().UTC()
	cp := *j
	s.jobs[j.ID] = &cp
	s.persist.Save(persist.CollJobs, j.ID, cp)
}

// GetJob returns a tenant's job by id.
func (s *Store) GetJob(tenantID, id string) (*models.ScheduledJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok || j.TenantID != tenantID {
		return nil, utils.NotFound("job", id)
	}
	cp := *j
	return &cp, nil
}

// ClaimDueJobs selects up to batch queued jobs with due instant <= now,
// ordered by priority then due instant ascending, and marks each running
// with the worker's lock before returning copies. Claim and lock happen
// under one critical section so two workers cannot pick the same job.
func (s *Store) ClaimDueJobs(now time.Time, batch int, workerID string) []models.ScheduledJob {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*models.ScheduledJob
	for _, j := range s.jobs {
		if j.Status == models.JobQueued && !j.DueAt.After(now) {
			due = append(due, j)
		}
	}
	sort.Slice(due, func(i, k int) bool {
		if due[i].Priority.Rank() != due[k].Priority.Rank() {
			return due[i].Priority.Rank() < due[k].Priority.Rank()
		}
		return due[i].DueAt.Before(due[k].DueAt)
	})
	if len(due) > batch {
		due = due[:batch]
	}

	claimed := make([]models.ScheduledJob, 0, len(due))
	lockTime := now
	for _, j := range due {
		j.Status = models.JobRunning
		j.LockedBy = workerID
		j.LockedAt = &lockTime
		j.UpdatedAt = now
		s.persist.Save(persist.CollJobs, j.ID, *j)
		claimed = append(claimed, *j)
	}
	return claimed
}

// CompleteJob marks a running job done and increments its attempt count.
func (s *Store) CompleteJob(id string) {
	s.finishJobLocked(id, models.JobDone, "")
}

// FailJob marks a running job failed, increments attempts and records the
// error text. Failed jobs are not re-queued; remediation is an operator
// action.
func (s *Store) FailJob(id string, errText string) {
	s.finishJobLocked(id, models.JobFailed, errText)
}

func (s *Store) finishJobLocked(id string, status models.JobStatus, errText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return
	}
	j.Status = status
	j.Attempts++
	j.LastError = errText
	j.LockedBy = ""
	j.LockedAt = nil
	j.UpdatedAt = time.Now().UTC()
	s.persist.Save(persist.CollJobs, j.ID, *j)
}

// ReclaimStaleJobs re-queues running jobs whose lock is older than maxAge.
// A crashed worker otherwise leaves its claims running forever. Attempt
// counts are preserved; re-execution is the at-least-once cost.
func (s *Store) ReclaimStaleJobs(now time.Time, maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, j := range s.jobs {
		if j.Status != models.JobRunning || j.LockedAt == nil {
			continue
		}
		if now.Sub(*j.LockedAt) < maxAge {
			continue
		}
		j.Status = models.JobQueued
		j.LockedBy = ""
		j.LockedAt = nil
		j.UpdatedAt = now
		s.persist.Save(persist.CollJobs, j.ID, *j)
		n++
	}
	return n
}
