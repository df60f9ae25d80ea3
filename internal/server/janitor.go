package server

import (
	"os"
	"path/filepath"
	"time"
)

// scheduleCleanup registers the periodic job sweep. The schedule runs
// once the cron is started by Run.
func (s *Server) scheduleCleanup() error {
	_, err := s.cron.AddFunc("@every 1m", s.cleanupExpired)
	return err
}

// cleanupExpired drops expired jobs and their output directories, then
// removes orphaned directories left behind by earlier processes.
func (s *Server) cleanupExpired() {
	expired := s.store.Cleanup()
	for _, id := range expired {
		if err := os.RemoveAll(s.jobDir(id)); err != nil {
			s.logger.Warn("cleanup failed", "job", id, "error", err)
		}
	}
	if len(expired) > 0 {
		s.logger.Info("cleaned up expired jobs", "count", len(expired))
	}

	s.removeOrphans()
}

// removeOrphans deletes work directories that no live job owns and that
// are old enough to be certainly stale. The age cutoff keeps directories
// of jobs submitted just before a restart.
func (s *Server) removeOrphans() {
	entries, err := os.ReadDir(s.cfg.WorkDir)
	if err != nil {
		return
	}

	cutoff := time.Now().Add(-2 * s.cfg.JobTTL)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if s.store.Get(e.Name()) != nil {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		dir := filepath.Join(s.cfg.WorkDir, e.Name())
		if err := os.RemoveAll(dir); err != nil {
			s.logger.Warn("orphan removal failed", "dir", dir, "error", err)
		} else {
			s.logger.Info("removed orphaned job dir", "dir", dir)
		}
	}
}
