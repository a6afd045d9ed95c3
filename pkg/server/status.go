package server

import (
	"encoding/json"
	"os"
	"runtime"
	"time"

	"github.com/pbnjay/memory"
	"github.com/prometheus/procfs"
)

// serverStatus is the JSON document periodically written for external
// monitoring.
type serverStatus struct {
	Timestamp     string `json:"timestamp"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	UsersOnline   int    `json:"users_online"`
	LiveTables    int    `json:"live_tables"`
	Goroutines    int    `json:"goroutines"`
	RSSBytes      uint64 `json:"rss_bytes"`
	TotalMemBytes uint64 `json:"total_mem_bytes"`
	OpenFDs       int    `json:"open_fds"`
}

// writeStatusFile snapshots counts and memory usage to cfg.StatusFile.
// Failures are logged and otherwise ignored; monitoring must never
// affect play.
func (s *Server) writeStatusFile() {
	st := serverStatus{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       Version,
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		UsersOnline:   len(s.users),
		LiveTables:    s.tables.Count(),
		Goroutines:    runtime.NumGoroutine(),
		TotalMemBytes: memory.TotalMemory(),
	}
	if proc, err := procfs.Self(); err == nil {
		if stat, err := proc.Stat(); err == nil {
			st.RSSBytes = uint64(stat.ResidentMemory())
		}
		if n, err := proc.FileDescriptorsLen(); err == nil {
			st.OpenFDs = n
		}
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(s.cfg.StatusFile, data, 0o644); err != nil {
		s.log.Warnf("write status file %s: %v", s.cfg.StatusFile, err)
	}
}
