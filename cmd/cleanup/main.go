package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/qs3c/rollbowl_go_server/config"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/clock"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/cron"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/logger"
)

var (
	dryRun      = flag.Bool("dry-run", true, "Dry run mode, only list expired reports")
	expireHours = flag.Int("expire-hours", 0, "Hours to keep local reports (0 = report.expire_hours from config)")
)

func main() {
	flag.Parse()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Log)

	hours := *expireHours
	if hours <= 0 {
		hours = cfg.Report.ExpireHours
	}
	dir := cfg.Report.TempDir
	log.Info().Str("dir", dir).Int("expire_hours", hours).Bool("dry_run", *dryRun).Msg("starting report cleanup")

	if *dryRun {
		count, size := scanExpired(dir, time.Duration(hours)*time.Hour)
		log.Info().Int("files", count).Str("size", formatSize(size)).
			Msg("dry run, nothing deleted; run with -dry-run=false to delete")
		return
	}

	removed := cron.NewService(nil, nil, clock.System(), dir, hours).CleanupReports()
	log.Info().Int("removed", removed).Msg("report cleanup completed")
}

// scanExpired 统计过期报表数量和大小
func scanExpired(dir string, expire time.Duration) (int, int64) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("read report dir failed")
		return 0, 0
	}

	var count int
	var size int64
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".xlsx") {
			continue
		}
		info, err := entry.Info()
		if err != nil || time.Since(info.ModTime()) <= expire {
			continue
		}
		count++
		size += info.Size()
		log.Info().Str("file", filepath.Join(dir, entry.Name())).
			Dur("age", time.Since(info.ModTime()).Round(time.Hour)).Msg("expired report")
	}
	return count, size
}

// formatSize 格式化文件大小
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
