package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/communityhub/member-qa/internal/config"
	"github.com/communityhub/member-qa/internal/core/domain"
	"github.com/communityhub/member-qa/internal/infrastructure/repository/postgres"
	"github.com/communityhub/member-qa/internal/observability/logging"
)

// namesync rebuilds the known-names registry file from the archived
// messages table. Run it after ingesting a new chat export.
func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("namesync", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	defer db.Close()

	records, err := postgres.NewMemberSource(db).Load(ctx)
	if err != nil {
		log.Fatalf("load member names: %v", err)
	}

	deduped := dedupe(records)
	sort.Slice(deduped, func(i, j int) bool {
		return strings.ToLower(deduped[i].Raw) < strings.ToLower(deduped[j].Raw)
	})

	data, err := json.MarshalIndent(deduped, "", "  ")
	if err != nil {
		log.Fatalf("marshal registry: %v", err)
	}
	if dir := filepath.Dir(cfg.KnownNamesPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("create registry dir: %v", err)
		}
	}
	if err := os.WriteFile(cfg.KnownNamesPath, append(data, '\n'), 0o644); err != nil {
		log.Fatalf("write registry file: %v", err)
	}

	logger.Info("registry file written",
		"path", cfg.KnownNamesPath,
		"members", len(deduped),
		"scanned", len(records),
	)
}

// dedupe keeps the first record for each normalized name, matching how
// the registry resolves duplicates at load time.
func dedupe(records []domain.MemberRecord) []domain.MemberRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]domain.MemberRecord, 0, len(records))
	for _, record := range records {
		if record.Normalized == "" {
			continue
		}
		if _, ok := seen[record.Normalized]; ok {
			continue
		}
		seen[record.Normalized] = struct{}{}
		out = append(out, record)
	}
	return out
}
