package services

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"resumescreen/resume-screener/internal/config"
	"resumescreen/resume-screener/internal/models"
)

// mockScoreJitter is the half-width of the symmetric perturbation applied to
// a sampled entry's score.
const mockScoreJitter = 5

type CacheStore interface {
	// Load returns all cached entries in insertion order. An absent or
	// unreadable file yields an empty slice, never an error.
	Load() []models.CacheEntry
	// Save derives a CacheEntry from a successful file result, appends it
	// and rewrites the file, keeping only the most recent entries.
	Save(result models.FileResult) error
	// Sample returns one uniformly chosen entry with a perturbed score, the
	// caller's filename, a fresh timestamp and a marker prefix on the
	// candidate name. The second value is false when the store is empty.
	Sample(filename string) (models.CacheEntry, bool)
	// Stats summarizes the store for the cache-status endpoint.
	Stats() models.CacheStats
}

type cacheStore struct {
	filePath   string
	maxEntries int
	// mu serializes every read-modify-write of the file so concurrent
	// workers cannot lose each other's saves.
	mu  sync.Mutex
	log *logrus.Logger
}

func NewCacheStore(cfg config.CacheConfig, log *logrus.Logger) CacheStore {
	return &cacheStore{
		filePath:   cfg.FilePath,
		maxEntries: cfg.MaxEntries,
		log:        log,
	}
}

func (s *cacheStore) Load() []models.CacheEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *cacheStore) Save(result models.FileResult) error {
	if result.Analysis == nil || result.Analysis.Error != "" {
		return fmt.Errorf("only successful analyses are cached")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	analysis := result.Analysis
	entry := models.CacheEntry{
		ID:               cacheID(analysis.CandidateName, result.Filename, now),
		CandidateName:    analysis.CandidateName,
		Filename:         result.Filename,
		MatchScore:       analysis.MatchScore,
		Summary:          analysis.Summary,
		Strengths:        analysis.Strengths,
		ImprovementAreas: analysis.ImprovementAreas,
		Reasoning:        analysis.Reasoning,
		Recommendation:   analysis.Recommendation,
		ProcessingTime:   analysis.ProcessingTime,
		Timestamp:        now,
	}

	entries := append(s.loadLocked(), entry)
	if len(entries) > s.maxEntries {
		entries = entries[len(entries)-s.maxEntries:]
	}
	return s.writeLocked(entries)
}

func (s *cacheStore) Sample(filename string) (models.CacheEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.loadLocked()
	if len(entries) == 0 {
		return models.CacheEntry{}, false
	}

	entry := entries[rand.Intn(len(entries))]

	score := entry.MatchScore + rand.Intn(2*mockScoreJitter+1) - mockScoreJitter
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	entry.MatchScore = score
	entry.Filename = filename
	entry.Timestamp = time.Now()
	entry.CandidateName = "[Mock] " + entry.CandidateName
	return entry, true
}

func (s *cacheStore) Stats() models.CacheStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.loadLocked()

	stats := models.CacheStats{
		TotalCachedResponses:     len(entries),
		RecommendationsBreakdown: map[string]int{},
		LatestResponses:          []models.CacheEntry{},
	}

	if len(entries) == 0 {
		return stats
	}

	total := 0
	for _, entry := range entries {
		total += entry.MatchScore
		stats.RecommendationsBreakdown[entry.Recommendation]++
	}
	stats.AverageMatchScore = math.Round(float64(total)/float64(len(entries))*10) / 10

	latest := entries
	if len(latest) > 5 {
		latest = latest[len(latest)-5:]
	}
	stats.LatestResponses = append(stats.LatestResponses, latest...)
	return stats
}

func (s *cacheStore) loadLocked() []models.CacheEntry {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.WithError(err).Warn("Failed to read response cache")
		}
		return nil
	}

	var entries []models.CacheEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.log.WithError(err).Warn("Response cache is corrupt, starting empty")
		return nil
	}
	return entries
}

func (s *cacheStore) writeLocked(entries []models.CacheEntry) error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache entries: %w", err)
	}

	if err := os.WriteFile(s.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write response cache: %w", err)
	}
	return nil
}

// cacheID is the first 8 hex characters of a content hash over the entry's
// identity and creation instant.
func cacheID(candidateName, filename string, ts time.Time) string {
	sum := sha256.Sum256([]byte(candidateName + filename + ts.Format(time.RFC3339Nano)))
	return hex.EncodeToString(sum[:])[:8]
}
