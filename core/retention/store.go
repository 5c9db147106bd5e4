package retention

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/davidahmann/ctxmap/core/contextmap"
	coreerrors "github.com/davidahmann/ctxmap/core/errors"
	"github.com/davidahmann/ctxmap/core/fsx"
	schemacontextmap "github.com/davidahmann/ctxmap/core/schema/v1/contextmap"
)

const (
	// ContextDirName is the hidden sibling directory holding context maps for
	// one generated artifact.
	ContextDirName = ".ctxmap"
	// DefaultMaxSamples is the retention window applied when the caller
	// passes a non-positive limit.
	DefaultMaxSamples = 5

	sequenceInfix        = ".context."
	sequenceSuffix       = ".json"
	maxAllocateAttempts  = 5
	contextFileMode      = 0o644
	contextDirectoryMode = 0o750
)

// Store owns the on-disk file sequence for one output target: naming,
// monotonic numbering, and pruning to the retention window.
type Store struct {
	directory  string
	basename   string
	maxSamples int
	logger     *zap.Logger
}

// Entry is one retained context file, identified by its sequence number.
type Entry struct {
	Sequence int
	Path     string
}

// NewStore builds a store for the artifact at outputPath. Context files live
// in a hidden sibling directory next to the artifact and are named
// <basename>.context.<N>.json.
func NewStore(outputPath string, maxSamples int, logger *zap.Logger) *Store {
	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cleanPath := filepath.Clean(outputPath)
	return &Store{
		directory:  filepath.Join(filepath.Dir(cleanPath), ContextDirName),
		basename:   filepath.Base(cleanPath),
		maxSamples: maxSamples,
		logger:     logger,
	}
}

func (s *Store) Directory() string { return s.directory }

func (s *Store) Basename() string { return s.basename }

func (s *Store) MaxSamples() int { return s.maxSamples }

// List returns the retained entries for this basename in ascending sequence
// order. Files that do not match the naming convention are ignored.
func (s *Store) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read context directory: %w", err)
	}

	prefix := s.basename + sequenceInfix
	entries := make([]Entry, 0, len(dirEntries))
	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() {
			continue
		}
		name := dirEntry.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, sequenceSuffix) {
			continue
		}
		middle := strings.TrimSuffix(strings.TrimPrefix(name, prefix), sequenceSuffix)
		sequence, parseErr := strconv.Atoi(middle)
		if parseErr != nil || sequence < 0 || strings.HasPrefix(middle, "+") {
			continue
		}
		entries = append(entries, Entry{Sequence: sequence, Path: filepath.Join(s.directory, name)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Sequence < entries[j].Sequence })
	return entries, nil
}

// NextSequenceNumber returns max(existing N)+1, or 0 when no file matches.
func (s *Store) NextSequenceNumber() (int, error) {
	entries, err := s.List()
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}
	return entries[len(entries)-1].Sequence + 1, nil
}

func (s *Store) sequencePath(sequence int) string {
	return filepath.Join(s.directory, fmt.Sprintf("%s%s%d%s", s.basename, sequenceInfix, sequence, sequenceSuffix))
}

func (s *Store) lockPath() string {
	return filepath.Join(s.directory, "."+s.basename+sequenceInfix+"lock")
}

// Persist writes one context map into the next slot of the sequence and
// prunes the retention window, all under a directory-scoped lock so
// concurrent generations for the same basename cannot collide. The returned
// path names the durably renamed file.
func (s *Store) Persist(m schemacontextmap.ContextMap) (string, error) {
	encoded, err := contextmap.Encode(m)
	if err != nil {
		return "", coreerrors.Wrap(err, coreerrors.CategoryStorage, "context_encode_failed", "the accumulated context map could not be serialized", false)
	}
	if err := os.MkdirAll(s.directory, contextDirectoryMode); err != nil {
		return "", coreerrors.Wrap(fmt.Errorf("create context directory: %w", err), coreerrors.CategoryStorage, "context_dir_create_failed", "check permissions on the artifact's directory", false)
	}

	var persistedPath string
	lockErr := fsx.WithFileLock(s.lockPath(), func() error {
		for attempt := 0; attempt < maxAllocateAttempts; attempt++ {
			sequence, seqErr := s.NextSequenceNumber()
			if seqErr != nil {
				return coreerrors.Wrap(seqErr, coreerrors.CategoryStorage, "context_sequence_scan_failed", "check permissions on the context directory", false)
			}
			targetPath := s.sequencePath(sequence)
			if _, statErr := os.Lstat(targetPath); statErr == nil {
				// Lost the slot to an out-of-band writer; re-scan for a higher N.
				continue
			}
			if writeErr := fsx.WriteFileAtomic(targetPath, encoded, contextFileMode); writeErr != nil {
				return coreerrors.Wrap(writeErr, coreerrors.CategoryStorage, "context_persist_failed", "check free space and permissions on the context directory", false)
			}
			persistedPath = targetPath
			s.pruneLocked()
			return nil
		}
		return coreerrors.Wrap(
			fmt.Errorf("allocate sequence number: %d attempts exhausted", maxAllocateAttempts),
			coreerrors.CategoryStorage,
			"context_sequence_contention",
			"another writer is racing this basename; retry the generation",
			true,
		)
	})
	if lockErr != nil {
		if coreerrors.CategoryOf(lockErr) == coreerrors.CategoryStorage {
			return "", lockErr
		}
		return "", coreerrors.Wrap(lockErr, coreerrors.CategoryStorage, "context_lock_failed", "remove a stale lock file from the context directory", true)
	}

	s.logger.Debug("context map persisted",
		zap.String("path", persistedPath),
		zap.String("basename", s.basename),
	)
	return persistedPath, nil
}

// Prune deletes every retained file beyond the newest maxSamples. Deletion
// failures are logged and swallowed; cleanup is best effort and must never
// fail the generation.
func (s *Store) Prune() error {
	return fsx.WithFileLock(s.lockPath(), func() error {
		s.pruneLocked()
		return nil
	})
}

func (s *Store) pruneLocked() {
	entries, err := s.List()
	if err != nil {
		s.logger.Warn("list context files for prune", zap.Error(err))
		return
	}
	if len(entries) <= s.maxSamples {
		return
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Sequence > entries[j].Sequence })
	for _, stale := range entries[s.maxSamples:] {
		if removeErr := os.Remove(stale.Path); removeErr != nil {
			s.logger.Warn("prune context file",
				zap.String("path", stale.Path),
				zap.Error(removeErr),
			)
			continue
		}
		s.logger.Debug("pruned context file", zap.String("path", stale.Path))
	}
}

// VerifyGenerationIDs audits the retained set for duplicate generation ids,
// which must be unique per target. Duplicates are reported as a validation
// failure listing every offending file pair.
func (s *Store) VerifyGenerationIDs() error {
	entries, err := s.List()
	if err != nil {
		return coreerrors.Wrap(err, coreerrors.CategoryIOFailure, "context_list_failed", "check permissions on the context directory", false)
	}
	seen := make(map[string]string, len(entries))
	var violations []contextmap.Violation
	for _, entry := range entries {
		m, loadErr := contextmap.Load(entry.Path)
		if loadErr != nil {
			violations = append(violations, contextmap.Violation{
				Field:  entry.Path,
				Reason: fmt.Sprintf("unreadable context map: %v", loadErr),
			})
			continue
		}
		if previous, duplicate := seen[m.GenerationID]; duplicate {
			violations = append(violations, contextmap.Violation{
				Field:  entry.Path,
				Reason: fmt.Sprintf("generation_id %s already used by %s", m.GenerationID, previous),
			})
			continue
		}
		seen[m.GenerationID] = entry.Path
	}
	if len(violations) == 0 {
		return nil
	}
	return coreerrors.Wrap(
		&contextmap.ValidationError{Violations: violations},
		coreerrors.CategoryValidation,
		"context_generation_ids_duplicated",
		"regenerate the retained context maps with fresh generation ids",
		false,
	)
}
