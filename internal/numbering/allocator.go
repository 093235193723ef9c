package numbering

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/logistiga/logistiga/internal/config"
)

// DocumentType identifies a numbered document family. The persisted prefix
// for each type lives in the numbering configuration, not here.
type DocumentType string

const (
	DocDevis         DocumentType = "devis"
	DocOrdreTravail  DocumentType = "ordre_travail"
	DocFacture       DocumentType = "facture"
	DocAvoir         DocumentType = "avoir"
	DocNoteDebit     DocumentType = "note_debit"
	DocNoteOperation DocumentType = "note_operation"
	DocNoteRemise    DocumentType = "note_remise"
	DocNoteRemiseLot DocumentType = "note_remise_lot"
)

// maxCollisionAttempts bounds the duplicate re-check loop. Exhausting it
// means the numbering data is corrupt, not a normal race.
const maxCollisionAttempts = 100

// ErrSequenceExhausted signals that a unique number could not be produced
// within the collision budget.
var ErrSequenceExhausted = errors.New("numbering: collision loop exhausted")

// ConfigStore is the slice of the configuration repository the allocator needs.
type ConfigStore interface {
	GetForUpdate(ctx context.Context, tx pgx.Tx, key string) (config.Configuration, error)
	Save(ctx context.Context, tx pgx.Tx, cfg config.Configuration) error
}

// DocumentScanner answers existence and max-suffix questions against the
// document table. Implementations must include soft-deleted rows so archived
// numbers are never reissued.
type DocumentScanner interface {
	MaxNumericSuffix(ctx context.Context, tx pgx.Tx, docType DocumentType, pattern string) (int64, error)
	NumberExists(ctx context.Context, tx pgx.Tx, docType DocumentType, numero string) (bool, error)
}

// Allocator hands out unique sequential document numbers. Allocate must run
// inside the caller's document-creation transaction so the configuration row
// lock covers the whole read-compute-write sequence.
type Allocator struct {
	configs ConfigStore
	scanner DocumentScanner
	logger  *slog.Logger
}

// NewAllocator constructs an Allocator.
func NewAllocator(configs ConfigStore, scanner DocumentScanner, logger *slog.Logger) *Allocator {
	return &Allocator{configs: configs, scanner: scanner, logger: logger}
}

// Allocate returns the next unique number for (docType, year) in the format
// {PREFIX}-{YEAR}-{SEQ:04d}. The stored counter is reconciled against the
// actual maximum existing suffix, so out-of-band inserts or manual counter
// edits heal on the next allocation instead of producing duplicates.
func (a *Allocator) Allocate(ctx context.Context, tx pgx.Tx, docType DocumentType, year int) (string, error) {
	cfg, err := a.configs.GetForUpdate(ctx, tx, config.KeyNumbering)
	if err != nil {
		return "", err
	}
	entry := config.ParseNumberingEntry(cfg.Data, string(docType))

	maxSuffix, err := a.scanner.MaxNumericSuffix(ctx, tx, docType, fmt.Sprintf("%s-%04d-%%", entry.Prefix, year))
	if err != nil {
		return "", fmt.Errorf("numbering: scan max suffix: %w", err)
	}

	next := entry.Next
	if maxSuffix+1 > next {
		next = maxSuffix + 1
	}

	numero := Format(entry.Prefix, year, next)
	for attempt := 0; ; attempt++ {
		if attempt >= maxCollisionAttempts {
			a.logger.Error("document number collision loop exhausted",
				slog.String("doc_type", string(docType)),
				slog.String("last_candidate", numero))
			return "", ErrSequenceExhausted
		}
		exists, err := a.scanner.NumberExists(ctx, tx, docType, numero)
		if err != nil {
			return "", fmt.Errorf("numbering: check %s: %w", numero, err)
		}
		if !exists {
			break
		}
		next++
		numero = Format(entry.Prefix, year, next)
	}

	entry.Next = next + 1
	config.SetNumberingEntry(cfg.Data, string(docType), entry)
	if err := a.configs.Save(ctx, tx, cfg); err != nil {
		return "", err
	}
	return numero, nil
}

// Format renders a document number: {PREFIX}-{YEAR:04d}-{SEQ:04d}.
// Sequences past 9999 widen rather than truncate.
func Format(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%04d-%04d", prefix, year, seq)
}

// NumericSuffix extracts the trailing sequence of a document number by
// splitting on the last dash. Returns false for unparsable suffixes, which
// the max-scan skips.
func NumericSuffix(numero string) (int64, bool) {
	idx := strings.LastIndex(numero, "-")
	if idx < 0 || idx == len(numero)-1 {
		return 0, false
	}
	n, err := strconv.ParseUint(numero[idx+1:], 10, 63)
	if err != nil {
		return 0, false
	}
	return int64(n), true
}
