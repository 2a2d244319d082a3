package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"

	"fjacquet/ledger-audit/internal/models"
)

// HashFile computes the full-file content digest used for duplicate
// grouping. Exact-match only; files re-typed with the same transactions
// hash differently and are handled by the semantic pass.
func HashFile(path string) (models.LedgerFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.LedgerFile{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return models.LedgerFile{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return models.LedgerFile{}, fmt.Errorf("failed to hash %s: %w", path, err)
	}

	return models.LedgerFile{
		Path:        path,
		ContentHash: hex.EncodeToString(h.Sum(nil)),
		Size:        info.Size(),
		ModTime:     info.ModTime(),
	}, nil
}

// FindDuplicateFiles groups candidates by content hash. Every group with
// more than one member is a byte-identical duplicate set; the most recently
// modified file is recommended as the survivor.
func FindDuplicateFiles(files []models.LedgerFile) []models.DuplicateGroup {
	byHash := make(map[string][]models.LedgerFile)
	for _, file := range files {
		byHash[file.ContentHash] = append(byHash[file.ContentHash], file)
	}

	var groups []models.DuplicateGroup
	for hash, members := range byHash {
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(i, j int) bool {
			return members[i].Path < members[j].Path
		})

		survivor := members[0]
		for _, member := range members[1:] {
			if member.ModTime.After(survivor.ModTime) {
				survivor = member
			}
		}

		groups = append(groups, models.DuplicateGroup{
			ContentHash: hash,
			Files:       members,
			Survivor:    survivor.Path,
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Files[0].Path < groups[j].Files[0].Path
	})
	return groups
}

// SemanticDuplicate flags transactions with the same (date, amount,
// normalized description) appearing in more than one file. This is an
// advisory signal only, never auto-deleted.
type SemanticDuplicate struct {
	Date        string
	Amount      string
	Description string
	Locations   []models.SourceLocation
}

// FindSemanticDuplicates runs the weaker cross-file duplicate pass over
// already-parsed transactions, keyed by file path.
func FindSemanticDuplicates(byFile map[string][]*models.Transaction) []SemanticDuplicate {
	type entry struct {
		date, amount, desc string
		locations          []models.SourceLocation
		files              map[string]bool
	}
	index := make(map[string]*entry)

	for path, txns := range byFile {
		for _, t := range txns {
			amount := semanticAmount(t)
			desc := models.NormalizeDescription(t.Description)
			date := t.Date.Format("2006-01-02")
			key := date + "|" + amount + "|" + desc

			e, ok := index[key]
			if !ok {
				e = &entry{date: date, amount: amount, desc: desc, files: map[string]bool{}}
				index[key] = e
			}
			e.locations = append(e.locations, t.Source)
			e.files[path] = true
		}
	}

	var dups []SemanticDuplicate
	for _, e := range index {
		if len(e.files) < 2 {
			continue
		}
		dups = append(dups, SemanticDuplicate{
			Date:        e.date,
			Amount:      e.amount,
			Description: e.desc,
			Locations:   e.locations,
		})
	}

	sort.Slice(dups, func(i, j int) bool {
		if dups[i].Date != dups[j].Date {
			return dups[i].Date < dups[j].Date
		}
		return dups[i].Description < dups[j].Description
	})
	return dups
}

// semanticAmount is the magnitude of the transaction for duplicate keying:
// the absolute amount of its first non-elided posting.
func semanticAmount(t *models.Transaction) string {
	for _, posting := range t.Postings {
		if !posting.Elided {
			return posting.Amount.Abs().String()
		}
	}
	return ""
}
