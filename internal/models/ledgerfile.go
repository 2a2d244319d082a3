package models

import "time"

// LedgerFile describes one candidate file for duplicate grouping.
type LedgerFile struct {
	Path        string    `json:"path" yaml:"path"`
	ContentHash string    `json:"content_hash" yaml:"content_hash"`
	Size        int64     `json:"size" yaml:"size"`
	ModTime     time.Time `json:"mod_time" yaml:"mod_time"`
}

// DuplicateGroup is a set of byte-identical files. Survivor is the
// recommended canonical copy (most recently modified).
type DuplicateGroup struct {
	ContentHash string       `json:"content_hash" yaml:"content_hash"`
	Files       []LedgerFile `json:"files" yaml:"files"`
	Survivor    string       `json:"survivor" yaml:"survivor"`
}
