// Package drafts turns rendered notices into things a person can send:
// mailto links and unsent .eml drafts on disk.
package drafts

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jhillyerd/enmime"

	"tsreminder/internal"
	"tsreminder/internal/pipeline"
	"tsreminder/internal/storage"
)

var ErrInvalidRecipient = errors.New("invalid recipient address")

const (
	KindWorker   = "worker"
	KindApprover = "approver"
)

type Draft struct {
	Kind    string
	To      string
	ToName  string
	Subject string
	Body    string
}

// Hash identifies a draft by its addressing and content, not by when it
// was written.
func (d Draft) Hash() string {
	sum := sha256.Sum256([]byte(d.Kind + "\x00" + d.To + "\x00" + d.Subject + "\x00" + d.Body))
	return hex.EncodeToString(sum[:])
}

type Store struct {
	db       *storage.DB
	dir      string
	fromName string
	fromAddr string
	now      func() time.Time
}

// NewStore writes drafts under dir. db may be nil, in which case nothing is
// recorded in the run ledger.
func NewStore(db *storage.DB, dir, fromName, fromAddr string) *Store {
	return &Store{db: db, dir: dir, fromName: fromName, fromAddr: fromAddr, now: time.Now}
}

// WriteDraft writes d as an unsent RFC 5322 message named by its hash and
// returns the file path. traceID ties the draft to a run in the ledger.
func (s *Store) WriteDraft(traceID string, d Draft) (string, error) {
	if !pipeline.IsValidRecipient(d.To) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRecipient, d.To)
	}

	raw, err := s.build(d)
	if err != nil {
		return "", fmt.Errorf("build draft for %s: %w", d.To, err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	hash := d.Hash()
	path := filepath.Join(s.dir, hash+".eml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, raw, 0o644); err != nil {
			return "", err
		}
	}

	if s.db != nil {
		err := s.db.UpsertDraft(internal.DraftRow{
			TraceID:   traceID,
			Kind:      d.Kind,
			Recipient: d.To,
			Subject:   d.Subject,
			Hash:      hash,
			Path:      path,
		})
		if err != nil {
			return "", err
		}
	}
	return path, nil
}

func (s *Store) build(d Draft) ([]byte, error) {
	part, err := enmime.Builder().
		From(s.fromName, s.fromAddr).
		To(d.ToName, d.To).
		Subject(d.Subject).
		Date(s.now()).
		Header("Message-Id", "<"+uuid.NewString()+"@tsreminder>").
		Header("X-Unsent", "1").
		Text([]byte(d.Body)).
		Build()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := part.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func WorkerDraft(detail pipeline.RecipientDetail) Draft {
	return Draft{
		Kind:    KindWorker,
		To:      detail.Group.Email,
		ToName:  detail.Group.Substitute,
		Subject: detail.Subject,
		Body:    detail.Body,
	}
}

func ApproverDraft(detail pipeline.SchoolDetail) Draft {
	return Draft{
		Kind:    KindApprover,
		To:      detail.Approver,
		Subject: detail.Subject,
		Body:    detail.Body,
	}
}
