package drafts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jhillyerd/enmime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsreminder/internal/storage"
)

func TestMailtoLink(t *testing.T) {
	link, included := MailtoLink("a@x.com", "Hi there/you", "Line 1\nLine 2 & more")
	assert.True(t, included)
	assert.Equal(t, "mailto:a@x.com?subject=Hi%20there/you&body=Line%201%0ALine%202%20%26%20more", link)

	long := strings.Repeat("word ", 400)
	link, included = MailtoLink("a@x.com", "s", long)
	assert.False(t, included)
	assert.Equal(t, "mailto:a@x.com?subject=s", link)
}

func TestMailtoLinkBoundary(t *testing.T) {
	exact := strings.Repeat("a", MaxMailtoBody)
	_, included := MailtoLink("a@x.com", "s", exact)
	assert.True(t, included)

	_, included = MailtoLink("a@x.com", "s", exact+"a")
	assert.False(t, included)
}

func TestWriteDraft(t *testing.T) {
	dir := t.TempDir()
	db, err := storage.Open(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := NewStore(db, filepath.Join(dir, "drafts"), "Payroll", "payroll@example.com")
	d := Draft{Kind: KindWorker, To: "ann@x.com", ToName: "Ann", Subject: "Past due", Body: "Hello,\n- 2024-01-05 at North (Confirmation: 7)\n"}

	path, err := store.WriteDraft("trace-1", d)
	require.NoError(t, err)
	assert.Equal(t, d.Hash()+".eml", filepath.Base(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	env, err := enmime.ReadEnvelope(f)
	require.NoError(t, err)
	assert.Equal(t, "Past due", env.GetHeader("Subject"))
	assert.Contains(t, env.GetHeader("To"), "ann@x.com")
	assert.Contains(t, env.GetHeader("From"), "payroll@example.com")
	assert.Equal(t, "1", env.GetHeader("X-Unsent"))
	assert.Contains(t, env.Text, "- 2024-01-05 at North (Confirmation: 7)")

	again, err := store.WriteDraft("trace-2", d)
	require.NoError(t, err)
	assert.Equal(t, path, again)

	rows, err := db.ListDrafts("trace-2")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, KindWorker, rows[0].Kind)
}

func TestWriteDraftInvalidRecipient(t *testing.T) {
	store := NewStore(nil, t.TempDir(), "Payroll", "payroll@example.com")
	for _, addr := range []string{"", "no-at-sign", "user@localhost"} {
		_, err := store.WriteDraft("t", Draft{Kind: KindWorker, To: addr, Subject: "s", Body: "b"})
		assert.ErrorIs(t, err, ErrInvalidRecipient, addr)
	}
}
