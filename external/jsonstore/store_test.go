package jsonstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/belmonts/belix/internal/reminder"
	"github.com/belmonts/belix/internal/terminology"
)

func newTermFile(t *testing.T) *File[terminology.Document] {
	t.Helper()
	return NewFile(filepath.Join(t.TempDir(), "data", TerminologiesFile), func() terminology.Document {
		return terminology.Document{Terminologies: []terminology.Term{}}
	})
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	f := newTermFile(t)
	doc, err := f.Load()
	require.NoError(t, err)
	assert.Empty(t, doc.Terminologies)
	assert.Equal(t, 0, doc.CurrentIndex)
}

func TestLoadEmptyFileReturnsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), RemindersFile)
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	f := NewFile(path, func() reminder.List { return reminder.List{} })
	list, err := f.Load()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSaveThenLoad(t *testing.T) {
	f := newTermFile(t)
	doc := terminology.Document{
		Terminologies: []terminology.Term{{Term: "API", Definition: "Application Programming Interface", Category: "Web"}},
		CurrentIndex:  1,
	}
	require.NoError(t, f.Save(doc))

	got, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	entries, err := os.ReadDir(filepath.Dir(f.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, TerminologiesFile, entries[0].Name())
}

func TestLoadDropsInvalidEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), TerminologiesFile)
	require.NoError(t, os.WriteFile(path, []byte(`{
		"terminologies": [
			{"term": "DNS", "definition": "Domain Name System"},
			{"term": "", "definition": "missing term"},
			{"term": "TLS"}
		],
		"currentIndex": 0
	}`), 0o644))
	f := NewFile(path, func() terminology.Document { return terminology.Document{} })

	doc, err := f.Load()
	require.NoError(t, err)
	require.Len(t, doc.Terminologies, 1)
	assert.Equal(t, "DNS", doc.Terminologies[0].Term)
}

func TestLoadReportsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), TerminologiesFile)
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))
	f := NewFile(path, func() terminology.Document { return terminology.Document{} })

	_, err := f.Load()
	assert.Error(t, err)
}

func TestUpdateErrorWritesNothing(t *testing.T) {
	f := newTermFile(t)
	require.NoError(t, f.Save(terminology.Document{CurrentIndex: 2}))

	boom := errors.New("boom")
	err := f.Update(func(doc *terminology.Document) error {
		doc.CurrentIndex = 9
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, got.CurrentIndex)

	require.NoError(t, f.Update(func(doc *terminology.Document) error {
		doc.CurrentIndex++
		return nil
	}))
	got, err = f.Load()
	require.NoError(t, err)
	assert.Equal(t, 3, got.CurrentIndex)
}
