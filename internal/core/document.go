package core

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrDocumentAlreadyOpen is returned by Open when the URL is already tracked.
var ErrDocumentAlreadyOpen = errors.New("document already open")

// ErrDocumentNotFound is returned by Edit when the URL is not tracked.
var ErrDocumentNotFound = errors.New("document not found")

// ErrInvalidEditRange is returned when a ranged change's offsets cannot be
// derived from the pre-edit snapshot. Per the edit contract this is fatal:
// the remaining changes in the batch are not applied.
var ErrInvalidEditRange = errors.New("edit range not derivable from snapshot")

// Document is a client buffer identified by URL, holding its current text,
// a language tag, and a version number supplied by the client. A Document
// value itself is immutable; DocumentManager replaces it wholesale on edit.
type Document struct {
	URL      string
	Language string
	Text     string
	Version  int
}

// DocumentSnapshot is an immutable (Document, LineTable, version) triple
// captured at a mutation boundary. The LineTable is computed eagerly so
// readers never pay scan cost more than once per edit.
type DocumentSnapshot struct {
	Document  Document
	LineTable *LineTable
	Version   int
}

func newSnapshot(doc Document) DocumentSnapshot {
	return DocumentSnapshot{
		Document:  doc,
		LineTable: NewLineTable(doc.Text),
		Version:   doc.Version,
	}
}

// Change is a single content change: either a ranged replacement (Range
// non-nil, offsets in byte space) or a full-buffer replacement (Range nil).
type Change struct {
	Range *Range
	Text  string
}

// DocumentManager tracks open documents and produces immutable snapshots on
// every mutation. It is the sole mutator of per-URL state; everything else
// in the server reads snapshots, which are never mutated after publication.
// The manager serializes edits to a single URL at this layer so concurrent
// didChange notifications for the same document cannot race.
type DocumentManager struct {
	mu   sync.Mutex
	docs map[string]DocumentSnapshot
}

// NewDocumentManager constructs an empty manager.
func NewDocumentManager() *DocumentManager {
	return &DocumentManager{docs: make(map[string]DocumentSnapshot)}
}

// Open registers a newly opened document and returns its initial snapshot.
// It fails if url is already tracked.
func (dm *DocumentManager) Open(url, language string, version int, text string) (DocumentSnapshot, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if _, ok := dm.docs[url]; ok {
		return DocumentSnapshot{}, errors.Wrapf(ErrDocumentAlreadyOpen, "url %q", url)
	}
	snap := newSnapshot(Document{URL: url, Language: language, Text: text, Version: version})
	dm.docs[url] = snap
	return snap, nil
}

// Close removes a document. Closing an unknown URL is a silent no-op, per
// the document lifecycle contract.
func (dm *DocumentManager) Close(url string) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	delete(dm.docs, url)
}

// LatestSnapshot returns the most recently published snapshot for url.
func (dm *DocumentManager) LatestSnapshot(url string) (DocumentSnapshot, bool) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	snap, ok := dm.docs[url]
	return snap, ok
}

// Edit applies changes to url in client-supplied order, producing a new
// snapshot after each change. Before applying change i, onEach is invoked
// with the pre-edit snapshot and the change itself, so a caller can
// synthesize a parallel mutation against an external collaborator (the
// native analyzer) using offsets still valid against that exact snapshot.
//
// The returned snapshot carries version; each pre-edit snapshot passed to
// onEach carries the version it had before this Edit call began touching it.
// If a ranged change's offsets cannot be resolved against the snapshot it is
// being applied to, the edit sequence aborts immediately and returns
// ErrInvalidEditRange; none of the batch's changes are stored, so the
// document keeps the snapshot it had before this Edit call.
func (dm *DocumentManager) Edit(url string, version int, changes []Change, onEach func(before DocumentSnapshot, change Change)) (DocumentSnapshot, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	current, ok := dm.docs[url]
	if !ok {
		return DocumentSnapshot{}, errors.Wrapf(ErrDocumentNotFound, "url %q", url)
	}

	for _, change := range changes {
		before := current
		if onEach != nil {
			onEach(before, change)
		}

		text, err := applyChange(before, change)
		if err != nil {
			return DocumentSnapshot{}, err
		}

		doc := before.Document
		doc.Text = text
		current = newSnapshot(doc)
	}

	current.Document.Version = version
	current.Version = version
	dm.docs[url] = current
	return current, nil
}

func applyChange(before DocumentSnapshot, change Change) (string, error) {
	text := before.Document.Text
	if change.Range == nil {
		return change.Text, nil
	}

	start, ok := before.LineTable.ByteOffset(change.Range.Start.Line, change.Range.Start.Character)
	if !ok {
		return "", ErrInvalidEditRange
	}
	end, ok := before.LineTable.ByteOffset(change.Range.End.Line, change.Range.End.Character)
	if !ok || end < start {
		return "", ErrInvalidEditRange
	}

	return text[:start] + change.Text + text[end:], nil
}
