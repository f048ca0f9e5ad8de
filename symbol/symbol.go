// Package symbol interns UTF-8 identifiers into canonical-form pointers,
// per spec.md §3.2: "equality of words is by canonical pointer." Unlike
// the teacher's namecache (an LRU decode cache that may evict), interned
// symbols live for the lifetime of the interpreter instance — a word's
// canonical pointer must stay valid for as long as any cell can reference
// it — so Table never evicts; it only ever grows.
//
// Canonicalisation runs source text through Unicode NFC normalisation
// (golang.org/x/text/unicode/norm) before lookup, so two source spellings
// of what a user considers "the same word" (e.g. combining-mark forms)
// intern to one pointer.
package symbol

import (
	"sync"

	"golang.org/x/text/unicode/norm"
)

// numShards mirrors the teacher's sharded-map design (hive/namecache) to
// keep interning contention-free across independent interpreter instances
// sharing a process-wide table — though spec.md §5 notes each interpreter
// instance owns its own heap, a single Table may still be shared by
// embedding code that multiplexes several instances over one symbol pool.
const numShards = 16

// ID is the canonical pointer: two words are the same symbol iff their
// IDs are equal.
type ID uint32

// Table interns strings into IDs. The zero value is not usable; use New.
type Table struct {
	shards [numShards]shard
}

type shard struct {
	mu      sync.RWMutex
	byText  map[string]ID
	entries []string
}

// New returns an empty, ready-to-use symbol table.
func New() *Table {
	t := &Table{}
	for i := range t.shards {
		t.shards[i].byText = make(map[string]ID)
	}
	return t
}

func (t *Table) shardIndex(canon string) int {
	// FNV-1a over the canonical text, matching the teacher's habit of a
	// cheap hash for shard routing (hive/namecache uses fnv for its cache
	// keys too).
	var h uint32 = 2166136261
	for i := 0; i < len(canon); i++ {
		h ^= uint32(canon[i])
		h *= 16777619
	}
	return int(h % numShards)
}

// Intern canonicalises s and returns its ID, allocating a new one on
// first sight. Safe for concurrent use.
func (t *Table) Intern(s string) ID {
	canon := string(norm.NFC.Bytes([]byte(s)))
	idx := t.shardIndex(canon)
	sh := &t.shards[idx]

	sh.mu.RLock()
	if id, ok := sh.byText[canon]; ok {
		sh.mu.RUnlock()
		return encodeID(idx, id)
	}
	sh.mu.RUnlock()

	sh.mu.Lock()
	defer sh.mu.Unlock()
	if id, ok := sh.byText[canon]; ok {
		return encodeID(idx, id)
	}
	local := ID(len(sh.entries))
	sh.entries = append(sh.entries, canon)
	sh.byText[canon] = local
	return encodeID(idx, local)
}

// Text returns the canonical spelling for id.
func (t *Table) Text(id ID) string {
	idx, local := decodeID(id)
	sh := &t.shards[idx]
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	return sh.entries[local]
}

// shardBits is how many low bits of an ID select the shard, leaving the
// rest as that shard's local index.
const shardBits = 4

func encodeID(shardIdx int, local ID) ID {
	return local<<shardBits | ID(shardIdx)
}

func decodeID(id ID) (shardIdx int, local ID) {
	return int(id & (1<<shardBits - 1)), id >> shardBits
}
