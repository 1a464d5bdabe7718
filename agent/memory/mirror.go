package memory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
)

const (
	conversationFile = "conversation_metadata.json"
	knowledgeFile    = "knowledge_metadata.json"
	tempFilePattern  = "memory-*.json"
)

// agentStateKey holds agent-authored notes inside the conversation file,
// next to the id-keyed records.
const agentStateKey = "__agent_state__"

// mirror is the durable JSON copy of every record's metadata. On disk each
// file is an object keyed by record id; in memory ids are also kept in
// insertion order for recency. Callers hold the store lock.
type mirror struct {
	dir   string
	byID  map[string]contractx.MemoryRecord
	order map[contractx.MemoryType][]string
}

func loadMirror(dir string) (*mirror, error) {
	m := &mirror{
		dir:  dir,
		byID: map[string]contractx.MemoryRecord{},
		order: map[contractx.MemoryType][]string{
			contractx.MemoryConversation: {},
			contractx.MemoryKnowledge:    {},
			contractx.MemoryAgentState:   {},
		},
	}

	conv, err := readRecordMap(filepath.Join(dir, conversationFile))
	if err != nil {
		return nil, err
	}
	var notes []contractx.MemoryRecord
	if raw, ok := conv[agentStateKey]; ok {
		if err := json.Unmarshal(raw, &notes); err != nil {
			return nil, fmt.Errorf("%w: decode %s %s: %v", contractx.ErrPersistence, conversationFile, agentStateKey, err)
		}
		delete(conv, agentStateKey)
	}
	convRecords, err := decodeRecords(conversationFile, conv, contractx.MemoryConversation)
	if err != nil {
		return nil, err
	}

	know, err := readRecordMap(filepath.Join(dir, knowledgeFile))
	if err != nil {
		return nil, err
	}
	knowRecords, err := decodeRecords(knowledgeFile, know, contractx.MemoryKnowledge)
	if err != nil {
		return nil, err
	}

	for _, r := range notes {
		if r.Metadata.Type == "" {
			r.Metadata.Type = contractx.MemoryAgentState
		}
		m.append(r)
	}
	for _, r := range convRecords {
		m.append(r)
	}
	for _, r := range knowRecords {
		m.append(r)
	}
	return m, nil
}

// readRecordMap reads a metadata file as an id-keyed object. A missing or
// empty file is an empty map.
func readRecordMap(path string) (map[string]json.RawMessage, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", contractx.ErrPersistence, filepath.Base(path), err)
	}
	out := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", contractx.ErrPersistence, filepath.Base(path), err)
	}
	return out, nil
}

// decodeRecords turns id-keyed entries into records ordered oldest first.
func decodeRecords(name string, entries map[string]json.RawMessage, t contractx.MemoryType) ([]contractx.MemoryRecord, error) {
	out := make([]contractx.MemoryRecord, 0, len(entries))
	for id, raw := range entries {
		var r contractx.MemoryRecord
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("%w: decode %s record %q: %v", contractx.ErrPersistence, name, id, err)
		}
		if r.ID == "" {
			r.ID = id
		}
		if r.ID != id {
			return nil, fmt.Errorf("%w: %s record key %q holds id %q", contractx.ErrPersistence, name, id, r.ID)
		}
		if r.Metadata.Type == "" {
			r.Metadata.Type = t
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Metadata.Timestamp.Equal(out[j].Metadata.Timestamp) {
			return out[i].Metadata.Timestamp.Before(out[j].Metadata.Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// all returns the records of t in insertion order.
func (m *mirror) all(t contractx.MemoryType) []contractx.MemoryRecord {
	ids := m.order[t]
	out := make([]contractx.MemoryRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.byID[id])
	}
	return out
}

func (m *mirror) count(t contractx.MemoryType) int {
	return len(m.order[t])
}

func (m *mirror) find(id string) (contractx.MemoryRecord, bool) {
	r, ok := m.byID[id]
	return r, ok
}

func (m *mirror) append(r contractx.MemoryRecord) {
	if _, dup := m.byID[r.ID]; !dup {
		m.order[r.Metadata.Type] = append(m.order[r.Metadata.Type], r.ID)
	}
	m.byID[r.ID] = r
}

// dropLast undoes the most recent append for t.
func (m *mirror) dropLast(t contractx.MemoryType) {
	ids := m.order[t]
	if len(ids) == 0 {
		return
	}
	delete(m.byID, ids[len(ids)-1])
	m.order[t] = ids[:len(ids)-1]
}

func (m *mirror) keyed(t contractx.MemoryType) map[string]any {
	out := make(map[string]any, len(m.order[t]))
	for _, id := range m.order[t] {
		out[id] = m.byID[id]
	}
	return out
}

func (m *mirror) flush(t contractx.MemoryType) error {
	if t == contractx.MemoryKnowledge {
		return writeJSONAtomic(filepath.Join(m.dir, knowledgeFile), m.keyed(contractx.MemoryKnowledge))
	}
	doc := m.keyed(contractx.MemoryConversation)
	if notes := m.all(contractx.MemoryAgentState); len(notes) > 0 {
		doc[agentStateKey] = notes
	}
	return writeJSONAtomic(filepath.Join(m.dir, conversationFile), doc)
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp metadata file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp metadata file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp metadata file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp metadata file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace metadata file: %w", err)
	}
	cleanup = false
	return nil
}
