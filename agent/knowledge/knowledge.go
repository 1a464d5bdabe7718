// Package knowledge provides the static topic -> facts source used by the
// research worker.
package knowledge

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
)

//go:embed knowledge.toml
var embedded []byte

// TopicSeparator splits topic names into their matchable words.
const TopicSeparator = "_"

type Config struct {
	File string `envconfig:"FILE" split_words:"true"`
}

type document struct {
	Topics map[string]map[string]any `toml:"topics"`
}

// Base is an immutable topic -> facts map.
type Base struct {
	topics map[string]contractx.TopicFacts
	names  []string
}

var _ contractx.KnowledgeSource = (*Base)(nil)

// Load reads cfg.File when set and falls back to the embedded topics.
func Load(cfg Config) (*Base, error) {
	path := strings.TrimSpace(cfg.File)
	if path == "" {
		return Parse(embedded)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("knowledge: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Default returns the embedded knowledge base.
func Default() *Base {
	b, err := Parse(embedded)
	if err != nil {
		panic(err)
	}
	return b
}

func Parse(raw []byte) (*Base, error) {
	var doc document
	if err := toml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: knowledge: decode toml: %v", contractx.ErrValidation, err)
	}
	if len(doc.Topics) == 0 {
		return nil, fmt.Errorf("%w: knowledge: no topics defined", contractx.ErrValidation)
	}

	b := &Base{
		topics: make(map[string]contractx.TopicFacts, len(doc.Topics)),
		names:  make([]string, 0, len(doc.Topics)),
	}
	for name, facts := range doc.Topics {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		b.topics[name] = contractx.TopicFacts(facts)
		b.names = append(b.names, name)
	}
	sort.Strings(b.names)
	return b, nil
}

func (b *Base) Topics() []string {
	return append([]string(nil), b.names...)
}

func (b *Base) Lookup(topic string) (contractx.TopicFacts, bool) {
	facts, ok := b.topics[topic]
	return facts, ok
}

// Words splits a topic name on TopicSeparator.
func Words(topic string) []string {
	parts := strings.Split(topic, TopicSeparator)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DisplayName renders "neural_networks" as "neural networks".
func DisplayName(topic string) string {
	return strings.Join(Words(topic), " ")
}
