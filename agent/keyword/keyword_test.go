package keyword

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsWordIsWholeWord(t *testing.T) {
	assert.True(t, ContainsWord("please store this note", "store"))
	assert.True(t, ContainsWord("store: previous finding", "store"))
	assert.False(t, ContainsWord("restore the backup", "store"))
	assert.False(t, ContainsWord("forget it", "get"))
}

func TestContainsAnyPhrase(t *testing.T) {
	assert.True(t, ContainsAny("What did we talk about?", "what did"))
	assert.False(t, ContainsAny("what we did", "what did"))
	assert.True(t, ContainsAny("Compare CNN and RNN", "analyze", "compare"))
	assert.False(t, ContainsAny("", "compare"))
}

func TestTermsStripsStopWordsAndShortTokens(t *testing.T) {
	terms := Terms("What's the weather in Paris?", 10)
	assert.Equal(t, []string{"weather", "paris"}, terms)

	terms = Terms("Research transformer architectures and summarize tradeoffs", 10)
	assert.Equal(t, []string{"research", "transformer", "architectures", "summarize", "tradeoffs"}, terms)
}

func TestTermsRespectsLimitAndDedupes(t *testing.T) {
	terms := Terms("alpha beta alpha gamma delta", 3)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, terms)
}

func TestKeywordsAlphabeticLongerThanThree(t *testing.T) {
	kws := Keywords("store: GPT4 and BERT use attention layers", 10)
	assert.Equal(t, []string{"store", "bert", "attention", "layers"}, kws)
}

func TestKeywordsCap(t *testing.T) {
	kws := Keywords("one1 alpha bravo charlie delta echoes foxtrot golfs hotel india juliet kilos lima", 10)
	assert.Len(t, kws, 10)
}

func TestStemAndOverlap(t *testing.T) {
	assert.Equal(t, "transformer", Stem("Transformers"))
	assert.Equal(t, "strategy", Stem("strategies"))
	assert.Equal(t, "class", Stem("class"))

	assert.True(t, Overlap([]string{"transformers"}, []string{"transformer", "tradeoffs"}))
	assert.False(t, Overlap([]string{"weather"}, []string{"transformer"}))
	assert.False(t, Overlap(nil, []string{"x"}))
}
