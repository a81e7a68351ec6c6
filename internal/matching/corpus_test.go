package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCorpusHorizontalRules(t *testing.T) {
	raw := "Alice Smith\nGo developer\n---\nBob Jones\nPython developer\n===\nCarol White\nSRE"

	blocks := SplitCorpus(raw)

	assert.Len(t, blocks, 3)
	assert.Equal(t, "Alice Smith\nGo developer", blocks[0])
	assert.Equal(t, "Bob Jones\nPython developer", blocks[1])
	assert.Equal(t, "Carol White\nSRE", blocks[2])
}

func TestSplitCorpusBlankLines(t *testing.T) {
	raw := "Alice Smith\n\n\nBob Jones\n\n\n\nCarol White"

	blocks := SplitCorpus(raw)

	assert.Equal(t, []string{"Alice Smith", "Bob Jones", "Carol White"}, blocks)
}

func TestSplitCorpusWindowsLineEndings(t *testing.T) {
	raw := "Alice Smith\r\n---\r\nBob Jones"

	blocks := SplitCorpus(raw)

	assert.Equal(t, []string{"Alice Smith", "Bob Jones"}, blocks)
}

func TestSplitCorpusEmpty(t *testing.T) {
	assert.Empty(t, SplitCorpus(""))
	assert.Empty(t, SplitCorpus("  \n\n  \n"))
}

func TestSplitCorpusSingleBlock(t *testing.T) {
	blocks := SplitCorpus("Alice Smith\nGo developer with 8 years experience")
	assert.Len(t, blocks, 1)
}
