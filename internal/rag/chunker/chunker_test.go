package chunker

import (
	"strings"
	"testing"
)

func TestChunkText_EmptyInput(t *testing.T) {
	c := NewTextChunker(100, 20, 10)

	for _, input := range []string{"", "   ", "\n\t \n"} {
		if got := c.ChunkText(input); got != nil {
			t.Errorf("ChunkText(%q) = %v, want nil", input, got)
		}
	}
}

func TestChunkText_SingleSmallChunk(t *testing.T) {
	c := NewTextChunker(1000, 100, 10)
	text := "A single paragraph that fits comfortably in one chunk."

	chunks := c.ChunkText(text)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0] != text {
		t.Errorf("chunk got %q, want %q", chunks[0], text)
	}
}

func TestChunkText_PrefersParagraphBoundaries(t *testing.T) {
	c := NewTextChunker(60, 0, 5)
	text := "First paragraph here.\n\nSecond paragraph here.\n\nThird paragraph here."

	chunks := c.ChunkText(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d: %v", len(chunks), chunks)
	}
	for _, chunk := range chunks {
		if !strings.Contains(chunk, "paragraph") {
			t.Errorf("chunk %q lost its sentence content", chunk)
		}
		if len(chunk) > 60 {
			t.Errorf("chunk exceeds target size: %d chars", len(chunk))
		}
	}
}

func TestChunkText_OverlapSharesContext(t *testing.T) {
	c := NewTextChunker(40, 15, 2)
	text := "one two three four five six seven eight nine ten eleven twelve"

	chunks := c.ChunkText(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Each consecutive pair must share at least one word
	for i := 1; i < len(chunks); i++ {
		prevWords := strings.Fields(chunks[i-1])
		shared := false
		for _, w := range strings.Fields(chunks[i]) {
			for _, pw := range prevWords {
				if w == pw {
					shared = true
				}
			}
		}
		if !shared {
			t.Errorf("chunks %d and %d share no context: %q | %q", i-1, i, chunks[i-1], chunks[i])
		}
	}
}

func TestChunkText_CollapsesWhitespace(t *testing.T) {
	c := NewTextChunker(1000, 0, 5)
	chunks := c.ChunkText("spaced   out\t\ttext\nwith   runs")

	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0] != "spaced out text with runs" {
		t.Errorf("whitespace not collapsed: %q", chunks[0])
	}
}

func TestChunkText_DropsBelowMinSize(t *testing.T) {
	c := NewTextChunker(1000, 0, 50)

	if got := c.ChunkText("too short"); got != nil {
		t.Errorf("input below min size should yield no chunks, got %v", got)
	}
}

func TestChunkText_OversizedTokenFallsThrough(t *testing.T) {
	c := NewTextChunker(10, 0, 1)
	token := strings.Repeat("x", 35)

	chunks := c.ChunkText(token)
	if len(chunks) != 4 {
		t.Fatalf("got %d chunks, want 4 width-cuts", len(chunks))
	}
	var rebuilt strings.Builder
	for _, chunk := range chunks {
		if len(chunk) > 10 {
			t.Errorf("chunk exceeds width: %q", chunk)
		}
		rebuilt.WriteString(chunk)
	}
	if rebuilt.String() != token {
		t.Error("width-cut chunks do not reconstruct the input")
	}
}

func TestChunkText_CoverageModuloWhitespace(t *testing.T) {
	c := NewTextChunker(80, 0, 1)
	text := "Sentence one lives here. Sentence two follows it. Sentence three closes out the sample text for coverage."

	chunks := c.ChunkText(text)
	joined := strings.Join(chunks, " ")
	for _, word := range strings.Fields(text) {
		if !strings.Contains(joined, strings.TrimRight(word, ".")) {
			t.Errorf("word %q missing from chunk output", word)
		}
	}
}

func TestTokenEstimate(t *testing.T) {
	if got := TokenEstimate("four words right here"); got != 4 {
		t.Errorf("TokenEstimate got %d, want 4", got)
	}
	if got := TokenEstimate(""); got != 0 {
		t.Errorf("TokenEstimate of empty got %d, want 0", got)
	}
}
