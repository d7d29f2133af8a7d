package chunker

import (
	"strings"
)

// Separators ordered from "best" to "worst" for semantic meaning. The empty
// string is the character-level last resort and guarantees termination.
var Separators = []string{"\n\n", "\n", ". ", ", ", " ", ""}

type TextChunker struct {
	targetSize int
	overlap    int
	minSize    int
}

func NewTextChunker(targetSize int, overlap int, minSize int) *TextChunker {
	if targetSize <= 0 {
		targetSize = 1
	}
	if overlap >= targetSize {
		overlap = targetSize / 2
	}
	return &TextChunker{
		targetSize: targetSize,
		overlap:    overlap,
		minSize:    minSize,
	}
}

// ChunkText splits text into overlapping chunks at the most natural boundary
// the size budget allows. Whitespace runs inside each chunk are collapsed to
// single spaces and chunks below the minimum size are dropped. Empty or
// whitespace-only input yields no chunks and no error.
func (c *TextChunker) ChunkText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	raw := c.splitText(text, Separators)

	var chunks []string
	for _, chunk := range raw {
		chunk = strings.Join(strings.Fields(chunk), " ")
		if len(chunk) < c.minSize {
			continue
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

// splitText splits on the first separator present in the text, merges the
// resulting pieces back up to the target size, and recurses with the next
// separators on any piece that is still too large.
func (c *TextChunker) splitText(text string, separators []string) []string {
	sep := ""
	var rest []string
	for i, s := range separators {
		if s == "" {
			break
		}
		if strings.Contains(text, s) {
			sep = s
			rest = separators[i+1:]
			break
		}
	}

	var splits []string
	if sep == "" {
		splits = splitByWidth(text, c.targetSize)
	} else {
		splits = splitAfterSeparator(text, sep)
	}

	var chunks []string
	var pending []string
	for _, piece := range splits {
		if len(piece) <= c.targetSize {
			pending = append(pending, piece)
			continue
		}

		chunks = append(chunks, c.merge(pending)...)
		pending = nil

		if len(rest) == 0 {
			chunks = append(chunks, splitByWidth(piece, c.targetSize)...)
		} else {
			chunks = append(chunks, c.splitText(piece, rest)...)
		}
	}
	return append(chunks, c.merge(pending)...)
}

// merge packs pieces into chunks up to the target size. When a chunk is
// emitted, trailing pieces within the overlap budget are carried into the
// next chunk so adjacent chunks share context at the cut point.
func (c *TextChunker) merge(pieces []string) []string {
	var out []string
	var current []string
	total := 0

	for _, piece := range pieces {
		if total+len(piece) > c.targetSize && total > 0 {
			out = append(out, strings.Join(current, ""))

			for len(current) > 0 && (total > c.overlap || total+len(piece) > c.targetSize) {
				total -= len(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += len(piece)
	}

	if len(current) > 0 {
		out = append(out, strings.Join(current, ""))
	}
	return out
}

// splitAfterSeparator splits keeping the separator attached to the preceding
// piece, so merged chunks reconstruct the original text exactly.
func splitAfterSeparator(text string, sep string) []string {
	parts := strings.SplitAfter(text, sep)
	splits := parts[:0]
	for _, p := range parts {
		if p != "" {
			splits = append(splits, p)
		}
	}
	return splits
}

// splitByWidth hard-cuts text into width-sized pieces. Used only when no
// separator fits inside the size budget.
func splitByWidth(text string, width int) []string {
	var out []string
	for len(text) > width {
		out = append(out, text[:width])
		text = text[width:]
	}
	if len(text) > 0 {
		out = append(out, text)
	}
	return out
}

// TokenEstimate is the rough whitespace-word count used for chunk records.
func TokenEstimate(text string) uint32 {
	return uint32(len(strings.Fields(text)))
}
