// Package chunk turns parsed pages into overlapping, size-bounded segments,
// the unit of embedding and retrieval. Boundaries are deterministic for a
// given input and configuration.
package chunk

import (
	"policyrag/internal/domain/policymodel"
)

// Split concatenates page texts (separated by a newline, tracking where each
// page begins) and slides a rune window of size `size`, advancing by
// size-overlap. The final partial window is kept; nothing is dropped. Each
// chunk records the page range its window spans.
func Split(docId string, pages []policymodel.PageText, size, overlap int) []policymodel.Chunk {
	if size <= 0 {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 4
	}

	joined := make([]rune, 0)
	pageStarts := make([]int, 0, len(pages))
	for i, p := range pages {
		if i > 0 {
			joined = append(joined, '\n')
		}
		pageStarts = append(pageStarts, len(joined))
		joined = append(joined, []rune(p.Text)...)
	}
	if len(joined) == 0 {
		return nil
	}

	pageAt := func(offset int) int {
		page := pages[0].PageNum
		for i, start := range pageStarts {
			if start > offset {
				break
			}
			page = pages[i].PageNum
		}
		return page
	}

	step := size - overlap
	chunks := make([]policymodel.Chunk, 0, len(joined)/step+1)
	for start := 0; start < len(joined); start += step {
		end := start + size
		if end > len(joined) {
			end = len(joined)
		}
		text := string(joined[start:end])
		chunks = append(chunks, policymodel.Chunk{
			DocumentId: docId,
			Index:      len(chunks),
			Text:       text,
			PageFirst:  pageAt(start),
			PageLast:   pageAt(end - 1),
			Roles:      Roles(text),
		})
		if end == len(joined) {
			break
		}
	}
	return chunks
}
