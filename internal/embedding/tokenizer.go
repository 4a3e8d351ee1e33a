package embedding

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxSeqLen matches the sentence-transformers MiniLM export.
const maxSeqLen = 128

// maxWordRunes is the longest word WordPiece will try to split.
const maxWordRunes = 100

// encoding is a padded batch ready for inference. Slices are flat
// [batch*seqLen].
type encoding struct {
	ids     []int64
	mask    []int64
	typeIDs []int64
	batch   int64
	seqLen  int64
}

// wordPiece is an uncased BERT tokenizer.
type wordPiece struct {
	vocab    *vocab
	unaccent transform.Transformer
}

func newWordPiece(v *vocab) *wordPiece {
	return &wordPiece{
		vocab:    v,
		unaccent: transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
	}
}

// pieces splits text into WordPiece tokens, without [CLS]/[SEP].
func (w *wordPiece) pieces(text string) []string {
	var out []string
	for _, word := range w.words(text) {
		out = append(out, w.splitWord(word)...)
	}
	return out
}

// words lowercases, strips accents and splits on whitespace and punctuation.
func (w *wordPiece) words(text string) []string {
	text = strings.ToLower(text)
	if s, _, err := transform.String(w.unaccent, text); err == nil {
		text = s
	}

	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		switch {
		case r == 0 || r == unicode.ReplacementChar || (unicode.IsControl(r) && !unicode.IsSpace(r)):
		case unicode.IsSpace(r):
			flush()
		case isPunct(r) || isCJK(r):
			flush()
			words = append(words, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return words
}

// splitWord greedily matches the longest vocabulary prefix, continuing
// with "##" suffix pieces. Unsplittable words become [UNK].
func (w *wordPiece) splitWord(word string) []string {
	rs := []rune(word)
	if len(rs) > maxWordRunes {
		return []string{"[UNK]"}
	}
	var out []string
	for start := 0; start < len(rs); {
		end := len(rs)
		match := ""
		for ; end > start; end-- {
			cand := string(rs[start:end])
			if start > 0 {
				cand = "##" + cand
			}
			if w.vocab.has(cand) {
				match = cand
				break
			}
		}
		if match == "" {
			return []string{"[UNK]"}
		}
		out = append(out, match)
		start = end
	}
	return out
}

// encode tokenizes texts into a batch padded to its longest sequence.
func (w *wordPiece) encode(texts []string) encoding {
	seqs := make([][]int64, len(texts))
	longest := 0
	for i, t := range texts {
		toks := w.pieces(t)
		if len(toks) > maxSeqLen-2 {
			toks = toks[:maxSeqLen-2]
		}
		ids := make([]int64, 0, len(toks)+2)
		ids = append(ids, w.vocab.cls)
		for _, tok := range toks {
			ids = append(ids, w.vocab.id(tok))
		}
		ids = append(ids, w.vocab.sep)
		seqs[i] = ids
		if len(ids) > longest {
			longest = len(ids)
		}
	}

	enc := encoding{
		batch:   int64(len(texts)),
		seqLen:  int64(longest),
		ids:     make([]int64, len(texts)*longest),
		mask:    make([]int64, len(texts)*longest),
		typeIDs: make([]int64, len(texts)*longest),
	}
	for i, ids := range seqs {
		off := i * longest
		for j, id := range ids {
			enc.ids[off+j] = id
			enc.mask[off+j] = 1
		}
		for j := len(ids); j < longest; j++ {
			enc.ids[off+j] = w.vocab.pad
		}
	}
	return enc
}

func isPunct(r rune) bool {
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) || (r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.IsPunct(r)
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r)
}
