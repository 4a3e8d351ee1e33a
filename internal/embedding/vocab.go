package embedding

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// vocab maps WordPiece tokens to ids; the id is the 0-based line number in
// vocab.txt.
type vocab struct {
	ids map[string]int64
	unk int64
	cls int64
	sep int64
	pad int64
}

func loadVocabFile(path string) (*vocab, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vocab: %w", err)
	}
	defer f.Close()
	return readVocab(f)
}

func readVocab(r io.Reader) (*vocab, error) {
	v := &vocab{ids: make(map[string]int64, 31000)}
	sc := bufio.NewScanner(r)
	var n int64
	for sc.Scan() {
		v.ids[sc.Text()] = n
		n++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("vocab: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("vocab: no tokens")
	}

	for tok, dst := range map[string]*int64{"[UNK]": &v.unk, "[CLS]": &v.cls, "[SEP]": &v.sep, "[PAD]": &v.pad} {
		id, ok := v.ids[tok]
		if !ok {
			return nil, fmt.Errorf("vocab: missing special token %s", tok)
		}
		*dst = id
	}
	return v, nil
}

func (v *vocab) id(tok string) int64 {
	if id, ok := v.ids[tok]; ok {
		return id
	}
	return v.unk
}

func (v *vocab) has(tok string) bool {
	_, ok := v.ids[tok]
	return ok
}
