package scan

// TokenList replays a fixed slice of tokens. Once exhausted it keeps
// returning an EOF token positioned after the last token.
type TokenList struct {
	toks []*Token
	idx  int
}

func NewTokenList(toks []*Token) *TokenList {
	return &TokenList{toks: toks}
}

func (tl *TokenList) Next() (*Token, error) {
	if tl.idx < len(tl.toks) {
		t := tl.toks[tl.idx]
		tl.idx += 1
		return t, nil
	}
	var pos FilePos
	if len(tl.toks) != 0 {
		pos = tl.toks[len(tl.toks)-1].Pos
	}
	return &Token{Kind: EOF, Pos: pos}, nil
}
