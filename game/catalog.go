package game

import (
	"fmt"
	"sort"
)

// Round 一关：编号与标准动作序列，定义后不可变
type Round struct {
	ID       int
	sequence []Move
}

// Sequence 返回序列副本
func (r Round) Sequence() []Move {
	return append([]Move(nil), r.sequence...)
}

// Len 序列长度
func (r Round) Len() int { return len(r.sequence) }

// Prefix 前 n 个动作，n 必须在 [1, Len()] 内
func (r Round) Prefix(n int) ([]Move, error) {
	if n < 1 || n > len(r.sequence) {
		return nil, fmt.Errorf("%w: round %d step %d not in [1,%d]", ErrInvalidTargetStep, r.ID, n, len(r.sequence))
	}
	return append([]Move(nil), r.sequence[:n]...), nil
}

// Catalog 静态关卡表
type Catalog struct {
	rounds map[int]Round
	ids    []int
}

// NewCatalog 校验并构建关卡表：编号为正且序列非空
func NewCatalog(seqs map[int][]Move) (*Catalog, error) {
	if len(seqs) == 0 {
		return nil, fmt.Errorf("%w: no rounds", ErrBadCatalog)
	}
	c := &Catalog{rounds: make(map[int]Round, len(seqs))}
	for id, seq := range seqs {
		if id <= 0 {
			return nil, fmt.Errorf("%w: round id %d", ErrBadCatalog, id)
		}
		if len(seq) == 0 {
			return nil, fmt.Errorf("%w: round %d has no moves", ErrBadCatalog, id)
		}
		for i, m := range seq {
			if !m.Valid() {
				return nil, fmt.Errorf("%w: round %d move %d: %v", ErrBadCatalog, id, i, m)
			}
		}
		c.rounds[id] = Round{ID: id, sequence: append([]Move(nil), seq...)}
		c.ids = append(c.ids, id)
	}
	sort.Ints(c.ids)
	return c, nil
}

var defaultSequences = map[int][]Move{
	1: {Skip, Hop, Jump, Hop, Jump},
	2: {Hop, Skip, Jump, Hop, Jump},
	3: {Hop, Hop, Skip, Hop, Jump},
	4: {Hop, Hop, Hop, SkipHopRight, Hop, Jump},
	5: {Hop, Hop, Hop, SkipHopLeft, Hop, Jump},
	6: {Hop, Hop, Hop, Jump, Skip},
	7: {Hop, Hop, Hop, Jump, Hop, SkipHopRight},
	8: {Hop, Hop, Hop, Jump, Hop, SkipHopLeft},
}

// DefaultCatalog 内置的 8 关
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultSequences)
	if err != nil {
		panic(err)
	}
	return c
}

// Round 按编号查关卡
func (c *Catalog) Round(id int) (Round, error) {
	r, ok := c.rounds[id]
	if !ok {
		return Round{}, fmt.Errorf("%w: %d", ErrUnknownRound, id)
	}
	return r, nil
}

// SequenceFor 关卡的完整动作序列
func (c *Catalog) SequenceFor(id int) ([]Move, error) {
	r, err := c.Round(id)
	if err != nil {
		return nil, err
	}
	return r.Sequence(), nil
}

// PrefixFor 关卡序列的前 targetStep 个动作
func (c *Catalog) PrefixFor(id, targetStep int) ([]Move, error) {
	r, err := c.Round(id)
	if err != nil {
		return nil, err
	}
	return r.Prefix(targetStep)
}

// Rounds 升序的关卡编号
func (c *Catalog) Rounds() []int {
	return append([]int(nil), c.ids...)
}

// Next 下一关编号；最后一关之后 ok=false
func (c *Catalog) Next(id int) (int, bool) {
	i := sort.SearchInts(c.ids, id)
	if i < len(c.ids) && c.ids[i] == id {
		i++
	}
	if i >= len(c.ids) {
		return 0, false
	}
	return c.ids[i], true
}
