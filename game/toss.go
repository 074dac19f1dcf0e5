package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// Toss 一次扔石子的结果
type Toss struct {
	// Target 本次需要完成的步数，范围 [1, 序列长度]
	Target int `json:"target"`
	// Path 石子依次经过的格子（1..Target），仅用于动画
	Path []int `json:"path"`
}

// TossStone 在 [1, sequenceLength] 内均匀选择目标步数
func TossStone(rng *rand.Rand, sequenceLength int) (Toss, error) {
	if sequenceLength < 1 {
		return Toss{}, fmt.Errorf("%w: sequence length %d", ErrInvalidTargetStep, sequenceLength)
	}
	target := rng.Intn(sequenceLength) + 1
	path := make([]int, target)
	for i := range path {
		path[i] = i + 1
	}
	return Toss{Target: target, Path: path}, nil
}

// NewSeed 使用 crypto/rand 生成随机种子
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
