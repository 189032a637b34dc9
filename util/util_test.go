package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortedKeys(t *testing.T) {
	m := map[int64]string{300: "c", 0: "a", 100: "b"}
	assert.Equal(t, []int64{0, 100, 300}, SortedKeys(m))
	assert.Empty(t, SortedKeys(map[string]int{}))
}

func TestMinMax(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(int64(2), Min(int64(2), int64(5)))
	assert.Equal(int64(5), Max(int64(2), int64(5)))
	assert.Equal(-1, Min(-1, 0))
}
