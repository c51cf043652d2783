package digest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kimulaco/phpstan-vscode/internal/digest"
)

func TestSum_EqualContent_EqualDigests(t *testing.T) {
	t.Parallel()

	assert.Equal(t, digest.Sum([]byte("<?php $a = 1;")), digest.Sum([]byte("<?php $a = 1;")))
}

func TestSum_DifferentContent_DifferentDigests(t *testing.T) {
	t.Parallel()

	assert.NotEqual(t, digest.Sum([]byte("<?php $a = 1;")), digest.Sum([]byte("<?php $a = 2;")))
}

func TestSumString_MatchesSum(t *testing.T) {
	t.Parallel()

	assert.Equal(t, digest.Sum([]byte("content")), digest.SumString("content"))
}
