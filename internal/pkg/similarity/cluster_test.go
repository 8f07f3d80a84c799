package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGreedy(t *testing.T) {
	vectors := [][]float32{
		{1, 0, 0},
		{0.95, 0.05, 0},
		{0, 1, 0},
		{0.9, 0.1, 0},
		{0, 0.97, 0.03},
		{0, 0, 1},
	}

	clusters := Greedy(vectors, 0.8, 2)

	assert.Equal(t, [][]int{{0, 1, 3}, {2, 4}}, clusters)
}

func TestGreedy_SingletonsDiscarded(t *testing.T) {
	vectors := [][]float32{{1, 0}, {0, 1}}
	assert.Empty(t, Greedy(vectors, 0.8, 2))
	assert.Equal(t, [][]int{{0}, {1}}, Greedy(vectors, 0.8, 1))
}

func TestGreedy_SkipsMissingVectors(t *testing.T) {
	vectors := [][]float32{{1, 0}, nil, {1, 0.01}, nil}
	assert.Equal(t, [][]int{{0, 2}}, Greedy(vectors, 0.8, 2))
}

func TestGreedy_Idempotent(t *testing.T) {
	vectors := [][]float32{{1, 0}, {0.9, 0.2}, {0, 1}, {0.1, 0.9}, {0.7, 0.7}}
	first := Greedy(vectors, 0.8, 2)
	second := Greedy(vectors, 0.8, 2)
	assert.Equal(t, first, second)
}

func TestGreedy_NoChaining(t *testing.T) {
	// b 与 a、c 都相似，但 c 与首项 a 不相似，不应被串联进来
	vectors := [][]float32{{1, 0}, {0.9, 0.436}, {0.5, 0.866}}
	assert.Equal(t, [][]int{{0, 1}}, Greedy(vectors, 0.8, 2))
}

func TestRecurringWords(t *testing.T) {
	titles := []string{
		"Invoicing automation for freelancers",
		"Automated invoicing for freelance designers",
		"Invoice reminders for freelancers",
	}

	words := RecurringWords(titles, 2, 3)

	assert.Equal(t, []WordCount{
		{Word: "freelancers", Count: 2},
		{Word: "invoicing", Count: 2},
	}, words)
}

func TestRecurringWords_NoneRecurring(t *testing.T) {
	assert.Empty(t, RecurringWords([]string{"alpha project", "beta initiative"}, 2, 3))
}
