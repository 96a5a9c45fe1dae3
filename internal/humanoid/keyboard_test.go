package humanoid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestKeyDelayBounds(t *testing.T) {
	typer := NewTyper(65*time.Millisecond, zap.NewNop())

	pairs := []struct{ prev, curr rune }{
		{0, 'a'},
		{'t', 'h'},
		{'a', ' '},
		{'.', 'A'},
		{'x', 'Z'},
	}

	// Worst case: punctuation (1.5) and shift (1.25) with max jitter 2.2,
	// plus the rare hesitation of up to 700ms.
	maxBase := float64(65*time.Millisecond) * 1.5 * 1.25 * 2.2
	max := time.Duration(maxBase) + 700*time.Millisecond

	for _, p := range pairs {
		for i := 0; i < 500; i++ {
			d := typer.keyDelay(p.prev, p.curr)
			assert.Greater(t, d, time.Duration(0))
			assert.LessOrEqual(t, d, max)
		}
	}
}

func TestKeyDelayDigraphsAreFaster(t *testing.T) {
	typer := NewTyper(65*time.Millisecond, zap.NewNop())

	var digraph, plain time.Duration
	const rounds = 2000
	for i := 0; i < rounds; i++ {
		digraph += typer.keyDelay('t', 'h')
		plain += typer.keyDelay('q', 'z')
	}
	assert.Less(t, digraph/rounds, plain/rounds,
		"common digraphs must average faster than unrelated pairs")
}

func TestNewTyperDefaultsBaseDelay(t *testing.T) {
	typer := NewTyper(0, zap.NewNop())
	assert.Equal(t, 65*time.Millisecond, typer.baseDelay)
}
