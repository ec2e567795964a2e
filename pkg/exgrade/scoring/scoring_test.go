package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/models"
)

var errBackendDown = errors.New("backend down")

type failingScorer struct{ calls int }

func (f *failingScorer) Score(context.Context, Kind, any) (Feedback, error) {
	f.calls++
	return Feedback{}, errBackendDown
}

func TestStub_Concept(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	fb, err := Stub{}.Score(ctx, KindConcept, "It is an ABSOLUTE reference")
	require.NoError(t, err)
	assert.Equal(t, 4, fb.Score)

	fb, err = Stub{}.Score(ctx, KindConcept, "$A$1 locks row and column")
	require.NoError(t, err)
	assert.Equal(t, 4, fb.Score)

	fb, err = Stub{}.Score(ctx, KindConcept, "a cell")
	require.NoError(t, err)
	assert.Equal(t, 2, fb.Score)
}

func TestStub_Workbook(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	fb, err := Stub{}.Score(ctx, KindWorkbook, &models.Report{Pass: true})
	require.NoError(t, err)
	assert.Equal(t, 5, fb.Score)

	fb, err = Stub{}.Score(ctx, KindWorkbook, models.Report{Pass: false})
	require.NoError(t, err)
	assert.Equal(t, 1, fb.Score)

	_, err = Stub{}.Score(ctx, KindWorkbook, 42)
	assert.ErrorIs(t, err, ErrUnsupportedPayload)

	_, err = Stub{}.Score(ctx, Kind("essay"), "x")
	assert.ErrorIs(t, err, ErrUnsupportedPayload)
}

func TestFallback(t *testing.T) {
	t.Parallel()

	primary := &failingScorer{}
	scorer := WithFallback(primary, Stub{}, nil)

	fb, err := scorer.Score(context.Background(), KindWorkbook, &models.Report{Pass: true})
	require.NoError(t, err)
	assert.Equal(t, 5, fb.Score)
	assert.Equal(t, 1, primary.calls)
}

func TestFuse(t *testing.T) {
	t.Parallel()

	pass := &models.Report{Pass: true}
	assert.Equal(t, 100, Fuse(pass, Feedback{Score: 5}))

	twoBad := &models.Report{RowMismatches: make([]models.RowMismatch, 2)}
	assert.Equal(t, 30, DeterministicScore(twoBad))
	assert.Equal(t, 26, Fuse(twoBad, Feedback{Score: 1}))

	manyBad := &models.Report{RowMismatches: make([]models.RowMismatch, 7)}
	assert.Equal(t, 0, DeterministicScore(manyBad))
	assert.Equal(t, 8, Fuse(manyBad, Feedback{Score: 1}))

	assert.Equal(t, 0, Fuse(nil, Feedback{}))
}
