package findr

import (
	"context"

	"github.com/findr-go/findr/internal/bindings"
	"github.com/findr-go/findr/pkg/findr/array"
)

var (
	sigRankA = signature{"pij_rank_a", bindings.Int, []bindings.Tag{
		bindings.ConstMatrixF, bindings.ConstMatrixF, bindings.MatrixF, bindings.Byte,
	}}
	sigRank = signature{"pij_rank", bindings.Int, []bindings.Tag{
		bindings.ConstMatrixF, bindings.ConstMatrixF, bindings.MatrixF, bindings.Byte, bindings.SizeT,
	}}
)

// RankResult holds the output of a correlation operation.
type RankResult struct {
	// Status is the native return code; zero means success.
	Status int64
	// P[i,j] is the probability that gene i of dt correlates with gene j of
	// dt2.
	P *array.Dense[float32]
}

// RankA computes pairwise correlation probabilities between the rows of dt
// (ng×ns) and dt2 (nt×ns), normalizing per source gene. The result is ng×nt.
func (l *Library) RankA(ctx context.Context, dt, dt2 *array.Dense[float32], opts Options) (*RankResult, error) {
	return l.rank(ctx, sigRankA, dt, dt2, opts, false)
}

// Rank is RankA with the null distribution pooled over all pairs. It honors
// Options.MemoryLimit.
func (l *Library) Rank(ctx context.Context, dt, dt2 *array.Dense[float32], opts Options) (*RankResult, error) {
	return l.rank(ctx, sigRank, dt, dt2, opts, true)
}

func (l *Library) rank(ctx context.Context, sig signature, dt, dt2 *array.Dense[float32], opts Options, withLimit bool) (*RankResult, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := matrix("dt", dt); err != nil {
		return nil, err
	}
	if err := matrix("dt2", dt2); err != nil {
		return nil, err
	}
	if err := sameSamples("dt2", dt2, dt.Dim(1)); err != nil {
		return nil, err
	}
	if err := noNaN([]string{"dt", "dt2"}, dt, dt2); err != nil {
		return nil, err
	}

	p := array.New[float32](dt.Dim(0), dt2.Dim(0))
	args := []any{dt.ReadOnly(), dt2.ReadOnly(), p, opts.NoDiag}
	if withLimit {
		ml, err := memoryLimit(opts)
		if err != nil {
			return nil, err
		}
		args = append(args, ml)
	}

	status, err := l.call(ctx, sig, args...)
	if err != nil {
		return nil, err
	}
	return &RankResult{Status: status, P: p}, statusErr(sig.symbol, status)
}
