package findr

import (
	"context"

	"github.com/findr-go/findr/internal/bindings"
	"github.com/findr-go/findr/pkg/findr/array"
)

var (
	gassistArgs = []bindings.Tag{
		bindings.ConstMatrixG, bindings.ConstMatrixF, bindings.ConstMatrixF,
		bindings.VectorF, bindings.MatrixF, bindings.MatrixF, bindings.MatrixF,
		bindings.SizeT, bindings.Byte,
	}
	sigGassistA   = signature{"pijs_gassist_a", bindings.Int, gassistArgs}
	sigGassistTot = signature{"pijs_gassist_tot", bindings.Int, gassistArgs}
	sigGassist    = signature{"pijs_gassist", bindings.Int, []bindings.Tag{
		bindings.ConstMatrixG, bindings.ConstMatrixF, bindings.ConstMatrixF,
		bindings.VectorF, bindings.MatrixF, bindings.MatrixF, bindings.MatrixF, bindings.MatrixF,
		bindings.SizeT, bindings.Byte, bindings.SizeT,
	}}
)

// GassistResult holds the outputs of the genotype-assisted causal test for
// the model E(A)->A->B.
type GassistResult struct {
	Status int64

	// P1 (ng) is the probability that E(A) regulates A. Inputs are expected
	// to be significant eQTLs, so the native side reports a constant 1.
	P1 *array.Dense[float32]
	// P2b (ng×nt) is the bold secondary linkage test.
	P2b *array.Dense[float32]
	// P2c (ng×nt) is the conservative secondary linkage test.
	P2c *array.Dense[float32]
	// P3 (ng×nt) is the independence test.
	P3 *array.Dense[float32]
}

// GassistSubtests holds the five separate subtest probabilities produced by
// Gassist.
type GassistSubtests struct {
	Status int64

	P1 *array.Dense[float32] // ng
	P2 *array.Dense[float32] // ng×nt, secondary linkage
	P3 *array.Dense[float32] // ng×nt, conditional independence
	P4 *array.Dense[float32] // ng×nt, relevance
	P5 *array.Dense[float32] // ng×nt, controlled
}

// GassistA runs the genotype-assisted test, normalizing per source gene.
// dg and dt are ng×ns, dt2 is nt×ns. Row i of dg must be the best eQTL of
// gene i in dt.
func (l *Library) GassistA(ctx context.Context, dg *array.Dense[uint8], dt, dt2 *array.Dense[float32], opts Options) (*GassistResult, error) {
	return l.gassist4(ctx, sigGassistA, dg, dt, dt2, opts)
}

// GassistTot is GassistA with probabilities normalized over all pairs.
func (l *Library) GassistTot(ctx context.Context, dg *array.Dense[uint8], dt, dt2 *array.Dense[float32], opts Options) (*GassistResult, error) {
	return l.gassist4(ctx, sigGassistTot, dg, dt, dt2, opts)
}

// Gassist returns every subtest probability separately and honors
// Options.MemoryLimit.
func (l *Library) Gassist(ctx context.Context, dg *array.Dense[uint8], dt, dt2 *array.Dense[float32], opts Options) (*GassistSubtests, error) {
	nv, err := l.checkGassist(dg, dt, dt2, opts)
	if err != nil {
		return nil, err
	}
	ml, err := memoryLimit(opts)
	if err != nil {
		return nil, err
	}
	ng, nt := dt.Dim(0), dt2.Dim(0)
	r := &GassistSubtests{
		P1: array.New[float32](ng),
		P2: array.New[float32](ng, nt),
		P3: array.New[float32](ng, nt),
		P4: array.New[float32](ng, nt),
		P5: array.New[float32](ng, nt),
	}
	status, err := l.call(ctx, sigGassist,
		dg.ReadOnly(), dt.ReadOnly(), dt2.ReadOnly(),
		r.P1, r.P2, r.P3, r.P4, r.P5, nv, opts.NoDiag, ml)
	if err != nil {
		return nil, err
	}
	r.Status = status
	return r, statusErr(sigGassist.symbol, status)
}

func (l *Library) gassist4(ctx context.Context, sig signature, dg *array.Dense[uint8], dt, dt2 *array.Dense[float32], opts Options) (*GassistResult, error) {
	nv, err := l.checkGassist(dg, dt, dt2, opts)
	if err != nil {
		return nil, err
	}
	ng, nt := dt.Dim(0), dt2.Dim(0)
	r := &GassistResult{
		P1:  array.New[float32](ng),
		P2b: array.New[float32](ng, nt),
		P2c: array.New[float32](ng, nt),
		P3:  array.New[float32](ng, nt),
	}
	status, err := l.call(ctx, sig,
		dg.ReadOnly(), dt.ReadOnly(), dt2.ReadOnly(),
		r.P1, r.P2b, r.P2c, r.P3, nv, opts.NoDiag)
	if err != nil {
		return nil, err
	}
	r.Status = status
	return r, statusErr(sig.symbol, status)
}

func (l *Library) checkGassist(dg *array.Dense[uint8], dt, dt2 *array.Dense[float32], opts Options) (uintptr, error) {
	if err := l.ready(); err != nil {
		return 0, err
	}
	if err := opts.validate(); err != nil {
		return 0, err
	}
	if err := matrix("dg", dg); err != nil {
		return 0, err
	}
	if err := matrix("dt", dt); err != nil {
		return 0, err
	}
	if err := matrix("dt2", dt2); err != nil {
		return 0, err
	}
	if dt.Dim(0) != dg.Dim(0) || dt.Dim(1) != dg.Dim(1) {
		return 0, shapeMismatch("dt", dt.Shape(), dg.Shape())
	}
	if err := sameSamples("dt2", dt2, dg.Dim(1)); err != nil {
		return 0, err
	}
	nv, err := alleleCount(dg, opts.Alleles)
	if err != nil {
		return 0, err
	}
	if err := noNaN([]string{"dt", "dt2"}, dt, dt2); err != nil {
		return 0, err
	}
	return nv, nil
}
