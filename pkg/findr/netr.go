package findr

import (
	"context"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/findr-go/findr/internal/bindings"
	"github.com/findr-go/findr/internal/errdefs"
	"github.com/findr-go/findr/pkg/findr/array"
)

var sigOneGreedy = signature{"netr_one_greedy", bindings.SizeT, []bindings.Tag{
	bindings.ConstMatrixF, bindings.MatrixUC, bindings.SizeT, bindings.SizeT, bindings.SizeT,
}}

// MaxNetworkNodes is the largest node count whose edge codes i*n+j fit the
// 32-bit keys of Edges.
const MaxNetworkNodes = 1 << 16

func networkSize(name string, nt int) error {
	if nt > MaxNetworkNodes {
		return fmt.Errorf("%w: %s has %d nodes, limit is %d", errdefs.ErrShape, name, nt, MaxNetworkNodes)
	}
	return nil
}

// Network is a directed graph over nt genes stored as an nt×nt byte matrix.
type Network struct {
	adj *array.Dense[uint8]
}

// NewNetwork wraps an nt×nt adjacency matrix; any non-zero cell is an edge.
func NewNetwork(adj *array.Dense[uint8]) (*Network, error) {
	if err := matrix("adj", adj); err != nil {
		return nil, err
	}
	if adj.Dim(0) != adj.Dim(1) {
		return nil, fmt.Errorf("%w: adjacency matrix %v is not square", errdefs.ErrShape, adj.Shape())
	}
	if err := networkSize("adj", adj.Dim(0)); err != nil {
		return nil, err
	}
	return &Network{adj: adj}, nil
}

// Len returns the number of nodes.
func (n *Network) Len() int { return n.adj.Dim(0) }

// Has reports whether the edge i->j is present.
func (n *Network) Has(i, j int) bool { return n.adj.At(i, j) != 0 }

// Matrix returns the adjacency matrix.
func (n *Network) Matrix() *array.Dense[uint8] { return n.adj }

// Edges returns every edge i->j encoded as i*Len()+j.
func (n *Network) Edges() *roaring.Bitmap {
	bm := roaring.New()
	nt := n.Len()
	for i := 0; i < nt; i++ {
		for j := 0; j < nt; j++ {
			if n.Has(i, j) {
				bm.Add(uint32(i*nt + j))
			}
		}
	}
	return bm
}

// Count returns the number of edges.
func (n *Network) Count() int { return int(n.Edges().GetCardinality()) }

// GreedyResult holds the output of OneGreedy.
type GreedyResult struct {
	Status int64
	Net    *Network
}

// OneGreedy reconstructs a directed acyclic graph from prior (nt×nt), where
// prior[i,j] scores the edge i->j. Edges are added most significant first,
// skipping any that would close a cycle or break a limit.
func (l *Library) OneGreedy(ctx context.Context, prior *array.Dense[float32], limits GreedyLimits) (*GreedyResult, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	lim, err := limits.words()
	if err != nil {
		return nil, err
	}
	if err := matrix("prior", prior); err != nil {
		return nil, err
	}
	nt := prior.Dim(0)
	if nt == 0 {
		return nil, fmt.Errorf("%w: prior is empty", errdefs.ErrShape)
	}
	if prior.Dim(1) != nt {
		return nil, shapeMismatch("prior", prior.Shape(), []int{nt, nt})
	}
	if err := networkSize("prior", nt); err != nil {
		return nil, err
	}
	if err := noNaN([]string{"prior"}, prior); err != nil {
		return nil, err
	}

	net := array.New[uint8](nt, nt)
	status, err := l.call(ctx, sigOneGreedy, prior.ReadOnly(), net, lim[0], lim[1], lim[2])
	if err != nil {
		return nil, err
	}
	return &GreedyResult{Status: status, Net: &Network{adj: net}}, statusErr(sigOneGreedy.symbol, status)
}
