package golbm

import (
	"runtime"

	"github.com/phil-mansfield/golbm/geom"
	"github.com/phil-mansfield/golbm/lattice"
)

// The domain is split into contiguous bands of rows, one per worker. Every
// phase of a step (collision, streaming, moments, forces) is run by all the
// workers on their own bands and joined before the next phase starts, so a
// phase only ever reads values that the previous phase finished writing.

type workspace struct {
	lowY, highY int
}

// phase is a per-node sweep over the rows [lowY, highY).
type phase func(lowY, highY int)

func newWorkspaces(threads, ny int) []workspace {
	workers := threads
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > ny {
		workers = ny
	}

	ws := make([]workspace, workers)
	for id := range ws {
		ws[id].lowY = ny * id / workers
		ws[id].highY = ny * (id + 1) / workers
	}
	return ws
}

// parallel runs ph over every workspace and waits for all of them.
func (sim *Simulation) parallel(ph phase) {
	workers := len(sim.workspaces)
	out := make(chan int, workers)

	for id := 0; id < workers-1; id++ {
		go sim.chanPhase(id, ph, out)
	}
	id := workers - 1
	sim.chanPhase(id, ph, out)

	for i := 0; i < workers; i++ {
		<-out
	}
}

func (sim *Simulation) chanPhase(id int, ph phase, out chan<- int) {
	w := &sim.workspaces[id]
	ph(w.lowY, w.highY)
	out <- id
}

// neighborTable returns, for every direction k, the index of the node
// reached from each node by moving along c_k with periodic wrapping.
func neighborTable(g *geom.Grid) [lattice.Q][]int32 {
	var nb [lattice.Q][]int32
	for k := range nb {
		nb[k] = make([]int32, g.Area)
		for idx := range nb[k] {
			x, y := g.Coords(idx)
			nb[k][idx] = int32(g.Neighbor(x, y, k))
		}
	}
	return nb
}
