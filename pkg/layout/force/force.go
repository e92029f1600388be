// Package force implements a Fruchterman-Reingold style force-directed
// layout. Every node repels every other node while edges pull their
// endpoints together; integrating the resulting forces over enough steps
// settles the network into a readable arrangement.
//
// The simulation operates on flat position and velocity buffers with a
// flattened adjacency list (offsets plus counts), so a step is two tight
// loops over contiguous slices rather than pointer chasing through the
// network structure. Call [Simulation.Apply] to write the final positions
// back onto the network's viz data.
package force

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/netweave/netweave/pkg/network"
)

// Options configures the force simulation.
type Options struct {
	// K is the ideal edge length; repulsion scales with K squared.
	K float64
	// Damping is the velocity retention factor per step (0.0 to 1.0).
	Damping float64
	// RepulsionStrength multiplies the repulsive force.
	RepulsionStrength float64
	// Speed scales how far positions move per step.
	Speed float64
	// Seed drives the initial placement of nodes without positions.
	Seed uint64
	// ThreeD places and simulates nodes in three dimensions. When false
	// the Z coordinate stays zero.
	ThreeD bool
}

var defaultOpts = Options{
	K:                 10.0,
	Damping:           0.9,
	RepulsionStrength: 1.0,
	Speed:             1.0,
}

// vec3 is a position or velocity in simulation space.
type vec3 struct {
	x, y, z float64
}

// Simulation holds the mutable state of a running layout.
type Simulation struct {
	net  *network.Network
	opts Options

	ids       []string
	positions []vec3
	velocity  []vec3
	scratch   []vec3

	// Flattened adjacency: neighbors of node i are
	// adj[offsets[i] : offsets[i]+counts[i]].
	adj     []int
	offsets []int
	counts  []int
}

// New creates a simulation over the network's current structure.
// Nodes that already carry a viz position start there; the rest are
// scattered deterministically from the seed. A nil opts uses defaults,
// and non-positive numeric fields fall back to their default values.
func New(net *network.Network, opts *Options) *Simulation {
	o := defaultOpts
	if opts != nil {
		o = *opts
		if o.K <= 0 {
			o.K = defaultOpts.K
		}
		if o.Damping <= 0 {
			o.Damping = defaultOpts.Damping
		}
		if o.RepulsionStrength <= 0 {
			o.RepulsionStrength = defaultOpts.RepulsionStrength
		}
		if o.Speed <= 0 {
			o.Speed = defaultOpts.Speed
		}
	}

	nodes := net.Nodes()
	sim := &Simulation{
		net:       net,
		opts:      o,
		ids:       make([]string, len(nodes)),
		positions: make([]vec3, len(nodes)),
		velocity:  make([]vec3, len(nodes)),
		scratch:   make([]vec3, len(nodes)),
	}

	index := make(map[string]int, len(nodes))
	rng := rand.New(rand.NewPCG(o.Seed, o.Seed^0xdeadbeef))
	spread := o.K * math.Sqrt(float64(len(nodes))+1)

	for i, n := range nodes {
		sim.ids[i] = n.ID
		index[n.ID] = i
		if p := n.Viz.Position; p != nil {
			sim.positions[i] = vec3{p.X, p.Y, p.Z}
			continue
		}
		pos := vec3{
			x: (rng.Float64() - 0.5) * spread,
			y: (rng.Float64() - 0.5) * spread,
		}
		if o.ThreeD {
			pos.z = (rng.Float64() - 0.5) * spread
		}
		sim.positions[i] = pos
	}

	// Build the flattened adjacency list. Edges contribute both
	// directions; layout attraction ignores edge direction.
	neighbors := make([][]int, len(nodes))
	for _, e := range net.Edges() {
		u, okU := index[e.Source]
		v, okV := index[e.Target]
		if !okU || !okV {
			continue
		}
		neighbors[u] = append(neighbors[u], v)
		neighbors[v] = append(neighbors[v], u)
	}

	sim.offsets = make([]int, len(nodes))
	sim.counts = make([]int, len(nodes))
	offset := 0
	for i, ns := range neighbors {
		sim.offsets[i] = offset
		sim.counts[i] = len(ns)
		sim.adj = append(sim.adj, ns...)
		offset += len(ns)
	}

	return sim
}

// Step advances the simulation by one tick. All forces are computed from
// the positions at the start of the tick, so update order does not matter.
func (s *Simulation) Step() {
	k := s.opts.K
	kSq := k * k

	for i := range s.positions {
		pos := s.positions[i]
		var force vec3

		// Repulsion from every other node.
		for j := range s.positions {
			if i == j {
				continue
			}
			delta := sub(pos, s.positions[j])
			distSq := dot(delta, delta)
			dist := math.Sqrt(distSq)

			if dist > 1e-3 {
				f := kSq * s.opts.RepulsionStrength / distSq
				force = add(force, scale(delta, f))
			} else {
				// Coincident nodes get a nudge apart along the x axis,
				// direction chosen by index order so the pair actually
				// separates instead of drifting together.
				nudge := kSq
				if i < j {
					nudge = -kSq
				}
				force = add(force, vec3{x: nudge})
			}
		}

		// Attraction along edges.
		start := s.offsets[i]
		for _, j := range s.adj[start : start+s.counts[i]] {
			delta := sub(pos, s.positions[j])
			dist := math.Sqrt(dot(delta, delta))
			force = sub(force, scale(delta, dist/k))
		}

		// Integrate with damping and a speed cap.
		vel := scale(add(s.velocity[i], scale(force, 0.01)), s.opts.Damping)
		if speed := math.Sqrt(dot(vel, vel)); speed > 2*k {
			vel = scale(vel, 2*k/speed)
		}

		s.velocity[i] = vel
		s.scratch[i] = add(pos, scale(vel, s.opts.Speed))
	}

	s.positions, s.scratch = s.scratch, s.positions
}

// StepN advances the simulation by n ticks, checking ctx between ticks.
// Returns the context error if cancelled, nil otherwise.
func (s *Simulation) StepN(ctx context.Context, n int) error {
	for range n {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.Step()
	}
	return nil
}

// Position returns the current simulated position of a node, and false if
// the node was not part of the network when the simulation was built.
func (s *Simulation) Position(id string) (network.Position, bool) {
	for i, nid := range s.ids {
		if nid == id {
			p := s.positions[i]
			return network.Position{X: p.x, Y: p.y, Z: p.z}, true
		}
	}
	return network.Position{}, false
}

// Apply writes the simulated positions back onto the network's viz data.
func (s *Simulation) Apply() {
	for i, id := range s.ids {
		node, ok := s.net.Node(id)
		if !ok {
			continue
		}
		p := s.positions[i]
		node.Viz.Position = &network.Position{X: p.x, Y: p.y, Z: p.z}
	}
}

// Run builds a simulation, advances it by steps ticks and writes the
// resulting positions back to the network.
func Run(ctx context.Context, net *network.Network, steps int, opts *Options) error {
	sim := New(net, opts)
	if err := sim.StepN(ctx, steps); err != nil {
		return err
	}
	sim.Apply()
	return nil
}

func add(a, b vec3) vec3    { return vec3{a.x + b.x, a.y + b.y, a.z + b.z} }
func sub(a, b vec3) vec3    { return vec3{a.x - b.x, a.y - b.y, a.z - b.z} }
func dot(a, b vec3) float64 { return a.x*b.x + a.y*b.y + a.z*b.z }
func scale(v vec3, f float64) vec3 {
	return vec3{v.x * f, v.y * f, v.z * f}
}
