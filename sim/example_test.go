package sim_test

import (
	"fmt"

	"github.com/lattice-sim/lattice-sim/sim"
	"github.com/lattice-sim/lattice-sim/sim/models"
)

func ExampleBuildIndex() {
	lat, _ := sim.NewLattice(10, 1, sim.Boundary{})
	x := sim.BuildIndex(models.Pair{}, lat)
	for c, name := range (models.Pair{}).Channels() {
		fmt.Println(name, x.Occurrence(sim.ChannelID(c)))
	}
	// Output:
	// attach 9
	// detach 0
}

// replay hands out a fixed sequence of uniform draws.
type replay struct{ vals []float64 }

func (r *replay) Uniform() float64 {
	v := r.vals[0]
	r.vals = r.vals[1:]
	return v
}

func ExampleSimulator_Step() {
	lat, _ := sim.NewLattice(5, 1, sim.Boundary{})
	s, err := sim.NewSimulator(sim.NewConfig(models.Pair{}, sim.RateTable{1, 1}, 0), lat)
	if err != nil {
		panic(err)
	}
	// channel draw, waiting-time draw, site draw
	s.SetUniform(&replay{vals: []float64{0.3, 0.5, 0.99}})

	ev, _, _ := s.Step()
	fmt.Println(models.Pair{}.Channels()[ev.Channel], ev.Site)
	fmt.Println(s.Lattice().Grid())
	// Output:
	// attach (3,0)
	// [[0] [0] [0] [1] [2]]
}
