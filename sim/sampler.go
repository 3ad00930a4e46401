package sim

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Draw is the outcome of one sampler step.
type Draw struct {
	Channel    ChannelID
	Site       Site
	Dwell      float64 // exponential waiting time before the event
	Propensity float64 // total propensity C the draw was made under
}

// Sampler selects channels, waiting times and sites under a fixed rate table.
// It is the direct-method (VSS) selection: one uniform per decision.
type Sampler struct {
	rates   RateTable
	weights []float64
	cum     []float64
}

// NewSampler validates rates and allocates the per-step buffers.
func NewSampler(rates RateTable) (*Sampler, error) {
	if err := rates.Validate(); err != nil {
		return nil, err
	}
	return &Sampler{
		rates:   rates,
		weights: make([]float64, len(rates)),
		cum:     make([]float64, len(rates)),
	}, nil
}

// Rates returns the rate table.
func (s *Sampler) Rates() RateTable { return s.rates }

// Propensity returns C = Σ rate[c]·occ[c].
func (s *Sampler) Propensity(occ []int) float64 {
	s.fill(occ)
	return s.cum[len(s.cum)-1]
}

func (s *Sampler) fill(occ []int) {
	for c, k := range s.rates {
		s.weights[c] = k * float64(occ[c])
	}
	floats.CumSum(s.cum, s.weights)
}

// SelectChannel picks the smallest c with r1 < W[c]/C, where W is the cumulative
// propensity. It returns ok == false when C == 0. If rounding leaves r1 above
// the last normalized bound, the last channel carrying mass is chosen.
func (s *Sampler) SelectChannel(occ []int, r1 float64) (c ChannelID, total float64, ok bool) {
	s.fill(occ)
	total = s.cum[len(s.cum)-1]
	if total <= 0 {
		return 0, 0, false
	}
	n := len(s.cum)
	i := sort.Search(n, func(i int) bool { return r1 < s.cum[i]/total })
	if i == n {
		for i = n - 1; i > 0 && s.weights[i] == 0; i-- {
		}
	}
	return ChannelID(i), total, true
}

// WaitingTime returns the exponential dwell −ln(r2)/total.
func WaitingTime(r2, total float64) (float64, error) {
	if !(r2 > 0 && r2 < 1) {
		return 0, fmt.Errorf("%w: got %v", ErrUniformDomain, r2)
	}
	return -math.Log(r2) / total, nil
}

// Sample performs the three draws of one step against idx. The second return
// value is false when no channel is enabled anywhere (stuck); that is a normal
// terminal condition, not an error.
func (s *Sampler) Sample(idx *EventIndex, src Uniform) (Draw, bool, error) {
	occ := idx.occurrences()
	if len(occ) != len(s.rates) {
		return Draw{}, false, fmt.Errorf("%w: rate table has %d entries, index has %d channels",
			ErrConfig, len(s.rates), len(occ))
	}

	r1 := src.Uniform()
	if !(r1 > 0 && r1 < 1) {
		return Draw{}, false, fmt.Errorf("%w: channel draw %v", ErrUniformDomain, r1)
	}
	c, total, ok := s.SelectChannel(occ, r1)
	if !ok {
		return Draw{}, false, nil
	}

	dwell, err := WaitingTime(src.Uniform(), total)
	if err != nil {
		return Draw{}, false, err
	}

	r3 := src.Uniform()
	if !(r3 > 0 && r3 < 1) {
		return Draw{}, false, fmt.Errorf("%w: site draw %v", ErrUniformDomain, r3)
	}
	n := occ[c]
	k := min(int(r3*float64(n)), n-1)

	return Draw{Channel: c, Site: idx.Pick(c, k), Dwell: dwell, Propensity: total}, true, nil
}
