// sim/generator.go
//
// The unbounded shipment generator: a Poisson-distributed number of shipments
// arrives each day, spread evenly over that day, with parent pairs cycling
// 1 through 15.

package sim

import "github.com/sirupsen/logrus"

// runGenerator spawns shipment processes at the daily rate the capacity plan
// calls for, forever. The generator is abandoned when the horizon is reached.
func (s *Simulation) runGenerator(p *Process) {
	mean := s.plan.ShipmentsPerDay
	for {
		today := s.rng.Arrivals.Poisson(mean)
		if today < 1 {
			today = 1
		}
		logrus.Debugf("[day %.2f] generating %d shipments", s.env.Now(), today)
		interval := 1.0 / float64(today)
		for i := 0; i < today; i++ {
			s.InjectShipment(s.cfg.ShipmentEggs)
			p.Delay(interval)
		}
		if rest := 1.0 - float64(today)*interval; rest > 0 {
			p.Delay(rest)
		}
	}
}
