package domain

import (
	"math/rand"
	"time"
)

// ExponentialInterArrival returns an inter-arrival sampler for a Poisson
// arrival process at ratePerHour arrivals per hour, suitable as Generator's
// or TandemNetwork's arrivalTime parameter.
func ExponentialInterArrival(ratePerHour float64) func(*rand.Rand) time.Duration {
	return func(rng *rand.Rand) time.Duration {
		return time.Duration(rng.ExpFloat64() / ratePerHour * float64(time.Hour))
	}
}

// ExponentialServiceTime returns a Server service-time sampler whose duration
// is exponentially distributed with mean 1/ratePerHour hours.
func ExponentialServiceTime(ratePerHour float64) func(rng *rand.Rand, load int) time.Duration {
	return func(rng *rand.Rand, _ int) time.Duration {
		return time.Duration(rng.ExpFloat64() / ratePerHour * float64(time.Hour))
	}
}
