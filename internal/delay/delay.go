package delay

import (
	"math/rand/v2"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Policy holds the configured latency bounds in milliseconds. A fixed
// delay has min == max. Policies are immutable and safe to share across
// concurrent handlers.
type Policy struct {
	min uint64
	max uint64
}

// Parse accepts either a single non-negative integer ("250") or a
// "min-max" range ("30-150"). Range bounds are strict: min must be less
// than max, so a fixed delay is written as a single value.
func Parse(spec string) (Policy, error) {
	if strings.Contains(spec, "-") {
		parts := strings.Split(spec, "-")
		if len(parts) != 2 {
			return Policy{}, validation.NewError("validation_invalid_delay_range", "delay range must be in min-max format")
		}

		min, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			return Policy{}, validation.NewError("validation_invalid_delay_min", "minimum delay must be a non-negative integer")
		}

		max, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return Policy{}, validation.NewError("validation_invalid_delay_max", "maximum delay must be a non-negative integer")
		}

		if min >= max {
			return Policy{}, validation.NewError("validation_invalid_delay_order", "minimum delay must be less than maximum delay")
		}

		return Policy{min: min, max: max}, nil
	}

	value, err := strconv.ParseUint(spec, 10, 64)
	if err != nil {
		return Policy{}, validation.NewError("validation_invalid_delay", "delay must be a non-negative integer in milliseconds")
	}

	return Policy{min: value, max: value}, nil
}

// Sample draws the delay for one request. Ranged policies return a
// uniformly distributed value in [min, max] inclusive. Safe for
// uncoordinated concurrent use.
func (p Policy) Sample() uint64 {
	if p.min == p.max {
		return p.min
	}

	span := p.max - p.min + 1
	if span == 0 {
		// The span wraps to zero only when [min, max] covers every
		// uint64, so any draw is in range.
		return rand.Uint64()
	}

	return p.min + rand.Uint64N(span)
}

func (p Policy) Min() uint64 { return p.min }

func (p Policy) Max() uint64 { return p.max }
