package automation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/galdyn/internal/config"
)

var ErrBadTarget = errors.New("automation: bad target")

// Apply sets the run-file value named by target to v, in the unit the run
// file already uses there. Targets are
//
//	potential.<component>.<param>   constant value, or point_value of a linear one
//	initial.q.<i>, initial.p.<i>    flat index into the initial vectors
//	integration.t1, integration.rtol, integration.atol
//
// Pointers shared with other configs are replaced, never written through.
func Apply(cfg *config.Config, target string, v float64) error {
	parts := strings.Split(target, ".")
	switch {
	case len(parts) == 3 && parts[0] == "potential":
		for i := range cfg.Potential {
			comp := &cfg.Potential[i]
			if comp.Name != parts[1] {
				continue
			}
			pc, ok := comp.Params[parts[2]]
			if !ok {
				return fmt.Errorf("%w: %s has no parameter %q", ErrBadTarget, comp.Name, parts[2])
			}
			if pc.IsLinear() {
				if pc.PointValue == nil {
					return fmt.Errorf("%w: %s: linear parameter without a point value", ErrBadTarget, target)
				}
				pv := *pc.PointValue
				pv.Value = v
				pc.PointValue = &pv
			} else {
				val := v
				pc.Value = &val
			}
			comp.Params[parts[2]] = pc
			return nil
		}
		return fmt.Errorf("%w: no component %q", ErrBadTarget, parts[1])

	case len(parts) == 3 && parts[0] == "initial":
		var vec *config.VectorConfig
		switch parts[1] {
		case "q":
			vec = &cfg.Initial.Q
		case "p":
			vec = &cfg.Initial.P
		default:
			return fmt.Errorf("%w: %s", ErrBadTarget, target)
		}
		i, err := strconv.Atoi(parts[2])
		if err != nil || i < 0 || i >= len(vec.Values) {
			return fmt.Errorf("%w: %s: index out of range", ErrBadTarget, target)
		}
		vals := append([]float64(nil), vec.Values...)
		vals[i] = v
		vec.Values = vals
		return nil

	case len(parts) == 2 && parts[0] == "integration":
		switch parts[1] {
		case "t1":
			cfg.Integration.T1.Value = v
		case "rtol":
			cfg.Integration.RTol = v
		case "atol":
			cfg.Integration.ATol = v
		default:
			return fmt.Errorf("%w: %s", ErrBadTarget, target)
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrBadTarget, target)
}
