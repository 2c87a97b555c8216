package status

// ColorStop is one stop of a discrete calendar colorscale over the
// normalized [0,1] domain.
type ColorStop struct {
	Pos float64 `json:"pos"`
	Hex string  `json:"hex"`
}

// colorscaleEpsilon separates the paired stops that make each band render as
// a hard edge instead of a gradient.
const colorscaleEpsilon = 1e-6

// DiscreteColorscale builds a non-interpolated colorscale: each color
// occupies an equal-width band of the domain, the last band closed at 1.0.
// One color degenerates to a constant scale; no colors yields no stops.
func DiscreteColorscale(hexes []string) []ColorStop {
	n := len(hexes)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return []ColorStop{{Pos: 0.0, Hex: hexes[0]}, {Pos: 1.0, Hex: hexes[0]}}
	}

	stops := make([]ColorStop, 0, 2*n-1)
	stops = append(stops, ColorStop{Pos: 0.0, Hex: hexes[0]})
	for i := 1; i < n; i++ {
		p := float64(i) / float64(n-1)
		edge := p - colorscaleEpsilon
		if edge < 0 {
			edge = 0
		}
		stops = append(stops, ColorStop{Pos: edge, Hex: hexes[i-1]})
		stops = append(stops, ColorStop{Pos: p, Hex: hexes[i]})
	}
	stops[len(stops)-1].Pos = 1.0
	return stops
}

// VocabularyColorscale is the discrete scale for the full status vocabulary.
func VocabularyColorscale() []ColorStop {
	return DiscreteColorscale(PastelColors)
}
