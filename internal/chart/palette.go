package chart

// Point fills, assigned to doping-allegation values in first-seen order.
const (
	ColorFirst  = "#b16f6f"
	ColorSecond = "#6f95b1"
)

// Palette is an ordinal color scale with an implicit domain: a value not seen
// before is appended to the domain and takes the next color, cycling through
// the colors when there are more values than colors.
//
// A Palette is not safe for concurrent use.
type Palette struct {
	colors []string
	domain []bool
	index  map[bool]int
}

// NewPalette returns an empty palette over colors.
func NewPalette(colors ...string) *Palette {
	return &Palette{colors: colors, index: make(map[bool]int, 2)}
}

// Color returns the color for v, extending the domain if needed.
func (p *Palette) Color(v bool) string {
	i, ok := p.index[v]
	if !ok {
		i = len(p.domain)
		p.index[v] = i
		p.domain = append(p.domain, v)
	}
	if len(p.colors) == 0 {
		return ""
	}
	return p.colors[i%len(p.colors)]
}

// Domain returns the values seen so far, in first-seen order.
func (p *Palette) Domain() []bool {
	out := make([]bool, len(p.domain))
	copy(out, p.domain)
	return out
}
