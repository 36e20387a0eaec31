package hdl

import (
	"fmt"
	"io"
	"math/big"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/alecthomas/participle/v2"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/gatelib"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist"
)

// GenericCategory is the gate data category holding instance parameters.
const GenericCategory = "generic"

const (
	bitConst0 = "$const0"
	bitConst1 = "$const1"
	bitUndef  = "$undef"
)

var (
	buildOnce sync.Once
	fileParse *participle.Parser[File]
	buildErr  error
)

func parser() (*participle.Parser[File], error) {
	buildOnce.Do(func() {
		fileParse, buildErr = participle.Build[File](
			participle.Lexer(VerilogLexer),
			participle.Elide("Comment", "Attribute", "Whitespace"),
			participle.UseLookahead(3),
		)
	})
	return fileParse, buildErr
}

// Parse parses Verilog source into its syntax tree.
func Parse(r io.Reader) (*File, error) {
	p, err := parser()
	if err != nil {
		return nil, fmt.Errorf("hdl: failed to build parser: %w", err)
	}
	f, err := p.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("hdl: %w: parse error: %w", netlist.ErrInvalidArgument, err)
	}
	return f, nil
}

// ParseString parses Verilog source held in a string.
func ParseString(src string) (*File, error) {
	return Parse(strings.NewReader(src))
}

// LoadNetlist reads the structural Verilog file at path.
func LoadNetlist(path string, lib *gatelib.Library) (*netlist.Netlist, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("hdl: %w: %w", netlist.ErrIO, err)
	}
	defer file.Close()

	nl, err := Read(file, lib)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return nl, nil
}

// Read builds the netlist of the top module in r. Instances must name gate
// types of lib. Ports become global nets and record their names as port
// data; nets joined by assign statements become one net; constant literals
// are driven by ground and power gates.
func Read(r io.Reader, lib *gatelib.Library) (*netlist.Netlist, error) {
	if lib == nil {
		return nil, fmt.Errorf("hdl: %w: nil library", netlist.ErrInvalidArgument)
	}
	f, err := Parse(r)
	if err != nil {
		return nil, err
	}
	mod, err := topModule(f)
	if err != nil {
		return nil, err
	}
	b := &builder{
		mod:     mod,
		lib:     lib,
		nl:      netlist.New(lib),
		vectors: make(map[string]*Range),
		dirs:    make(map[string]string),
		uf:      newAliases(),
		nets:    make(map[string]*netlist.Net),
	}
	if err := b.build(); err != nil {
		return nil, fmt.Errorf("hdl: module %s: %w", mod.Name, err)
	}
	return b.nl, nil
}

// topModule returns the last module not instantiated by another one.
func topModule(f *File) (*Module, error) {
	if len(f.Modules) == 0 {
		return nil, fmt.Errorf("hdl: %w: no module found", netlist.ErrInvalidArgument)
	}
	used := make(map[string]bool)
	for _, m := range f.Modules {
		for _, it := range m.Items {
			if it.Instance != nil {
				used[unescape(it.Instance.Type)] = true
			}
		}
	}
	for i := len(f.Modules) - 1; i >= 0; i-- {
		if !used[unescape(f.Modules[i].Name)] {
			return f.Modules[i], nil
		}
	}
	return f.Modules[len(f.Modules)-1], nil
}

type builder struct {
	mod     *Module
	lib     *gatelib.Library
	nl      *netlist.Netlist
	vectors map[string]*Range
	dirs    map[string]string
	uf      *aliases
	nets    map[string]*netlist.Net
}

func (b *builder) build() error {
	name := unescape(b.mod.Name)
	b.nl.SetName(name)
	b.nl.SetDesignName(name)

	if err := b.declare(); err != nil {
		return err
	}
	for _, it := range b.mod.Items {
		if it.Assign == nil {
			continue
		}
		lhs, err := b.bits(it.Assign.LHS, 0)
		if err != nil {
			return err
		}
		rhs, err := b.bits(it.Assign.RHS, len(lhs))
		if err != nil {
			return err
		}
		if len(lhs) != len(rhs) {
			return fmt.Errorf("%w: assign of %d bits from %d bits", netlist.ErrStructural, len(lhs), len(rhs))
		}
		for i := range lhs {
			if lhs[i] == bitUndef {
				continue
			}
			if rhs[i] == bitUndef {
				b.uf.add(lhs[i])
				continue
			}
			b.uf.connect(lhs[i], rhs[i])
		}
	}

	type conn struct {
		pin gatelib.Pin
		bit string
	}
	type pending struct {
		gate  *netlist.Gate
		conns []conn
	}
	var instances []pending
	for _, it := range b.mod.Items {
		inst := it.Instance
		if inst == nil {
			continue
		}
		typ := b.lib.GateTypeByName(unescape(inst.Type))
		if typ == nil {
			return fmt.Errorf("%w: gate type %s not in library %s", netlist.ErrLookup, unescape(inst.Type), b.lib.Name)
		}
		p := pending{}
		for _, c := range inst.Conns {
			if c.Expr == nil {
				continue
			}
			pin, ok := typ.Pin(unescape(c.Pin))
			if !ok {
				return fmt.Errorf("%w: gate type %s has no pin %s", netlist.ErrLookup, typ.Name, unescape(c.Pin))
			}
			bits, err := b.bits(c.Expr, 1)
			if err != nil {
				return err
			}
			if len(bits) != 1 {
				return fmt.Errorf("%w: %s.%s connects %d bits", netlist.ErrStructural,
					unescape(inst.Name), pin.Name, len(bits))
			}
			if bits[0] == bitUndef {
				continue
			}
			b.uf.add(bits[0])
			p.conns = append(p.conns, conn{pin, bits[0]})
		}
		g, err := b.nl.CreateGate(typ, unescape(inst.Name))
		if err != nil {
			return err
		}
		if err := setParams(g, inst.Params); err != nil {
			return err
		}
		p.gate = g
		instances = append(instances, p)
	}

	if err := b.createNets(); err != nil {
		return err
	}

	for _, p := range instances {
		for _, c := range p.conns {
			n := b.nets[b.uf.find(c.bit)]
			var err error
			switch {
			case c.pin.Direction.IsInput():
				_, err = n.AddDestination(p.gate, c.pin.Name)
			case n.IsGndNet() || n.IsVccNet():
				err = fmt.Errorf("%w: constant drives output %s.%s", netlist.ErrStructural,
					p.gate.Name(), c.pin.Name)
			default:
				_, err = n.AddSource(p.gate, c.pin.Name)
			}
			if err != nil {
				return err
			}
		}
		t := p.gate.Type()
		switch {
		case t.HasProperty(gatelib.Ground) && !p.gate.IsGndGate():
			if err := b.nl.MarkGndGate(p.gate); err != nil {
				return err
			}
		case t.HasProperty(gatelib.Power) && !p.gate.IsVccGate():
			if err := b.nl.MarkVccGate(p.gate); err != nil {
				return err
			}
		}
	}
	return nil
}

// declare records vector ranges and port directions and registers every
// port bit.
func (b *builder) declare() error {
	var ports []string
	record := func(kind string, rng *Range, names ...string) {
		for _, raw := range names {
			name := unescape(raw)
			if rng != nil {
				b.vectors[name] = rng
			}
			switch kind {
			case "input", "output", "inout":
				if _, seen := b.dirs[name]; !seen {
					ports = append(ports, name)
				}
				b.dirs[name] = kind
			case "supply0":
				b.uf.connect(name, bitConst0)
			case "supply1":
				b.uf.connect(name, bitConst1)
			}
		}
	}
	// ANSI headers carry a direction and range over to following names
	var dir string
	var rng *Range
	for _, p := range b.mod.Ports {
		if p.Dir != "" {
			dir, rng = p.Dir, p.Range
		} else if p.Range != nil {
			rng = p.Range
		}
		if dir != "" {
			record(dir, rng, p.Name)
		}
	}
	for _, it := range b.mod.Items {
		if d := it.Decl; d != nil {
			record(d.Kind, d.Range, d.Names...)
		}
	}
	for _, name := range ports {
		for _, bit := range b.signalBits(name, nil) {
			b.uf.add(bit)
		}
	}
	return nil
}

// createNets creates one net per alias set. Sets holding a constant are
// bound to a ground or power driver created after all other nets so that
// generated names cannot collide with declared ones.
func (b *builder) createNets() error {
	groups := b.uf.groups()
	type constSet struct {
		root  string
		value bool
	}
	var consts []constSet
	for _, root := range b.uf.roots() {
		members := groups[root]
		has0, has1 := contains(members, bitConst0), contains(members, bitConst1)
		if has0 && has1 {
			return fmt.Errorf("%w: %s is tied to both constants", netlist.ErrStructural, pickName(members, b.dirs))
		}
		if has0 || has1 {
			consts = append(consts, constSet{root, has1})
			continue
		}
		n, err := b.nl.CreateNet(pickName(members, b.dirs))
		if err != nil {
			return err
		}
		b.nets[root] = n
		if err := b.markPorts(n, members); err != nil {
			return err
		}
	}
	for _, c := range consts {
		members := groups[c.root]
		name := ""
		if len(members) > 1 {
			name = pickName(members, b.dirs)
		}
		n, err := b.nl.CreateConstantDriver(c.value, name)
		if err != nil {
			return err
		}
		b.nets[c.root] = n
		if err := b.markPorts(n, members); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) markPorts(n *netlist.Net, members []string) error {
	for _, bit := range members {
		switch portDir(bit, b.dirs) {
		case "input":
			if err := b.nl.MarkGlobalInputNet(n); err != nil {
				return err
			}
			n.AddInputPort(bit)
		case "output":
			if err := b.nl.MarkGlobalOutputNet(n); err != nil {
				return err
			}
			n.AddOutputPort(bit)
		case "inout":
			if err := b.nl.MarkGlobalInputNet(n); err != nil {
				return err
			}
			if err := b.nl.MarkGlobalOutputNet(n); err != nil {
				return err
			}
			n.AddInputPort(bit)
			n.AddOutputPort(bit)
		}
	}
	return nil
}

// bits expands e into bit keys, most significant first. width sizes
// unsized numbers; zero means one bit.
func (b *builder) bits(e *Expr, width int) ([]string, error) {
	switch {
	case e.Literal != nil:
		return literalBits(*e.Literal, width)
	case e.Number != nil:
		return literalBits("'d"+*e.Number, width)
	case e.String != nil:
		return nil, fmt.Errorf("%w: string %s used as a signal", netlist.ErrStructural, *e.String)
	case e.Concat != nil:
		var out []string
		for _, part := range e.Concat {
			bits, err := b.bits(part, 0)
			if err != nil {
				return nil, err
			}
			out = append(out, bits...)
		}
		return out, nil
	case e.Ref != nil:
		return b.signalBits(unescape(e.Ref.Name), e.Ref.Range), nil
	}
	return nil, fmt.Errorf("%w: empty expression", netlist.ErrStructural)
}

// signalBits expands a reference to name, optionally narrowed by sel.
func (b *builder) signalBits(name string, sel *Sel) []string {
	var msb, lsb int
	switch {
	case sel != nil && sel.LSB == nil:
		return []string{indexed(name, sel.MSB)}
	case sel != nil:
		msb, lsb = sel.MSB, *sel.LSB
	case b.vectors[name] != nil:
		msb, lsb = b.vectors[name].MSB, b.vectors[name].LSB
	default:
		return []string{name}
	}
	step := -1
	if msb < lsb {
		step = 1
	}
	var out []string
	for i := msb; ; i += step {
		out = append(out, indexed(name, i))
		if i == lsb {
			break
		}
	}
	return out
}

// literalBits expands a Verilog number such as 4'b10x1 or 'd5.
func literalBits(text string, width int) ([]string, error) {
	value, undef, size, err := parseLiteral(text)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		size = width
		if size == 0 {
			size = 1
		}
	}
	out := make([]string, size)
	for i := 0; i < size; i++ {
		bit := size - 1 - i
		switch {
		case bit < len(undef) && undef[bit]:
			out[i] = bitUndef
		case value.Bit(bit) == 1:
			out[i] = bitConst1
		default:
			out[i] = bitConst0
		}
	}
	return out, nil
}

// parseLiteral returns the value of a sized or unsized literal, the bits
// given as x or z (least significant first) and the declared size, zero
// when unsized.
func parseLiteral(text string) (value *big.Int, undef []bool, size int, err error) {
	tick := strings.IndexByte(text, '\'')
	if tick < 0 {
		return nil, nil, 0, fmt.Errorf("%w: malformed literal %q", netlist.ErrStructural, text)
	}
	if tick > 0 {
		if size, err = strconv.Atoi(text[:tick]); err != nil || size <= 0 {
			return nil, nil, 0, fmt.Errorf("%w: malformed literal %q", netlist.ErrStructural, text)
		}
	}
	rest := strings.TrimLeft(text[tick+1:], "sS")
	if rest == "" {
		return nil, nil, 0, fmt.Errorf("%w: malformed literal %q", netlist.ErrStructural, text)
	}
	base := strings.ToLower(rest[:1])
	digits := strings.ReplaceAll(rest[1:], "_", "")

	value = new(big.Int)
	if base == "d" {
		if _, ok := value.SetString(digits, 10); !ok {
			return nil, nil, 0, fmt.Errorf("%w: malformed literal %q", netlist.ErrStructural, text)
		}
		return value, nil, size, nil
	}
	per := map[string]uint{"b": 1, "o": 3, "h": 4}[base]
	if per == 0 {
		return nil, nil, 0, fmt.Errorf("%w: malformed literal %q", netlist.ErrStructural, text)
	}
	for i := 0; i < len(digits); i++ {
		d := strings.ToLower(digits[i : i+1])
		value.Lsh(value, per)
		undef = append(make([]bool, per), undef...)
		if d == "x" || d == "z" || d == "?" {
			for k := uint(0); k < per; k++ {
				undef[k] = true
			}
			continue
		}
		v, err := strconv.ParseUint(d, 16, 8)
		if err != nil || v >= 1<<per {
			return nil, nil, 0, fmt.Errorf("%w: malformed literal %q", netlist.ErrStructural, text)
		}
		value.Or(value, big.NewInt(int64(v)))
	}
	return value, undef, size, nil
}

// setParams stores instance parameters as generic gate data. Bit vectors
// are kept as hexadecimal digits.
func setParams(g *netlist.Gate, params []*Conn) error {
	for _, p := range params {
		key := unescape(p.Pin)
		switch e := p.Expr; {
		case e == nil:
		case e.String != nil:
			v, err := strconv.Unquote(*e.String)
			if err != nil {
				v = strings.Trim(*e.String, `"`)
			}
			g.SetData(GenericCategory, key, "string", v)
		case e.Number != nil:
			g.SetData(GenericCategory, key, "integer", *e.Number)
		case e.Literal != nil:
			value, undef, size, err := parseLiteral(*e.Literal)
			if err != nil {
				return err
			}
			for _, u := range undef {
				if u {
					return fmt.Errorf("%w: parameter %s of %s is undefined", netlist.ErrStructural, key, g.Name())
				}
			}
			if size == 0 {
				size = value.BitLen()
			}
			digits := (size + 3) / 4
			if digits == 0 {
				digits = 1
			}
			g.SetData(GenericCategory, key, "bit_vector", fmt.Sprintf("%0*x", digits, value))
		default:
			return fmt.Errorf("%w: unsupported value for parameter %s of %s", netlist.ErrStructural, key, g.Name())
		}
	}
	return nil
}

// pickName chooses the net name of an alias set: the first input port bit,
// then output and inout port bits, then the first plain name.
func pickName(members []string, dirs map[string]string) string {
	for _, dir := range []string{"input", "inout", "output"} {
		for _, m := range members {
			if portDir(m, dirs) == dir {
				return m
			}
		}
	}
	for _, m := range members {
		if !strings.HasPrefix(m, "$") {
			return m
		}
	}
	for _, m := range members {
		if m != bitConst0 && m != bitConst1 {
			return m
		}
	}
	return ""
}

func indexed(name string, i int) string {
	return name + "[" + strconv.Itoa(i) + "]"
}

// portDir returns the direction of the port holding bit, or "".
func portDir(bit string, dirs map[string]string) string {
	if d, ok := dirs[bit]; ok {
		return d
	}
	return dirs[baseName(bit)]
}

// baseName strips a trailing bit index.
func baseName(bit string) string {
	if strings.HasSuffix(bit, "]") {
		if i := strings.LastIndexByte(bit, '['); i > 0 {
			return bit[:i]
		}
	}
	return bit
}

func unescape(name string) string {
	return strings.TrimPrefix(name, `\`)
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
