package molecule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParseError reports why a SMILES string was rejected.
type ParseError struct {
	SMILES string
	Pos    int // byte offset of the offending token, -1 when not positional
	Reason string
}

func (e *ParseError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("smiles %q: %s at position %d", e.SMILES, e.Reason, e.Pos)
	}
	return fmt.Sprintf("smiles %q: %s", e.SMILES, e.Reason)
}

// Parse reads one SMILES string and returns the validated molecule.  Text
// after the first space or tab is kept as the molecule name.  The returned
// molecule has implicit hydrogens assigned, a Kekulé bond order on every
// bond and aromaticity perceived from its rings.
func Parse(input string) (*Molecule, error) {
	smiles, name := SplitName(input)
	if smiles == "" {
		return nil, &ParseError{SMILES: input, Pos: -1, Reason: "empty input"}
	}

	p := &parser{
		src:   smiles,
		mol:   &Molecule{SMILES: smiles, Name: name},
		prev:  -1,
		rings: make(map[int]ringOpen),
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	if err := finalize(p.mol); err != nil {
		return nil, err
	}
	return p.mol, nil
}

// SplitName separates the SMILES token of a line from its trailing name.
func SplitName(line string) (smiles, name string) {
	line = strings.TrimSpace(line)
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		return line[:i], strings.TrimSpace(line[i+1:])
	}
	return line, ""
}

type ringOpen struct {
	atom int
	bond byte
	pos  int
}

type parser struct {
	src      string
	pos      int
	mol      *Molecule
	prev     int
	bond     byte
	bondPos  int
	branches []int
	rings    map[int]ringOpen
}

func (p *parser) fail(pos int, format string, args ...interface{}) error {
	return &ParseError{SMILES: p.src, Pos: pos, Reason: fmt.Sprintf(format, args...)}
}

func (p *parser) parse() error {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '(':
			if p.prev < 0 {
				return p.fail(p.pos, "branch without a preceding atom")
			}
			if p.bond != 0 {
				return p.fail(p.bondPos, "bond symbol before branch")
			}
			p.branches = append(p.branches, p.prev)
			p.pos++
			if p.pos < len(p.src) && p.src[p.pos] == ')' {
				return p.fail(p.pos-1, "empty branch")
			}
		case c == ')':
			if len(p.branches) == 0 {
				return p.fail(p.pos, "unbalanced ')'")
			}
			if p.bond != 0 {
				return p.fail(p.bondPos, "bond without a following atom")
			}
			p.prev = p.branches[len(p.branches)-1]
			p.branches = p.branches[:len(p.branches)-1]
			p.pos++
		case c == '.':
			if p.prev < 0 || p.bond != 0 {
				return p.fail(p.pos, "misplaced '.'")
			}
			p.prev = -1
			p.pos++
		case strings.IndexByte(`-=#$:/\`, c) >= 0:
			if p.prev < 0 {
				return p.fail(p.pos, "bond without a preceding atom")
			}
			if p.bond != 0 {
				return p.fail(p.pos, "consecutive bond symbols")
			}
			p.bond, p.bondPos = c, p.pos
			p.pos++
		case c == '%' || isDigit(c):
			if err := p.ringClosure(); err != nil {
				return err
			}
		case c == '[':
			if err := p.bracketAtom(); err != nil {
				return err
			}
		default:
			if err := p.organicAtom(); err != nil {
				return err
			}
		}
	}

	if p.bond != 0 {
		return p.fail(p.bondPos, "bond without a following atom")
	}
	if len(p.branches) > 0 {
		return p.fail(-1, "unbalanced '('")
	}
	if len(p.rings) > 0 {
		nums := make([]int, 0, len(p.rings))
		for n := range p.rings {
			nums = append(nums, n)
		}
		sort.Ints(nums)
		return p.fail(p.rings[nums[0]].pos, "unclosed ring %d", nums[0])
	}
	if len(p.mol.Atoms) == 0 {
		return p.fail(-1, "no atoms")
	}
	return nil
}

func (p *parser) place(a Atom) error {
	idx := p.mol.addAtom(a)
	if p.prev >= 0 {
		if err := p.connect(p.prev, idx, p.bond, p.bondPos); err != nil {
			return err
		}
	}
	p.bond = 0
	p.prev = idx
	return nil
}

func (p *parser) connect(a, b int, sym byte, pos int) error {
	if a == b {
		return p.fail(pos, "atom bonded to itself")
	}
	if p.mol.BondBetween(a, b) >= 0 {
		return p.fail(pos, "duplicate bond between atoms %d and %d", a+1, b+1)
	}
	bond := Bond{From: a, To: b, Order: BondSingle}
	switch sym {
	case 0:
		bond.Aromatic = p.mol.Atoms[a].Aromatic && p.mol.Atoms[b].Aromatic
	case '/', '\\':
		bond.Stereo = sym
	case '=':
		bond.Order = BondDouble
	case '#':
		bond.Order = BondTriple
	case '$':
		bond.Order = BondQuadruple
	case ':':
		bond.Aromatic = true
	}
	p.mol.addBond(bond)
	return nil
}

func (p *parser) organicAtom() error {
	start := p.pos
	c := p.src[start]
	sym := string(c)
	if start+1 < len(p.src) {
		if two := p.src[start : start+2]; two == "Cl" || two == "Br" {
			sym = two
		}
	}

	var a Atom
	switch {
	case sym == "*":
		a = Atom{Number: numWildcard, Symbol: "*"}
	case organicSubset[sym]:
		n, _ := AtomicNumber(sym)
		a = Atom{Number: n, Symbol: sym}
	default:
		n, ok := aromaticSymbols[sym]
		if !ok || len(sym) != 1 {
			return p.fail(start, "unexpected character %q", c)
		}
		a = Atom{Number: n, Symbol: Symbol(n), Aromatic: true}
	}
	p.pos += len(sym)
	return p.place(a)
}

func (p *parser) bracketAtom() error {
	start := p.pos
	end := strings.IndexByte(p.src[start:], ']')
	if end < 0 {
		return p.fail(start, "unterminated bracket atom")
	}
	a, err := parseBracket(p.src[start+1 : start+end])
	if err != nil {
		return p.fail(start, "%v", err)
	}
	p.pos = start + end + 1
	return p.place(a)
}

func parseBracket(body string) (Atom, error) {
	a := Atom{Bracket: true}
	i := 0

	for i < len(body) && isDigit(body[i]) {
		a.Isotope = a.Isotope*10 + int(body[i]-'0')
		i++
		if a.Isotope > 999 {
			return a, fmt.Errorf("isotope too large")
		}
	}

	if i >= len(body) {
		return a, fmt.Errorf("missing element symbol")
	}
	switch c := body[i]; {
	case c == '*':
		a.Number, a.Symbol = numWildcard, "*"
		i++
	case isLower(c):
		if i+1 < len(body) {
			if n, ok := aromaticSymbols[body[i:i+2]]; ok {
				a.Number, a.Symbol, a.Aromatic = n, Symbol(n), true
				i += 2
				break
			}
		}
		n, ok := aromaticSymbols[body[i:i+1]]
		if !ok {
			return a, fmt.Errorf("unknown aromatic symbol %q", body[i:i+1])
		}
		a.Number, a.Symbol, a.Aromatic = n, Symbol(n), true
		i++
	case isUpper(c):
		if i+1 < len(body) && isLower(body[i+1]) {
			if n, ok := AtomicNumber(body[i : i+2]); ok {
				a.Number, a.Symbol = n, body[i:i+2]
				i += 2
				break
			}
		}
		n, ok := AtomicNumber(body[i : i+1])
		if !ok {
			return a, fmt.Errorf("unknown element %q", body[i:i+1])
		}
		a.Number, a.Symbol = n, body[i:i+1]
		i++
	default:
		return a, fmt.Errorf("unexpected %q in bracket atom", c)
	}

	if i < len(body) && body[i] == '@' {
		i++
		switch {
		case i < len(body) && body[i] == '@':
			a.Chirality = "@@"
			i++
		case i+1 < len(body) && isUpper(body[i]) && isUpper(body[i+1]):
			switch body[i : i+2] {
			case "TH", "AL", "SP", "TB", "OH":
			default:
				return a, fmt.Errorf("unknown chirality class %q", body[i:i+2])
			}
			j := i + 2
			for j < len(body) && isDigit(body[j]) {
				j++
			}
			if j == i+2 {
				return a, fmt.Errorf("chirality class %q needs a number", body[i:i+2])
			}
			a.Chirality = "@" + body[i:j]
			i = j
		default:
			a.Chirality = "@"
		}
	}

	if i < len(body) && body[i] == 'H' {
		i++
		a.HCount = 1
		if i < len(body) && isDigit(body[i]) {
			a.HCount = int(body[i] - '0')
			i++
		}
	}

	if i < len(body) && (body[i] == '+' || body[i] == '-') {
		sign := 1
		if body[i] == '-' {
			sign = -1
		}
		ch := body[i]
		i++
		mag := 1
		if i < len(body) && isDigit(body[i]) {
			j := i
			for j < len(body) && isDigit(body[j]) {
				j++
			}
			mag, _ = strconv.Atoi(body[i:j])
			i = j
		} else {
			for i < len(body) && body[i] == ch {
				mag++
				i++
			}
		}
		if mag > 15 {
			return a, fmt.Errorf("charge %d out of range", sign*mag)
		}
		a.Charge = sign * mag
	}

	if i < len(body) && body[i] == ':' {
		i++
		j := i
		for j < len(body) && isDigit(body[j]) {
			j++
		}
		if j == i {
			return a, fmt.Errorf("atom class needs a number")
		}
		a.Class, _ = strconv.Atoi(body[i:j])
		i = j
	}

	if i != len(body) {
		return a, fmt.Errorf("unexpected %q in bracket atom", body[i])
	}
	return a, nil
}

func (p *parser) ringClosure() error {
	start := p.pos
	if p.prev < 0 {
		return p.fail(start, "ring closure without a preceding atom")
	}

	var num int
	if p.src[p.pos] == '%' {
		p.pos++
		switch {
		case p.pos < len(p.src) && p.src[p.pos] == '(':
			end := strings.IndexByte(p.src[p.pos:], ')')
			if end < 0 {
				return p.fail(start, "unterminated ring number")
			}
			n, err := strconv.Atoi(p.src[p.pos+1 : p.pos+end])
			if err != nil || n < 0 {
				return p.fail(start, "invalid ring number")
			}
			num = n
			p.pos += end + 1
		case p.pos+1 < len(p.src) && isDigit(p.src[p.pos]) && isDigit(p.src[p.pos+1]):
			num = int(p.src[p.pos]-'0')*10 + int(p.src[p.pos+1]-'0')
			p.pos += 2
		default:
			return p.fail(start, "ring number after '%%' needs two digits")
		}
	} else {
		num = int(p.src[p.pos] - '0')
		p.pos++
	}

	sym, symPos := p.bond, p.bondPos
	p.bond = 0

	open, ok := p.rings[num]
	if !ok {
		p.rings[num] = ringOpen{atom: p.prev, bond: sym, pos: start}
		return nil
	}
	delete(p.rings, num)
	if open.atom == p.prev {
		return p.fail(start, "ring closure %d bonds an atom to itself", num)
	}
	switch {
	case sym == 0:
		sym = open.bond
	case open.bond != 0 && !compatibleRingBonds(open.bond, sym):
		return p.fail(symPos, "conflicting bond symbols for ring closure %d", num)
	}
	return p.connect(open.atom, p.prev, sym, start)
}

func compatibleRingBonds(a, b byte) bool {
	if a == b {
		return true
	}
	dir := func(c byte) bool { return c == '/' || c == '\\' }
	return dir(a) && dir(b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
