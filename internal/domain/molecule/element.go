package molecule

import "strings"

// symbols lists element symbols by atomic number; index 0 is the wildcard.
var symbols = strings.Fields(`*
H He Li Be B C N O F Ne Na Mg Al Si P S Cl Ar K Ca Sc Ti V Cr Mn Fe Co Ni Cu Zn
Ga Ge As Se Br Kr Rb Sr Y Zr Nb Mo Tc Ru Rh Pd Ag Cd In Sn Sb Te I Xe Cs Ba La
Ce Pr Nd Pm Sm Eu Gd Tb Dy Ho Er Tm Yb Lu Hf Ta W Re Os Ir Pt Au Hg Tl Pb Bi Po
At Rn Fr Ra Ac Th Pa U Np Pu Am Cm Bk Cf Es Fm Md No Lr Rf Db Sg Bh Hs Mt Ds Rg
Cn Nh Fl Mc Lv Ts Og`)

var numberBySymbol = func() map[string]int {
	m := make(map[string]int, len(symbols))
	for i, s := range symbols {
		m[s] = i
	}
	return m
}()

// Atomic numbers used by the typing rules.
const (
	numWildcard = 0
	numH        = 1
	numLi       = 3
	numB        = 5
	numC        = 6
	numN        = 7
	numO        = 8
	numF        = 9
	numNa       = 11
	numAl       = 13
	numSi       = 14
	numP        = 15
	numS        = 16
	numCl       = 17
	numK        = 19
	numGe       = 32
	numAs       = 33
	numSe       = 34
	numBr       = 35
	numRb       = 37
	numTe       = 52
	numI        = 53
	numCs       = 55
)

// Symbol returns the element symbol for an atomic number, or "" when the
// number is outside the periodic table.
func Symbol(number int) string {
	if number < 0 || number >= len(symbols) {
		return ""
	}
	return symbols[number]
}

// AtomicNumber returns the atomic number for a symbol and whether it is known.
func AtomicNumber(symbol string) (int, bool) {
	n, ok := numberBySymbol[symbol]
	return n, ok
}

// valences holds the allowed valences of neutral atoms.  Elements absent
// from the table are not valence checked.
var valences = map[int][]int{
	numH:  {1},
	numB:  {3},
	numC:  {4},
	numN:  {3},
	numO:  {2},
	numF:  {1},
	numAl: {3},
	numSi: {4},
	numP:  {3, 5, 7},
	numS:  {2, 4, 6},
	numCl: {1},
	numGe: {4},
	numAs: {3, 5},
	numSe: {2, 4, 6},
	numBr: {1},
	numTe: {2, 4, 6},
	numI:  {1, 3, 5},
}

// allowedValences returns the valences permitted for an element carrying the
// given formal charge.  Charged atoms are treated as their isoelectronic
// neighbour: N+ behaves like C, O- like F, B- like C.
func allowedValences(number, charge int) []int {
	base, ok := valences[number]
	if !ok {
		return nil
	}
	if charge == 0 {
		return base
	}

	var shift int
	switch number {
	case numB, numAl:
		shift = -charge
	case numC, numSi, numGe, numH:
		shift = -abs(charge)
	default:
		shift = charge
	}

	out := make([]int, 0, len(base))
	for _, v := range base {
		if v+shift >= 0 {
			out = append(out, v+shift)
		}
	}
	return out
}

// organicSubset lists the atoms that may be written without brackets.
var organicSubset = map[string]bool{
	"B": true, "C": true, "N": true, "O": true, "P": true, "S": true,
	"F": true, "Cl": true, "Br": true, "I": true,
}

// aromaticSymbols maps lowercase aromatic symbols to atomic numbers.  Only
// the single-letter forms are legal outside brackets.
var aromaticSymbols = map[string]int{
	"b": numB, "c": numC, "n": numN, "o": numO, "p": numP, "s": numS,
	"se": numSe, "as": numAs, "te": numTe,
}

// isHalogen reports F, Cl, Br, I.
func isHalogen(number int) bool {
	switch number {
	case numF, numCl, numBr, numI:
		return true
	}
	return false
}

func isAlkali(number int) bool {
	switch number {
	case numLi, numNa, numK, numRb, numCs:
		return true
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
