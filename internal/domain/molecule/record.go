package molecule

// Record is one validated row of the descriptor table.
type Record struct {
	SMILES  string  `json:"smiles" msgpack:"smiles"`
	Name    string  `json:"name,omitempty" msgpack:"name,omitempty"`
	LogP    float64 `json:"logp" msgpack:"logp"`
	SAScore float64 `json:"sa_score" msgpack:"sa_score"`
}

// Table is the ordered descriptor table of one upload.  Row positions are
// the point indices of the plot built from it.
type Table []Record

// At returns the record at index i.
func (t Table) At(i int) (Record, bool) {
	if i < 0 || i >= len(t) {
		return Record{}, false
	}
	return t[i], true
}

// SMILES returns the identifiers in table order.
func (t Table) SMILES() []string {
	out := make([]string, len(t))
	for i, r := range t {
		out[i] = r.SMILES
	}
	return out
}
