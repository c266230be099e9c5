package align

import (
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// MaxIPAMIdx is the highest valid index into an IPAM vector; IPAM vectors
// always have MaxIPAMIdx+1 entries.
const MaxIPAMIdx = 3

// IPAM is the result-configuration admissibility vector: IPAM[col] is the
// bitwise OR of resConfTable[i][col] over every result-config position i
// that holds '1'. See ParseResultConfig.
type IPAM [MaxIPAMIdx + 1]int

// resConfTable is the fixed contribution table: row i
// gives the per-column contribution of result-config character i being '1'.
var resConfTable = [4]IPAM{
	{4, 2, 1, 8},
	{8, 1, 8, 1},
	{1, 8, 4, 2},
	{2, 4, 2, 4},
}

// resConfAliases maps named result-configuration presets to their canonical
// 4-character form.
var resConfAliases = map[string]string{
	"illumina": "0100",
	"454":      "0100",
	"solid":    "0010",
}

// CanonicalResultConfig resolves aliases ("illumina", "454", "solid") to
// their canonical 4-character string; any other input is returned as-is.
func CanonicalResultConfig(s string) string {
	if canon, ok := resConfAliases[s]; ok {
		return canon
	}
	return s
}

// SwapResultConfig exchanges result-config positions (0,2) and (1,3). The
// Driver applies this transform before parsing when SAStart<0, to account
// for subject-area inversion.
func SwapResultConfig(s string) string {
	if len(s) != 4 {
		return s
	}
	b := []byte(s)
	b[0], b[2] = b[2], b[0]
	b[1], b[3] = b[3], b[1]
	return string(b)
}

// ParseResultConfig translates a 4-character {'0','1'} string (or one of
// the aliases recognized by CanonicalResultConfig) into an IPAM vector.
// An invalid string is logged and the all-zero vector is returned.
func ParseResultConfig(s string) (IPAM, error) {
	canon := CanonicalResultConfig(s)
	var ipam IPAM
	if len(canon) != 4 {
		log.Error.Printf("resconf: invalid result-configuration string %q: must be 4 characters", s)
		return ipam, errors.E("wrong strand configuration", s)
	}
	for i := 0; i < 4; i++ {
		switch canon[i] {
		case '0':
		case '1':
			for col := 0; col <= MaxIPAMIdx; col++ {
				ipam[col] |= resConfTable[i][col]
			}
		default:
			log.Error.Printf("resconf: invalid result-configuration string %q: character %d is %q, want '0' or '1'", s, i, canon[i])
			return IPAM{}, errors.E("wrong strand configuration", s)
		}
	}
	if !ipam.anyNonzero() {
		log.Error.Printf("resconf: result-configuration string %q admits no strand combination", s)
		return IPAM{}, errors.E("wrong strand configuration", s)
	}
	return ipam, nil
}

func (v IPAM) anyNonzero() bool {
	for _, x := range v {
		if x != 0 {
			return true
		}
	}
	return false
}

// ResolveResultConfig applies the subject-area inversion transform (when
// saStart<0) and parses the result, returning both the canonical string
// stored in the BatchSeed and its parsed IPAM vector.
func ResolveResultConfig(resConf string, saStart int) (canon string, ipam IPAM, err error) {
	canon = CanonicalResultConfig(resConf)
	if saStart < 0 {
		canon = SwapResultConfig(canon)
	}
	ipam, err = ParseResultConfig(canon)
	return
}
