package summary

import (
	"strconv"
	"strings"
)

// NoName is the WGNAMES placeholder for vectors without a well or group.
const NoName = ":+:+:+:+"

// NoLGRIndex marks an unset LGR cell coordinate in Node.
const NoLGRIndex = -1

const regionPairBase = 1 << 15

// CombineNumbers packs a region pair into one NUMS value:
// r1 + 32768*(r2+10).
func CombineNumbers(r1, r2 int) int {
	return r1 + regionPairBase*(r2+10)
}

// SplitNumber is the inverse of CombineNumbers.
func SplitNumber(n int) (int, int) {
	return n % regionPairBase, n/regionPairBase - 10
}

// Category classifies a summary vector by the entity it describes.
type Category uint8

const (
	CategoryMiscellaneous Category = iota
	CategoryAquifer
	CategoryBlock
	CategoryConnection
	CategoryField
	CategoryGroup
	CategoryNode
	CategoryRegion
	CategorySegment
	CategoryWell
	CategoryLocal
)

func (c Category) String() string {
	switch c {
	case CategoryAquifer:
		return "Aquifer"
	case CategoryBlock:
		return "Block"
	case CategoryConnection:
		return "Connection"
	case CategoryField:
		return "Field"
	case CategoryGroup:
		return "Group"
	case CategoryNode:
		return "Node"
	case CategoryRegion:
		return "Region"
	case CategorySegment:
		return "Segment"
	case CategoryWell:
		return "Well"
	case CategoryLocal:
		return "Local"
	default:
		return "Miscellaneous"
	}
}

// segmentExceptions start with S but are not segment vectors.
var segmentExceptions = map[string]bool{"SEPARATE": true, "STEPTYPE": true, "SUMTHIN": true}

// CategoryOf derives the category from the first letter of a keyword.
func CategoryOf(keyword string) Category {
	if keyword == "" {
		return CategoryMiscellaneous
	}

	switch keyword[0] {
	case 'A':
		return CategoryAquifer
	case 'B':
		return CategoryBlock
	case 'C':
		return CategoryConnection
	case 'F':
		return CategoryField
	case 'G':
		return CategoryGroup
	case 'N':
		return CategoryNode
	case 'R':
		return CategoryRegion
	case 'S':
		if segmentExceptions[keyword] {
			return CategoryMiscellaneous
		}
		return CategorySegment
	case 'W':
		return CategoryWell
	case 'L':
		return CategoryLocal
	default:
		return CategoryMiscellaneous
	}
}

// Node is one SMSPEC entry.
type Node struct {
	Keyword string
	WGName  string
	Number  int
	Unit    string

	// LGR and LGRI/J/K locate local-grid vectors (LB*, LC*, LW*). The
	// coordinates are 1-based; nodes without an LGR carry NoLGRIndex.
	LGR              string
	LGRI, LGRJ, LGRK int

	// Index is the position of the node in the SMSPEC arrays.
	Index int
}

// Category returns the category of the node's keyword.
func (n Node) Category() Category {
	return CategoryOf(n.Keyword)
}

// KeyString renders the lookup key of a node, for example FOPT, WOPR:OP_1,
// BPR:1,2,3, RGFT:1-2 or COPR:OP_1:1,1,2. Block and connection numbers are
// global cell indices (1-based) expanded with dims. An empty result means the
// node does not describe a vector, such as a well vector whose name is the
// NoName placeholder.
func KeyString(n Node, dims [3]int) string {
	kw := n.Keyword
	if kw == "" {
		return ""
	}

	hasName := n.WGName != NoName

	switch kw[0] {
	case 'A':
		if n.Number <= 0 {
			return ""
		}
		return kw + ":" + strconv.Itoa(n.Number)
	case 'B':
		if n.Number <= 0 {
			return ""
		}
		return kw + ":" + ijkString(n.Number, dims)
	case 'C':
		if n.Number <= 0 {
			return ""
		}
		return kw + ":" + n.WGName + ":" + ijkString(n.Number, dims)
	case 'G', 'W':
		if !hasName {
			return ""
		}
		return kw + ":" + n.WGName
	case 'R':
		if n.Number <= 0 {
			return ""
		}
		if len(kw) > 1 && kw[1] == 'F' {
			r1, r2 := SplitNumber(n.Number)
			return kw + ":" + strconv.Itoa(r1) + "-" + strconv.Itoa(r2)
		}
		return kw + ":" + strconv.Itoa(n.Number)
	case 'S':
		if segmentExceptions[kw] {
			return kw
		}
		if !hasName || n.Number <= 0 {
			return ""
		}
		return kw + ":" + n.WGName + ":" + strconv.Itoa(n.Number)
	case 'L':
		return localKeyString(n, hasName)
	default:
		return kw
	}
}

func localKeyString(n Node, hasName bool) string {
	kw := n.Keyword
	if n.LGR == "" || len(kw) < 2 {
		return kw
	}

	hasCell := n.LGRI > 0 && n.LGRJ > 0 && n.LGRK > 0
	ijk := strconv.Itoa(n.LGRI) + "," + strconv.Itoa(n.LGRJ) + "," + strconv.Itoa(n.LGRK)
	switch kw[1] {
	case 'B':
		if !hasCell {
			return ""
		}
		return kw + ":" + n.LGR + ":" + ijk
	case 'C':
		if !hasName || !hasCell {
			return ""
		}
		return kw + ":" + n.LGR + ":" + n.WGName + ":" + ijk
	case 'W':
		if !hasName {
			return ""
		}
		return kw + ":" + n.LGR + ":" + n.WGName
	default:
		return kw
	}
}

// ijkString expands a 1-based global cell index into "i,j,k" (1-based).
func ijkString(global int, dims [3]int) string {
	ni, nj := max(dims[0], 1), max(dims[1], 1)
	g := global - 1
	i := 1 + g%ni
	g /= ni
	j := 1 + g%nj
	k := 1 + g/nj

	var sb strings.Builder
	sb.WriteString(strconv.Itoa(i))
	sb.WriteByte(',')
	sb.WriteString(strconv.Itoa(j))
	sb.WriteByte(',')
	sb.WriteString(strconv.Itoa(k))

	return sb.String()
}
