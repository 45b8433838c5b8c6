package ledger

import (
	"sort"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
)

type node struct {
	code     string
	name     string
	level    int
	header   bool
	root     string
	parent   string
	children []string
}

// tree is a disposable index over a flat chart, rebuilt per aggregation.
type tree struct {
	nodes map[string]*node
	tops  map[string][]string
}

// buildTree indexes the accounts under roots. Accounts outside roots and
// repeated codes are ignored.
func buildTree(chart []accounts.Account, roots []Root) *tree {
	wanted := make(map[string]struct{}, len(roots))
	for _, r := range roots {
		wanted[r.Prefix] = struct{}{}
	}
	t := &tree{nodes: make(map[string]*node, len(chart)), tops: make(map[string][]string)}
	known := make(map[string]struct{}, len(chart))
	for _, acc := range chart {
		root := accounts.Root(acc.Code)
		if _, ok := wanted[root]; !ok {
			continue
		}
		if _, dup := known[acc.Code]; dup {
			continue
		}
		known[acc.Code] = struct{}{}
		t.nodes[acc.Code] = &node{
			code:   acc.Code,
			name:   acc.Name,
			level:  acc.Level(),
			header: acc.IsHeader(),
			root:   root,
		}
	}
	for code, n := range t.nodes {
		parent, ok := accounts.ParentOf(code, known)
		if !ok {
			t.tops[n.root] = append(t.tops[n.root], code)
			continue
		}
		n.parent = parent
		p := t.nodes[parent]
		p.children = append(p.children, code)
	}
	for _, n := range t.nodes {
		sortCodes(n.children)
	}
	for _, codes := range t.tops {
		sortCodes(codes)
	}
	return t
}

func sortCodes(codes []string) {
	sort.Slice(codes, func(i, j int) bool {
		return accounts.CompareHierarchical(codes[i], codes[j]) < 0
	})
}
