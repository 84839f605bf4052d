package transferhook

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/hooklabs/hook-server/pkg/solana"
)

// node is one position in the combined account list during resolution: an
// instruction account or a declared extra account. Nodes only live for the
// duration of a single resolution pass.
type node struct {
	// Final position in the combined account list.
	index int

	// Positions whose resolved keys this node's derivation needs.
	dependencies []int

	// Instruction accounts carry their meta directly.
	meta *solana.AccountMeta

	// Declared extra accounts carry their packed record.
	extra *ExtraAccountMeta
}

func (n *node) dependsOn(index int) bool {
	for _, dep := range n.dependencies {
		if dep == index {
			return true
		}
	}
	return false
}

// resolutionStack orders nodes so that no node appears before a node whose
// resolved key it needs. Walking front to back is a valid derivation order.
type resolutionStack struct {
	nodes []*node
}

func (s *resolutionStack) position(index int) int {
	for i, n := range s.nodes {
		if n.index == index {
			return i
		}
	}
	return -1
}

// insert places the node using a forward scan rather than a generic stable
// topological sort: a dependency free node always goes to the front, and a
// node with dependencies goes immediately before the first node that depends
// on it, or at the end if nothing does. Seed lists may reference positions
// not yet inserted; those later insertions land before their dependents.
//
// Placed nodes never reorder, so a dependency of the new node already sitting
// at or after the insertion point can never be satisfied. That is the
// circular reference case and fails the whole resolution.
func (s *resolutionStack) insert(n *node) error {
	if n.dependsOn(n.index) {
		return errors.Wrapf(ErrCircularReference, "account at index %d references itself", n.index)
	}

	if len(s.nodes) == 0 || len(n.dependencies) == 0 {
		s.nodes = append([]*node{n}, s.nodes...)
		return nil
	}

	for i, existing := range s.nodes {
		if !existing.dependsOn(n.index) {
			continue
		}

		for _, dep := range n.dependencies {
			if pos := s.position(dep); pos >= i {
				return errors.Wrapf(ErrCircularReference, "accounts at indices %d and %d depend on each other", n.index, existing.index)
			}
		}

		rest := append([]*node{n}, s.nodes[i:]...)
		s.nodes = append(s.nodes[:i], rest...)
		return nil
	}

	s.nodes = append(s.nodes, n)
	return nil
}

// AddExtraAccountMetas decodes the required account records persisted in the
// hook program's validation account and appends the resolved account metas to
// the instruction.
//
// The instruction is only mutated on success; any failure leaves it untouched
// and no partially resolved account list is ever produced.
func AddExtraAccountMetas(i *solana.Instruction, program ed25519.PublicKey, validationData []byte) error {
	var list ExtraAccountMetaList
	if err := list.Unmarshal(validationData); err != nil {
		return err
	}

	resolved, err := resolveAccountMetas(i.Accounts, i.Data, program, list.Metas)
	if err != nil {
		return err
	}

	i.Accounts = resolved
	return nil
}

// resolveAccountMetas produces the combined account list: the instruction
// accounts in their original positions, followed by one resolved meta per
// declared extra account.
func resolveAccountMetas(accounts []solana.AccountMeta, instructionData []byte, program ed25519.PublicKey, extras []ExtraAccountMeta) ([]solana.AccountMeta, error) {
	stack := &resolutionStack{
		nodes: make([]*node, 0, len(accounts)+len(extras)),
	}

	for i := range accounts {
		if err := stack.insert(&node{index: i, meta: &accounts[i]}); err != nil {
			return nil, err
		}
	}

	for i := range extras {
		n := &node{
			index: len(accounts) + i,
			extra: &extras[i],
		}

		if extras[i].IsPda() {
			seeds, err := extras[i].Seeds()
			if err != nil {
				return nil, err
			}
			n.dependencies = seedDependencies(seeds)
		}

		if err := stack.insert(n); err != nil {
			return nil, err
		}
	}

	resolved := make(map[int]solana.AccountMeta, len(stack.nodes))
	for _, n := range stack.nodes {
		meta, err := deriveNode(n, instructionData, program, resolved, accounts)
		if err != nil {
			return nil, err
		}
		resolved[n.index] = meta
	}

	out := make([]solana.AccountMeta, len(accounts)+len(extras))
	for i := range out {
		out[i] = resolved[i]
	}
	return out, nil
}

// deriveNode produces the node's account meta. Extra accounts always pass
// through privilege de-escalation against the original instruction accounts.
func deriveNode(n *node, instructionData []byte, program ed25519.PublicKey, resolved map[int]solana.AccountMeta, original []solana.AccountMeta) (solana.AccountMeta, error) {
	if n.meta != nil {
		return *n.meta, nil
	}

	meta := solana.AccountMeta{
		IsSigner:   n.extra.IsSigner,
		IsWritable: n.extra.IsWritable,
	}

	if !n.extra.IsPda() {
		meta.PublicKey = n.extra.Address()
		return deEscalate(meta, original), nil
	}

	seeds, err := n.extra.Seeds()
	if err != nil {
		return meta, err
	}

	seedBytes := make([][]byte, len(seeds))
	for i, seed := range seeds {
		if seedBytes[i], err = seed.Resolve(instructionData, resolved); err != nil {
			return meta, err
		}
	}

	if meta.PublicKey, err = solana.FindProgramAddress(program, seedBytes...); err != nil {
		return meta, errors.Wrap(err, "failed to derive program address")
	}

	return deEscalate(meta, original), nil
}

// deEscalate caps the claimed signer/writable bits at the weakest grant for
// the same key across the original instruction accounts. A key the caller
// never provided gets both bits cleared. A declared record can therefore
// never grant an account more authority than the instruction already did;
// the correction is silent rather than an error.
func deEscalate(meta solana.AccountMeta, original []solana.AccountMeta) solana.AccountMeta {
	var found bool
	signer, writable := true, true
	for _, o := range original {
		if !bytes.Equal(o.PublicKey, meta.PublicKey) {
			continue
		}
		found = true
		signer = signer && o.IsSigner
		writable = writable && o.IsWritable
	}

	if !found {
		signer, writable = false, false
	}

	meta.IsSigner = meta.IsSigner && signer
	meta.IsWritable = meta.IsWritable && writable
	return meta
}
