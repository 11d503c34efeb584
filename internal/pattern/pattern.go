package pattern

import (
	"errors"
	"math/big"
)

type SlotKind int

const (
	Fixed SlotKind = iota
	Digit
	Letter
)

const (
	digitAlphabet  = "0123456789"
	letterAlphabet = "abcdefghijklmnopqrstuvwxyz"
)

// Alphabet returns the character set a variable slot draws from, or "" for
// fixed slots.
func (k SlotKind) Alphabet() string {
	switch k {
	case Digit:
		return digitAlphabet
	case Letter:
		return letterAlphabet
	default:
		return ""
	}
}

// Slot is one character position in a template. A slot is variable iff the
// template character is a decimal digit or a lowercase ASCII letter.
type Slot struct {
	Index int
	Kind  SlotKind
	Char  byte // the template's character at this position
}

// Pattern is the parsed, immutable slot model of one template string.
type Pattern struct {
	template string
	slots    []Slot
	variable []int // indices into slots, template order
}

var ErrEmptyTemplate = errors.New("pattern template is empty")

func Parse(template string) (*Pattern, error) {
	if template == "" {
		return nil, ErrEmptyTemplate
	}

	p := &Pattern{template: template}
	for i := 0; i < len(template); i++ {
		c := template[i]
		kind := Fixed
		switch {
		case c >= '0' && c <= '9':
			kind = Digit
		case c >= 'a' && c <= 'z':
			kind = Letter
		}
		p.slots = append(p.slots, Slot{Index: i, Kind: kind, Char: c})
		if kind != Fixed {
			p.variable = append(p.variable, i)
		}
	}
	return p, nil
}

func (p *Pattern) Template() string { return p.template }

func (p *Pattern) Len() int { return len(p.slots) }

func (p *Pattern) Slots() []Slot { return p.slots }

// VariableSlots returns the template positions of the variable slots, in
// template order. The returned slice must not be modified.
func (p *Pattern) VariableSlots() []int { return p.variable }

func (p *Pattern) VariableCount() int { return len(p.variable) }

// Combinations is the exact size of the candidate space: the product of the
// alphabet sizes over all variable slots. A 32-slot template overflows int64,
// so the count is a big.Int. A template with no variable slots has exactly
// one combination (itself).
func (p *Pattern) Combinations() *big.Int {
	total := big.NewInt(1)
	for _, i := range p.variable {
		total.Mul(total, big.NewInt(int64(len(p.slots[i].Kind.Alphabet()))))
	}
	return total
}
