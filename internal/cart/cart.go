// Package cart aggregates a customer's selections before submission.
package cart

import (
	"sort"
	"strings"

	"github.com/vasiliy-maslov/quickorder/internal/model"
)

// InstructionPolicy decides what happens to the free-text instruction when
// an addition merges into an existing line.
type InstructionPolicy int

const (
	// JoinInstructions keeps one line and appends each new distinct
	// instruction to it, separated by "; ".
	JoinInstructions InstructionPolicy = iota
	// KeepFirstInstruction keeps one line and ignores later instructions.
	KeepFirstInstruction
	// SeparateByInstruction makes the instruction part of the merge key, so
	// different instructions produce different lines.
	SeparateByInstruction
)

// Line is one cart row. Key identifies it for SetQuantity and Remove.
type Line struct {
	Key  string
	Item model.OrderItem
}

// Cart is client-local and not safe for concurrent use.
type Cart struct {
	policy InstructionPolicy
	lines  []Line
}

type Option func(*Cart)

func WithInstructionPolicy(p InstructionPolicy) Option {
	return func(c *Cart) { c.policy = p }
}

func New(opts ...Option) *Cart {
	c := &Cart{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key builds the merge identity: the product id and the sorted option
// names. The instruction is part of it only under SeparateByInstruction.
func (c *Cart) Key(item model.OrderItem) string {
	names := make([]string, 0, len(item.Options))
	for _, o := range item.Options {
		names = append(names, o.Name)
	}
	sort.Strings(names)

	key := item.ProductID + "-" + strings.Join(names, ",")
	if c.policy == SeparateByInstruction {
		key += "#" + strings.TrimSpace(item.Instruction)
	}
	return key
}

// Add merges item into the line with the same key or appends a new line.
// A quantity below 1 counts as 1. It returns the line key.
func (c *Cart) Add(item model.OrderItem) string {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	item.Instruction = strings.TrimSpace(item.Instruction)
	key := c.Key(item)

	for i := range c.lines {
		if c.lines[i].Key != key {
			continue
		}
		line := &c.lines[i].Item
		line.Quantity += item.Quantity
		if c.policy == JoinInstructions {
			line.Instruction = joinInstruction(line.Instruction, item.Instruction)
		}
		return key
	}

	item.Options = append([]model.Option(nil), item.Options...)
	c.lines = append(c.lines, Line{Key: key, Item: item})
	return key
}

func joinInstruction(current, next string) string {
	if next == "" {
		return current
	}
	if current == "" {
		return next
	}
	for _, part := range strings.Split(current, "; ") {
		if part == next {
			return current
		}
	}
	return current + "; " + next
}

// SetQuantity sets a line's quantity. Zero or below removes the line.
// It reports whether the key exists.
func (c *Cart) SetQuantity(key string, quantity int) bool {
	for i := range c.lines {
		if c.lines[i].Key != key {
			continue
		}
		if quantity <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		} else {
			c.lines[i].Item.Quantity = quantity
		}
		return true
	}
	return false
}

func (c *Cart) Remove(key string) bool {
	return c.SetQuantity(key, 0)
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the cart rows in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	for i, l := range c.lines {
		l.Item.Options = append([]model.Option(nil), l.Item.Options...)
		out[i] = l
	}
	return out
}

// Items returns the rows as order items ready for submission.
func (c *Cart) Items() []model.OrderItem {
	out := make([]model.OrderItem, 0, len(c.lines))
	for _, l := range c.Lines() {
		out = append(out, l.Item)
	}
	return out
}

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Item.Quantity
	}
	return n
}

// Total uses the same arithmetic as the server, so a submitted cart's
// total always matches the stored order.
func (c *Cart) Total() int64 {
	return model.ItemsTotal(c.Items())
}

func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}
