package rebento

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrBlockNotFound  = errors.New("block not found")
	ErrKindImmutable  = errors.New("block kind cannot change")
	ErrDuplicateBlock = errors.New("duplicate block id")
	ErrInvalidBlock   = errors.New("invalid block")
)

// Draft is the editable state of a page. Block order is layout order.
type Draft struct {
	Profile Profile `json:"profile"`
	Blocks  []Block `json:"cards"`
	Theme   Theme   `json:"theme"`
}

func DefaultTheme() Theme {
	return Theme{
		BackgroundColor: "#f5f5f5",
		AccentColor:     "#3b82f6",
	}
}

func NewDraft(profile Profile) *Draft {
	return &Draft{
		Profile: profile,
		Blocks:  []Block{},
		Theme:   DefaultTheme(),
	}
}

func (d *Draft) index(id string) int {
	for i, b := range d.Blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func (d *Draft) Block(id string) (Block, bool) {
	i := d.index(id)
	if i < 0 {
		return Block{}, false
	}
	return d.Blocks[i], true
}

// AddBlock appends a block of the given kind with a fresh identifier.
func (d *Draft) AddBlock(kind BlockKind, size BlockSize) (Block, error) {
	if !kind.Valid() {
		return Block{}, fmt.Errorf("%w: unknown kind %s", ErrInvalidBlock, kind)
	}
	if size == "" {
		size = SizeMedium
	}
	if !size.Valid() {
		return Block{}, fmt.Errorf("%w: unknown size %s", ErrInvalidBlock, size)
	}

	block := Block{
		ID:   d.newID(),
		Kind: kind,
		Size: size,
	}
	if kind == KindSocial {
		block.SocialPlatform = PlatformTwitter
	}
	d.Blocks = append(d.Blocks, block)
	return block, nil
}

func (d *Draft) newID() string {
	for {
		id := uuid.NewString()
		if d.index(id) < 0 {
			return id
		}
	}
}

// UpdateBlock replaces the payload of a block. ID and position are kept.
func (d *Draft) UpdateBlock(id string, patch Block) error {
	i := d.index(id)
	if i < 0 {
		return ErrBlockNotFound
	}
	current := d.Blocks[i]
	if patch.Kind != "" && patch.Kind != current.Kind {
		return ErrKindImmutable
	}
	if patch.Size != "" && !patch.Size.Valid() {
		return fmt.Errorf("%w: unknown size %s", ErrInvalidBlock, patch.Size)
	}

	patch.ID = current.ID
	patch.Kind = current.Kind
	if patch.Size == "" {
		patch.Size = current.Size
	}
	d.Blocks[i] = patch
	return nil
}

func (d *Draft) ResizeBlock(id string, size BlockSize) error {
	if !size.Valid() {
		return fmt.Errorf("%w: unknown size %s", ErrInvalidBlock, size)
	}
	i := d.index(id)
	if i < 0 {
		return ErrBlockNotFound
	}
	d.Blocks[i].Size = size
	return nil
}

func (d *Draft) RemoveBlock(id string) error {
	i := d.index(id)
	if i < 0 {
		return ErrBlockNotFound
	}
	d.Blocks = append(d.Blocks[:i], d.Blocks[i+1:]...)
	return nil
}

// MoveBlock moves a block to position to, shifting the blocks in between.
func (d *Draft) MoveBlock(id string, to int) error {
	from := d.index(id)
	if from < 0 {
		return ErrBlockNotFound
	}
	if to < 0 {
		to = 0
	}
	if to >= len(d.Blocks) {
		to = len(d.Blocks) - 1
	}
	if from == to {
		return nil
	}

	block := d.Blocks[from]
	if from < to {
		copy(d.Blocks[from:to], d.Blocks[from+1:to+1])
	} else {
		copy(d.Blocks[to+1:from+1], d.Blocks[to:from])
	}
	d.Blocks[to] = block
	return nil
}

func (d *Draft) Validate() error {
	seen := make(map[string]struct{}, len(d.Blocks))
	for _, b := range d.Blocks {
		if b.ID == "" {
			return fmt.Errorf("%w: missing id", ErrInvalidBlock)
		}
		if _, ok := seen[b.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateBlock, b.ID)
		}
		seen[b.ID] = struct{}{}
		if !b.Kind.Valid() {
			return fmt.Errorf("%w: unknown kind %s", ErrInvalidBlock, b.Kind)
		}
		if b.Size != "" && !b.Size.Valid() {
			return fmt.Errorf("%w: unknown size %s", ErrInvalidBlock, b.Size)
		}
	}
	return nil
}
