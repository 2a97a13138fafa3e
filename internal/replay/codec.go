package replay

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/vovakirdan/inkgrid/internal/engine"
)

// Encode serialises the replay in the version 1 layout.
func (r *Replay) Encode() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var w writer
	w.u8(Version)
	w.u16(uint16(r.Stage))
	w.u8(uint8(len(r.Players)))
	for _, p := range r.Players {
		w.u8(p.Color.R)
		w.u8(p.Color.G)
		w.u8(p.Color.B)
		w.u8(uint8(len(p.Name)))
		w.buf.WriteString(p.Name)
		w.u8(uint8(len(p.Deck)))
		for _, n := range p.Deck {
			w.u16(uint16(n))
		}
	}
	w.u8(uint8(len(r.Turns)))
	for _, turn := range r.Turns {
		for _, rec := range turn {
			w.u8(uint8(rec.HandSlot))
			w.u8(rec.flags())
			w.u8(uint8(int8(rec.X)))
			w.u8(uint8(int8(rec.Y)))
		}
	}
	return w.buf.Bytes(), nil
}

// Decode parses a replay blob.
func Decode(data []byte) (*Replay, error) {
	rd := &reader{data: data}

	version, err := rd.u8()
	if err != nil {
		return nil, err
	}
	if version != Version {
		return nil, fmt.Errorf("replay: version %d: %w", version, ErrUnsupportedVersion)
	}

	stage, err := rd.u16()
	if err != nil {
		return nil, err
	}
	count, err := rd.u8()
	if err != nil {
		return nil, err
	}
	if int(count) < MinPlayers || int(count) > engine.MaxPlayers {
		return nil, fmt.Errorf("replay: %d players: %w", count, ErrMalformed)
	}

	r := &Replay{Stage: int(stage), Players: make([]Player, count)}
	for i := range r.Players {
		p, err := rd.player()
		if err != nil {
			return nil, fmt.Errorf("replay: player %d: %w", i, err)
		}
		r.Players[i] = p
	}

	turns, err := rd.u8()
	if err != nil {
		return nil, err
	}
	if int(turns) > MaxTurns {
		return nil, fmt.Errorf("replay: %d turns: %w", turns, ErrMalformed)
	}
	r.Turns = make([][]Record, turns)
	for t := range r.Turns {
		r.Turns[t] = make([]Record, count)
		for p := range r.Turns[t] {
			rec, err := rd.record()
			if err != nil {
				return nil, fmt.Errorf("replay: turn %d player %d: %w", t, p, err)
			}
			r.Turns[t][p] = rec
		}
	}

	if rd.offset != len(data) {
		return nil, fmt.Errorf("replay: %d trailing bytes: %w", len(data)-rd.offset, ErrMalformed)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

type writer struct {
	buf bytes.Buffer
}

func (w *writer) u8(v uint8) {
	_ = w.buf.WriteByte(v)
}

func (w *writer) u16(v uint16) {
	_ = binary.Write(&w.buf, binary.BigEndian, v)
}

type reader struct {
	data   []byte
	offset int
}

func (r *reader) need(n int) error {
	if r.offset+n > len(r.data) {
		return fmt.Errorf("replay: need %d bytes at offset %d: %w", n, r.offset, ErrTruncated)
	}
	return nil
}

func (r *reader) u8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.offset]
	r.offset++
	return v, nil
}

func (r *reader) u16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.data[r.offset:])
	r.offset += 2
	return v, nil
}

func (r *reader) take(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	v := r.data[r.offset : r.offset+n]
	r.offset += n
	return v, nil
}

func (r *reader) player() (Player, error) {
	rgb, err := r.take(3)
	if err != nil {
		return Player{}, err
	}
	nameLen, err := r.u8()
	if err != nil {
		return Player{}, err
	}
	name, err := r.take(int(nameLen))
	if err != nil {
		return Player{}, err
	}
	deckLen, err := r.u8()
	if err != nil {
		return Player{}, err
	}
	if deckLen == 0 || int(deckLen) > MaxDeck {
		return Player{}, fmt.Errorf("deck of %d cards: %w", deckLen, ErrMalformed)
	}
	deck := make([]int, deckLen)
	for i := range deck {
		n, err := r.u16()
		if err != nil {
			return Player{}, err
		}
		deck[i] = int(n)
	}
	return Player{
		Name:  string(name),
		Color: Color{R: rgb[0], G: rgb[1], B: rgb[2]},
		Deck:  deck,
	}, nil
}

func (r *reader) record() (Record, error) {
	raw, err := r.take(4)
	if err != nil {
		return Record{}, err
	}
	flags := raw[1]
	if flags&^flagKnown != 0 {
		return Record{}, fmt.Errorf("unknown flags %#x: %w", flags, ErrMalformed)
	}
	return Record{
		HandSlot:      int(raw[0]),
		Rotation:      int(flags & flagRotation),
		Pass:          flags&flagPass != 0,
		Timeout:       flags&flagTimeout != 0,
		SpecialAttack: flags&flagSpecial != 0,
		X:             int(int8(raw[2])),
		Y:             int(int8(raw[3])),
	}, nil
}
