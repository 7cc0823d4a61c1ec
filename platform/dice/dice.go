package dice

import "github.com/DedS3t/monopoly-engine/app/models"

const Faces = 6

// Source is the randomness a roll consumes. *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// Dice rolls two six-sided dice. A Dice is not safe for concurrent use;
// give each game its own.
type Dice struct {
	src Source
}

func New(src Source) *Dice {
	return &Dice{src: src}
}

func (d *Dice) face() int {
	return d.src.Intn(Faces) + 1
}

func (d *Dice) Roll() models.DiceRoll {
	return newRoll(d.face(), d.face())
}

// RollDouble always returns a pair.
func (d *Dice) RollDouble() models.DiceRoll {
	v := d.face()
	return newRoll(v, v)
}

func newRoll(d1, d2 int) models.DiceRoll {
	return models.DiceRoll{D1: d1, D2: d2, Total: d1 + d2, IsDouble: d1 == d2}
}

// IsValid checks the faces are in range and the derived fields agree with them.
func IsValid(r models.DiceRoll) bool {
	return r.D1 >= 1 && r.D1 <= Faces &&
		r.D2 >= 1 && r.D2 <= Faces &&
		r.Total == r.D1+r.D2 &&
		r.IsDouble == (r.D1 == r.D2)
}

// Fixed is a Source that replays die faces (1-6) in order and then wraps.
// Tests and replays use it to script rolls.
type Fixed struct {
	faces []int
	next  int
}

func NewFixed(faces ...int) *Fixed {
	return &Fixed{faces: faces}
}

func (f *Fixed) Intn(n int) int {
	if len(f.faces) == 0 {
		return 0
	}
	v := f.faces[f.next%len(f.faces)]
	f.next++
	return (v - 1) % n
}
