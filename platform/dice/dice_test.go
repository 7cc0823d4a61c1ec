package dice

import (
	"math/rand"
	"testing"

	"github.com/DedS3t/monopoly-engine/app/models"
)

func TestRollRange(t *testing.T) {
	d := New(rand.New(rand.NewSource(1)))
	seen := map[int]bool{}
	for i := 0; i < 1000; i++ {
		r := d.Roll()
		if !IsValid(r) {
			t.Fatalf("invalid roll %+v", r)
		}
		seen[r.D1] = true
	}
	for f := 1; f <= Faces; f++ {
		if !seen[f] {
			t.Errorf("face %d never rolled", f)
		}
	}
}

func TestRollDouble(t *testing.T) {
	d := New(rand.New(rand.NewSource(3)))
	for i := 0; i < 100; i++ {
		r := d.RollDouble()
		if !r.IsDouble || r.D1 != r.D2 || r.Total != 2*r.D1 || !IsValid(r) {
			t.Fatalf("bad double %+v", r)
		}
	}
}

func TestFixedSource(t *testing.T) {
	d := New(NewFixed(3, 4, 6, 6))
	r := d.Roll()
	if r.D1 != 3 || r.D2 != 4 || r.Total != 7 || r.IsDouble {
		t.Fatalf("first roll %+v", r)
	}
	r = d.Roll()
	if r.D1 != 6 || r.D2 != 6 || !r.IsDouble {
		t.Fatalf("second roll %+v", r)
	}
}

func TestIsValid(t *testing.T) {
	cases := []struct {
		roll models.DiceRoll
		want bool
	}{
		{models.DiceRoll{D1: 1, D2: 2, Total: 3}, true},
		{models.DiceRoll{D1: 4, D2: 4, Total: 8, IsDouble: true}, true},
		{models.DiceRoll{D1: 0, D2: 2, Total: 2}, false},
		{models.DiceRoll{D1: 7, D2: 2, Total: 9}, false},
		{models.DiceRoll{D1: 1, D2: 2, Total: 4}, false},
		{models.DiceRoll{D1: 2, D2: 2, Total: 4}, false},
		{models.DiceRoll{D1: 1, D2: 2, Total: 3, IsDouble: true}, false},
	}
	for _, c := range cases {
		if got := IsValid(c.roll); got != c.want {
			t.Errorf("IsValid(%+v) = %v, want %v", c.roll, got, c.want)
		}
	}
}
